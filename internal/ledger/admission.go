package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/duespay/internal/calculator"
	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

// SubmitPaymentInput is a member's payment submission.
type SubmitPaymentInput struct {
	BillID     string
	Amount     int64
	Type       models.PaymentType
	ReceiptURL string
	Notes      string
}

func (in *SubmitPaymentInput) normalize() error {
	in.BillID = strings.TrimSpace(in.BillID)
	in.ReceiptURL = strings.TrimSpace(in.ReceiptURL)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Type = models.PaymentType(strings.ToUpper(strings.TrimSpace(string(in.Type))))

	switch {
	case in.BillID == "":
		return invalid("bill_id", "required")
	case in.Amount <= 0:
		return invalid("amount", "must be greater than zero")
	case !in.Type.Valid():
		return invalid("type", fmt.Sprintf("unsupported payment type %q", in.Type))
	case in.ReceiptURL == "":
		return invalid("receipt_url", "required")
	}
	return nil
}

// SubmitPayment validates and records a new PENDING payment for userID's bill.
//
// Rules, first failure wins:
//  1. the bill exists and belongs to userID (ErrBillNotFound)
//  2. amount <= remaining, counting APPROVED payments only (BalanceError)
//  3. for installments: fewer than two installments exist in any status
//     (ErrInstallmentLimit) and the same slot is free (ErrDuplicateInstallment)
//
// The bill itself is not modified. FULL payments are not checked against
// existing installments.
func (l *Ledger) SubmitPayment(ctx context.Context, userID string, in SubmitPaymentInput) (*models.Payment, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		bill, err := ownedBill(ctx, tx, userID, in.BillID)
		if err != nil {
			return err
		}

		payments, err := tx.ListPaymentsByBill(ctx, bill.ID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}

		if err := checkAdmission(bill, payments, in.Amount, in.Type); err != nil {
			return err
		}

		now := l.now().Unix()
		payment = &models.Payment{
			BillID:     bill.ID,
			UserID:     bill.UserID,
			Amount:     in.Amount,
			Type:       in.Type,
			Status:     models.StatusPending,
			ReceiptURL: in.ReceiptURL,
			Notes:      in.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return tx.CreatePayment(ctx, payment)
	})
	if err != nil {
		l.logger.Warn("Payment rejected at admission",
			"user_id", userID,
			"bill_id", in.BillID,
			"amount", in.Amount,
			"type", in.Type,
			"error", err,
		)
		return nil, err
	}

	l.logger.Info("Payment submitted",
		"payment_id", payment.ID,
		"bill_id", payment.BillID,
		"amount", payment.Amount,
		"type", payment.Type,
	)
	if l.hooks.PaymentSubmitted != nil {
		l.hooks.PaymentSubmitted(string(payment.Type))
	}
	return payment, nil
}

// ownedBill locks a bill and checks it belongs to userID. A bill owned by
// someone else is reported as not found.
func ownedBill(ctx context.Context, tx storage.Store, userID, billID string) (*models.Bill, error) {
	bill, err := tx.LockBill(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bill: %w", err)
	}
	if bill.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	return bill, nil
}

// checkAdmission applies the amount ceiling and installment slot rules.
func checkAdmission(bill *models.Bill, payments []*models.Payment, amount int64, typ models.PaymentType) error {
	bal := calculator.Balance(bill.Amount, payments)
	if amount > bal.Remaining {
		return &BalanceError{Requested: amount, Remaining: bal.Remaining}
	}

	if !typ.IsInstallment() {
		return nil
	}
	slots := calculator.Installments(payments)
	if slots.Count >= 2 {
		return ErrInstallmentLimit
	}
	if slots.Taken[typ] {
		return fmt.Errorf("%w: %s", ErrDuplicateInstallment, typ)
	}
	return nil
}
