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

// Action is an administrator's decision on a payment.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ParseAction accepts "approve" or "reject" in any case.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", invalid("action", fmt.Sprintf("unsupported action %q", s))
}

func (a Action) status() models.PaymentStatus {
	if a == ActionApprove {
		return models.StatusApproved
	}
	return models.StatusRejected
}

// AdjudicatePayment approves or rejects a payment and settles its bill.
//
// Approval re-checks the ceiling: the bill's other approved payments plus this
// one must not exceed the bill amount. Two PENDING submissions can both pass
// admission, so this is where the over-payment is stopped. Approving an already
// approved payment is allowed and yields the same bill status.
//
// notes replaces the stored notes; empty clears them. The bill's paid flag is
// recomputed after both approve and reject.
func (l *Ledger) AdjudicatePayment(ctx context.Context, paymentID string, action Action, notes string) (*models.PaymentRecord, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, invalid("payment_id", "required")
	}
	if action != ActionApprove && action != ActionReject {
		return nil, invalid("action", fmt.Sprintf("unsupported action %q", action))
	}
	notes = strings.TrimSpace(notes)

	var (
		record *models.PaymentRecord
		bill   *models.Bill
	)
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		payment, err := tx.GetPayment(ctx, paymentID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
		}
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}

		locked, err := tx.LockBill(ctx, payment.BillID)
		if err != nil {
			return fmt.Errorf("failed to load bill: %w", err)
		}

		if action == ActionApprove {
			payments, err := tx.ListPaymentsByBill(ctx, locked.ID)
			if err != nil {
				return fmt.Errorf("failed to load payments: %w", err)
			}
			others := calculator.ApprovedTotalExcluding(payments, payment.ID)
			if others+payment.Amount > locked.Amount {
				remaining := locked.Amount - others
				if remaining < 0 {
					remaining = 0
				}
				return &BalanceError{Requested: payment.Amount, Remaining: remaining}
			}
		}

		if err := tx.UpdatePaymentStatus(ctx, payment.ID, action.status(), notes); err != nil {
			return err
		}

		bill, err = recompute(ctx, tx, locked)
		if err != nil {
			return err
		}

		record, err = tx.GetPaymentRecord(ctx, payment.ID)
		return err
	})
	if err != nil {
		l.logger.Warn("Payment adjudication failed",
			"payment_id", paymentID,
			"action", action,
			"error", err,
		)
		return nil, err
	}

	l.logger.Info("Payment adjudicated",
		"payment_id", record.ID,
		"bill_id", record.BillID,
		"action", action,
		"status", record.Status,
		"bill_paid", bill.IsPaid,
	)
	if l.hooks.PaymentAdjudicated != nil {
		l.hooks.PaymentAdjudicated(string(action))
	}
	return record, nil
}

// RecomputeBillStatus sets a bill's paid flag from its approved payments.
// It is idempotent.
func (l *Ledger) RecomputeBillStatus(ctx context.Context, billID string) (*models.Bill, error) {
	var bill *models.Bill
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		locked, err := tx.LockBill(ctx, billID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBillNotFound, billID)
		}
		if err != nil {
			return fmt.Errorf("failed to load bill: %w", err)
		}
		bill, err = recompute(ctx, tx, locked)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// recompute derives isPaid from the bill's payments and writes it only when
// the cached value differs.
func recompute(ctx context.Context, tx storage.Store, bill *models.Bill) (*models.Bill, error) {
	payments, err := tx.ListPaymentsByBill(ctx, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	isPaid := calculator.IsSettled(bill.Amount, payments)
	if isPaid == bill.IsPaid {
		return bill, nil
	}

	if err := tx.SetBillPaid(ctx, bill.ID, isPaid); err != nil {
		return nil, err
	}
	updated := *bill
	updated.IsPaid = isPaid
	return &updated, nil
}
