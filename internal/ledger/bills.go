package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/duespay/internal/calculator"
	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

// CurrentBill returns userID's bill for the current month, creating it with
// the default amount when absent. The paid flag is recomputed on every call.
//
// Two callers racing to create the same bill both succeed: the loser's insert
// hits the (user, month, year) constraint and it re-reads the winner's row.
func (l *Ledger) CurrentBill(ctx context.Context, userID string) (*models.BillView, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	now := l.now()
	month, year := int(now.Month()), now.Year()

	bill, err := l.store.FindBill(ctx, userID, month, year)
	if errors.Is(err, storage.ErrNotFound) {
		bill, err = l.createBill(ctx, userID, month, year)
	}
	if err != nil {
		return nil, err
	}

	payments, err := l.store.ListPaymentsByBill(ctx, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	bal := calculator.Balance(bill.Amount, payments)
	if isPaid := bal.ApprovedTotal >= bill.Amount; isPaid != bill.IsPaid {
		if err := l.store.SetBillPaid(ctx, bill.ID, isPaid); err != nil {
			return nil, err
		}
		l.logger.Info("Bill status corrected", "bill_id", bill.ID, "is_paid", isPaid)
		bill.IsPaid = isPaid
	}

	return &models.BillView{
		Bill:          *bill,
		Payments:      payments,
		ApprovedTotal: bal.ApprovedTotal,
		Remaining:     bal.Remaining,
	}, nil
}

func (l *Ledger) createBill(ctx context.Context, userID string, month, year int) (*models.Bill, error) {
	amount, err := l.DefaultBillAmount(ctx)
	if err != nil {
		return nil, err
	}

	created := l.now().Unix()
	bill := &models.Bill{
		UserID:    userID,
		Month:     month,
		Year:      year,
		Amount:    amount,
		CreatedAt: created,
		UpdatedAt: created,
	}
	err = l.store.CreateBill(ctx, bill)
	if errors.Is(err, storage.ErrConflict) {
		l.logger.Debug("Bill created concurrently, re-fetching", "user_id", userID, "month", month, "year", year)
		return l.store.FindBill(ctx, userID, month, year)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("Bill created",
		"bill_id", bill.ID,
		"user_id", userID,
		"month", month,
		"year", year,
		"amount", amount,
	)
	if l.hooks.BillCreated != nil {
		l.hooks.BillCreated()
	}
	return bill, nil
}
