package ledger

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/duespay/internal/calculator"
	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

// Stats gathers the admin dashboard counters. The independent queries run
// concurrently.
func (l *Ledger) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalMembers, err = l.store.CountUsersByRole(ctx, models.RoleMember)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalBills, err = l.store.CountBills(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalPayments, err = l.store.CountPayments(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.PendingPayments, err = l.store.CountPayments(ctx, models.StatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.ApprovedPayments, err = l.store.CountPayments(ctx, models.StatusApproved)
		return err
	})
	g.Go(func() (err error) {
		stats.RejectedPayments, err = l.store.CountPayments(ctx, models.StatusRejected)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = l.store.SumPayments(ctx, models.StatusApproved)
		return err
	})

	if err := g.Wait(); err != nil {
		l.logger.Error("Failed to gather stats", "error", err)
		return nil, err
	}
	return &stats, nil
}

// UnpaidMembers reports every member's status for a period. Members without a
// bill for the period are listed as NO_BILL and counted as unpaid.
func (l *Ledger) UnpaidMembers(ctx context.Context, month, year int) (*models.PeriodReport, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month", "must be between 1 and 12")
	}
	if year < 2000 {
		return nil, invalid("year", "must be 2000 or later")
	}

	members, err := l.store.ListUsersByRole(ctx, models.RoleMember)
	if err != nil {
		l.logger.Error("Failed to list members", "error", err)
		return nil, err
	}

	statuses := make([]models.MemberStatus, 0, len(members))
	for _, member := range members {
		bill, err := l.store.FindBill(ctx, member.ID, month, year)
		if errors.Is(err, storage.ErrNotFound) {
			statuses = append(statuses, calculator.MemberStatus(member, month, year, nil, nil))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load bill for %s: %w", member.ID, err)
		}

		payments, err := l.store.ListPaymentsByBill(ctx, bill.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load payments for bill %s: %w", bill.ID, err)
		}
		statuses = append(statuses, calculator.MemberStatus(member, month, year, bill, payments))
	}

	paid, unpaid := calculator.SplitByState(statuses)
	return &models.PeriodReport{
		Month:        month,
		Year:         year,
		TotalMembers: len(members),
		Paid:         paid,
		Unpaid:       unpaid,
		All:          statuses,
	}, nil
}
