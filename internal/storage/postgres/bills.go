package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

const billColumns = `id, user_id, month, year, amount, is_paid, created_at, updated_at`

func scanBill(row pgx.Row) (*models.Bill, error) {
	bill := &models.Bill{}
	err := row.Scan(&bill.ID, &bill.UserID, &bill.Month, &bill.Year, &bill.Amount, &bill.IsPaid, &bill.CreatedAt, &bill.UpdatedAt)
	return bill, err
}

// CreateBill inserts a bill. A second bill for the same period is ErrConflict.
func (s *PostgresStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.UpdatedAt == 0 {
		bill.UpdatedAt = bill.CreatedAt
	}

	_, err := s.q.Exec(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bill.ID, bill.UserID, bill.Month, bill.Year, bill.Amount, bill.IsPaid, bill.CreatedAt, bill.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("bill %s %d/%d: %w", bill.UserID, bill.Month, bill.Year, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID.
func (s *PostgresStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill, err := scanBill(s.q.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1`, billID))
	if err != nil {
		return nil, notFound(err, "bill", billID)
	}
	return bill, nil
}

// LockBill reads a bill with SELECT ... FOR UPDATE.
func (s *PostgresStore) LockBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill, err := scanBill(s.q.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1 FOR UPDATE`, billID))
	if err != nil {
		return nil, notFound(err, "bill", billID)
	}
	return bill, nil
}

// FindBill retrieves a bill by its (user, month, year) key.
func (s *PostgresStore) FindBill(ctx context.Context, userID string, month, year int) (*models.Bill, error) {
	bill, err := scanBill(s.q.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = $1 AND month = $2 AND year = $3`,
		userID, month, year))
	if err != nil {
		return nil, notFound(err, "bill", fmt.Sprintf("%s %d/%d", userID, month, year))
	}
	return bill, nil
}

// SetBillPaid updates the cached paid flag.
func (s *PostgresStore) SetBillPaid(ctx context.Context, billID string, isPaid bool) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE bills SET is_paid = $1, updated_at = $2 WHERE id = $3`,
		isPaid, time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return requireAffected(tag, "bill", billID)
}

// CountBills counts all bills.
func (s *PostgresStore) CountBills(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM bills`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bills: %w", err)
	}
	return n, nil
}
