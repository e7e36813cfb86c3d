package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

const billColumns = `id, user_id, month, year, amount, is_paid, created_at, updated_at`

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	err := row.Scan(
		&bill.ID,
		&bill.UserID,
		&bill.Month,
		&bill.Year,
		&bill.Amount,
		&bill.IsPaid,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	return bill, err
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.UpdatedAt == 0 {
		bill.UpdatedAt = bill.CreatedAt
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.UserID, bill.Month, bill.Year, bill.Amount, bill.IsPaid,
		bill.CreatedAt, bill.UpdatedAt,
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
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill, err := scanBill(s.q.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, billID))
	if err != nil {
		return nil, notFound(err, "bill", billID)
	}
	return bill, nil
}

// LockBill reads a bill. SQLite has no row locks; the IMMEDIATE transaction
// opened by WithTx already holds the database write lock.
func (s *SQLiteStore) LockBill(ctx context.Context, billID string) (*models.Bill, error) {
	return s.GetBill(ctx, billID)
}

// FindBill retrieves a bill by its (user, month, year) key.
func (s *SQLiteStore) FindBill(ctx context.Context, userID string, month, year int) (*models.Bill, error) {
	bill, err := scanBill(s.q.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = ? AND month = ? AND year = ?`,
		userID, month, year))
	if err != nil {
		return nil, notFound(err, "bill", fmt.Sprintf("%s %d/%d", userID, month, year))
	}
	return bill, nil
}

// SetBillPaid updates the cached paid flag of a bill.
func (s *SQLiteStore) SetBillPaid(ctx context.Context, billID string, isPaid bool) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE bills SET is_paid = ?, updated_at = ? WHERE id = ?`,
		isPaid, time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return requireAffected(res, "bill", billID)
}

// CountBills counts all bills.
func (s *SQLiteStore) CountBills(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bills: %w", err)
	}
	return n, nil
}
