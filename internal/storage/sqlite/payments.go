package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

const paymentColumns = `p.id, p.bill_id, p.user_id, p.amount, p.type, p.status, p.receipt_url, p.notes, p.created_at, p.updated_at`

const recordQuery = `
	SELECT ` + paymentColumns + `, u.name, u.email, b.month, b.year, b.amount
	FROM payments p
	JOIN users u ON u.id = p.user_id
	JOIN bills b ON b.id = p.bill_id`

func scanPayment(row scanner, extra ...any) (*models.Payment, error) {
	payment := &models.Payment{}
	var notes sql.NullString
	dest := []any{
		&payment.ID, &payment.BillID, &payment.UserID, &payment.Amount,
		&payment.Type, &payment.Status, &payment.ReceiptURL, &notes,
		&payment.CreatedAt, &payment.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if notes.Valid {
		payment.Notes = notes.String
	}
	return payment, nil
}

func scanRecord(row scanner) (*models.PaymentRecord, error) {
	rec := &models.PaymentRecord{}
	payment, err := scanPayment(row, &rec.UserName, &rec.UserEmail, &rec.BillMonth, &rec.BillYear, &rec.BillAmount)
	if err != nil {
		return nil, err
	}
	rec.Payment = *payment
	return rec, nil
}

// CreatePayment persists a new payment to the database.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	// Generate ID if not set
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.UpdatedAt == 0 {
		payment.UpdatedAt = payment.CreatedAt
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO payments (id, bill_id, user_id, amount, type, status, receipt_url, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.BillID, payment.UserID, payment.Amount, string(payment.Type),
		string(payment.Status), payment.ReceiptURL, nullString(payment.Notes),
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := scanPayment(s.q.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.id = ?`, paymentID))
	if err != nil {
		return nil, notFound(err, "payment", paymentID)
	}
	return payment, nil
}

// GetPaymentRecord retrieves a payment with its user and bill fields.
func (s *SQLiteStore) GetPaymentRecord(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	rec, err := scanRecord(s.q.QueryRowContext(ctx, recordQuery+` WHERE p.id = ?`, paymentID))
	if err != nil {
		return nil, notFound(err, "payment", paymentID)
	}
	return rec, nil
}

// ListPaymentsByBill retrieves all payments for a bill, newest first.
func (s *SQLiteStore) ListPaymentsByBill(ctx context.Context, billID string) ([]*models.Payment, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.bill_id = ?
		 ORDER BY p.created_at DESC, p.rowid DESC`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by bill: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// ListPaymentRecords retrieves denormalized payments matching the filter, newest first.
func (s *SQLiteStore) ListPaymentRecords(ctx context.Context, filter storage.PaymentFilter) ([]*models.PaymentRecord, error) {
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.UserID != "" {
		conds = append(conds, "p.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.BillID != "" {
		conds = append(conds, "p.bill_id = ?")
		args = append(args, filter.BillID)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "p.created_at >= ?")
		args = append(args, filter.From.Unix())
	}
	if !filter.To.IsZero() {
		conds = append(conds, "p.created_at <= ?")
		args = append(args, filter.To.Unix())
	}

	query := recordQuery
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.rowid DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var records []*models.PaymentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return records, nil
}

// UpdatePaymentStatus sets the status and notes of a payment.
func (s *SQLiteStore) UpdatePaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus, notes string) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE payments SET status = ?, notes = ?, updated_at = ? WHERE id = ?`,
		string(status), nullString(notes), time.Now().Unix(), paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireAffected(res, "payment", paymentID)
}

// CountPayments counts payments with the given status, or all when status is empty.
func (s *SQLiteStore) CountPayments(ctx context.Context, status models.PaymentStatus) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE (? = '' OR status = ?)`, string(status), string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return n, nil
}

// SumPayments sums payment amounts with the given status, or all when status is empty.
func (s *SQLiteStore) SumPayments(ctx context.Context, status models.PaymentStatus) (int64, error) {
	var total int64
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE (? = '' OR status = ?)`, string(status), string(status),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
