package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

const paymentColumns = `p.id, p.bill_id, p.user_id, p.amount, p.type, p.status, p.receipt_url, p.notes, p.created_at, p.updated_at`

const recordQuery = `
	SELECT ` + paymentColumns + `, u.name, u.email, b.month, b.year, b.amount
	FROM payments p
	JOIN users u ON u.id = p.user_id
	JOIN bills b ON b.id = p.bill_id`

const newestFirst = ` ORDER BY p.created_at DESC, p.seq DESC`

func scanPayment(row pgx.Row, extra ...any) (*models.Payment, error) {
	payment := &models.Payment{}
	var typ, status string
	var notes *string
	dest := []any{
		&payment.ID, &payment.BillID, &payment.UserID, &payment.Amount,
		&typ, &status, &payment.ReceiptURL, &notes,
		&payment.CreatedAt, &payment.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	payment.Type = models.PaymentType(typ)
	payment.Status = models.PaymentStatus(status)
	if notes != nil {
		payment.Notes = *notes
	}
	return payment, nil
}

func scanRecord(row pgx.Row) (*models.PaymentRecord, error) {
	rec := &models.PaymentRecord{}
	payment, err := scanPayment(row, &rec.UserName, &rec.UserEmail, &rec.BillMonth, &rec.BillYear, &rec.BillAmount)
	if err != nil {
		return nil, err
	}
	rec.Payment = *payment
	return rec, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreatePayment inserts a payment.
func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.UpdatedAt == 0 {
		payment.UpdatedAt = payment.CreatedAt
	}

	_, err := s.q.Exec(ctx,
		`INSERT INTO payments (id, bill_id, user_id, amount, type, status, receipt_url, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
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
func (s *PostgresStore) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := scanPayment(s.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.id = $1`, paymentID))
	if err != nil {
		return nil, notFound(err, "payment", paymentID)
	}
	return payment, nil
}

// GetPaymentRecord retrieves a payment with its user and bill fields.
func (s *PostgresStore) GetPaymentRecord(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	rec, err := scanRecord(s.q.QueryRow(ctx, recordQuery+` WHERE p.id = $1`, paymentID))
	if err != nil {
		return nil, notFound(err, "payment", paymentID)
	}
	return rec, nil
}

// ListPaymentsByBill retrieves a bill's payments, newest first.
func (s *PostgresStore) ListPaymentsByBill(ctx context.Context, billID string) ([]*models.Payment, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments p WHERE p.bill_id = $1`+newestFirst, billID)
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
func (s *PostgresStore) ListPaymentRecords(ctx context.Context, filter storage.PaymentFilter) ([]*models.PaymentRecord, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("p.status = $%d", string(filter.Status))
	}
	if filter.UserID != "" {
		add("p.user_id = $%d", filter.UserID)
	}
	if filter.BillID != "" {
		add("p.bill_id = $%d", filter.BillID)
	}
	if !filter.From.IsZero() {
		add("p.created_at >= $%d", filter.From.Unix())
	}
	if !filter.To.IsZero() {
		add("p.created_at <= $%d", filter.To.Unix())
	}

	query := recordQuery
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += newestFirst

	rows, err := s.q.Query(ctx, query, args...)
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

// UpdatePaymentStatus sets status and notes.
func (s *PostgresStore) UpdatePaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus, notes string) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE payments SET status = $1, notes = $2, updated_at = $3 WHERE id = $4`,
		string(status), nullString(notes), time.Now().Unix(), paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireAffected(tag, "payment", paymentID)
}

// CountPayments counts payments with the status, or all when it is empty.
func (s *PostgresStore) CountPayments(ctx context.Context, status models.PaymentStatus) (int, error) {
	var n int
	err := s.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments WHERE ($1::text = '' OR status = $1::text)`, string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return n, nil
}

// SumPayments sums amounts with the status, or all when it is empty.
func (s *PostgresStore) SumPayments(ctx context.Context, status models.PaymentStatus) (int64, error) {
	var total int64
	err := s.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::BIGINT FROM payments WHERE ($1::text = '' OR status = $1::text)`, string(status),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}
