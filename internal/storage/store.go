// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/duespay/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrConflict is returned when a write violates a uniqueness constraint,
	// e.g. a second bill for the same (user, month, year).
	ErrConflict = errors.New("storage: unique constraint violation")
)

// PaymentFilter narrows payment listings. Zero values mean "no filter".
type PaymentFilter struct {
	Status models.PaymentStatus
	UserID string
	BillID string

	// From and To bound CreatedAt, both inclusive.
	From time.Time
	To   time.Time
}

// Store defines the interface for billing storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the ledger.
type Store interface {
	// CreateUser inserts a user. Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUser writes name, email, role and password hash.
	// Returns ErrNotFound or ErrConflict (email taken).
	UpdateUser(ctx context.Context, user *models.User) error

	// ListUsers returns every user with bill/payment counts, newest first.
	ListUsers(ctx context.Context) ([]*models.UserSummary, error)

	// ListUsersByRole returns users with the role ordered by email.
	ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error)

	// CountUsersByRole counts users with the role.
	CountUsersByRole(ctx context.Context, role models.Role) (int, error)

	// CreateBill inserts a bill. Returns ErrConflict if the user already has a
	// bill for the same month and year.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill returns ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// LockBill reads a bill and holds a write lock on it until the surrounding
	// transaction ends. Outside WithTx it behaves like GetBill.
	LockBill(ctx context.Context, billID string) (*models.Bill, error)

	// FindBill looks a bill up by its (user, month, year) key.
	FindBill(ctx context.Context, userID string, month, year int) (*models.Bill, error)

	// SetBillPaid updates the cached paid flag.
	SetBillPaid(ctx context.Context, billID string, isPaid bool) error

	// CountBills counts all bills.
	CountBills(ctx context.Context) (int, error)

	// CreatePayment inserts a payment.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// GetPayment returns ErrNotFound if the payment does not exist.
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// GetPaymentRecord returns a payment with its user and bill fields.
	GetPaymentRecord(ctx context.Context, paymentID string) (*models.PaymentRecord, error)

	// ListPaymentsByBill returns a bill's payments, newest first.
	ListPaymentsByBill(ctx context.Context, billID string) ([]*models.Payment, error)

	// ListPaymentRecords returns denormalized payments matching the filter,
	// newest first.
	ListPaymentRecords(ctx context.Context, filter PaymentFilter) ([]*models.PaymentRecord, error)

	// UpdatePaymentStatus sets status and notes. Empty notes clear them.
	UpdatePaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus, notes string) error

	// CountPayments counts payments with the status; "" counts all.
	CountPayments(ctx context.Context, status models.PaymentStatus) (int, error)

	// SumPayments sums payment amounts with the status; "" sums all.
	SumPayments(ctx context.Context, status models.PaymentStatus) (int64, error)

	// GetSetting returns ErrNotFound if the key is unset.
	GetSetting(ctx context.Context, key string) (*models.Setting, error)

	// ListSettings returns all settings ordered by key.
	ListSettings(ctx context.Context) ([]*models.Setting, error)

	// UpsertSetting atomically creates or updates a setting. An empty
	// description keeps the stored one. The argument is refreshed with the
	// stored row.
	UpsertSetting(ctx context.Context, setting *models.Setting) error

	// WithTx runs fn inside a transaction. The Store passed to fn is bound to
	// the transaction; nested calls reuse it. fn's error rolls back.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Close releases any resources held by the store.
	Close() error
}
