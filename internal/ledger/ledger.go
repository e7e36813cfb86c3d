// Package ledger implements the billing ledger: bill balance, payment admission,
// adjudication and settlement of a member's monthly bill.
//
// Every entry point is one synchronous operation against the store. Operations
// that read a bill's payments and then write are run inside storage.Store.WithTx
// with the bill locked, so concurrent admissions and adjudications on one bill
// are serialized by the database.
package ledger

import (
	"log/slog"
	"time"

	"github.com/mmynk/duespay/internal/storage"
)

// FallbackBillAmount is used when the default_bill_amount setting is unset or unusable.
const FallbackBillAmount int64 = 67000

// Ledger is the billing ledger engine.
type Ledger struct {
	store  storage.Store
	now    func() time.Time
	logger *slog.Logger
	hooks  Hooks
}

// Hooks are notified after successful state changes. Nil fields are skipped.
type Hooks struct {
	PaymentSubmitted   func(paymentType string)
	PaymentAdjudicated func(action string)
	BillCreated        func()
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used to resolve the current billing period.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithHooks registers state-change callbacks, e.g. metrics counters.
func WithHooks(h Hooks) Option {
	return func(l *Ledger) { l.hooks = h }
}

// New creates a Ledger backed by store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
