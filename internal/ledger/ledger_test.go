package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage/sqlite"
)

var march2025 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ledger *Ledger
	store  *sqlite.SQLiteStore
	clock  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := march2025
	f := &fixture{store: store, clock: &now}
	f.ledger = New(store,
		WithClock(func() time.Time { return *f.clock }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

func (f *fixture) user(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := models.NewUser(email, "", "")
	u.Role = role
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func (f *fixture) member(t *testing.T, email string) *models.User {
	return f.user(t, email, models.RoleMember)
}

func (f *fixture) bill(t *testing.T, userID string) *models.BillView {
	t.Helper()
	view, err := f.ledger.CurrentBill(context.Background(), userID)
	if err != nil {
		t.Fatalf("CurrentBill failed: %v", err)
	}
	return view
}

func (f *fixture) submit(t *testing.T, userID, billID string, amount int64, typ models.PaymentType) *models.Payment {
	t.Helper()
	p, err := f.ledger.SubmitPayment(context.Background(), userID, SubmitPaymentInput{
		BillID:     billID,
		Amount:     amount,
		Type:       typ,
		ReceiptURL: "/receipts/proof.png",
	})
	if err != nil {
		t.Fatalf("SubmitPayment(%d, %s) failed: %v", amount, typ, err)
	}
	return p
}

func (f *fixture) adjudicate(t *testing.T, paymentID string, action Action) *models.PaymentRecord {
	t.Helper()
	rec, err := f.ledger.AdjudicatePayment(context.Background(), paymentID, action, "")
	if err != nil {
		t.Fatalf("AdjudicatePayment(%s, %s) failed: %v", paymentID, action, err)
	}
	return rec
}

func (f *fixture) storedBill(t *testing.T, billID string) *models.Bill {
	t.Helper()
	bill, err := f.store.GetBill(context.Background(), billID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	return bill
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func TestFullPaymentScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")

	bill := f.bill(t, ani.ID)
	if bill.Amount != 67000 {
		t.Fatalf("Amount = %d, want 67000", bill.Amount)
	}

	a := f.submit(t, ani.ID, bill.ID, 67000, models.PaymentFull)
	if a.Status != models.StatusPending {
		t.Errorf("new payment status = %s, want PENDING", a.Status)
	}
	if f.storedBill(t, bill.ID).IsPaid {
		t.Error("admission must not mark the bill paid")
	}

	f.adjudicate(t, a.ID, ActionApprove)
	if !f.storedBill(t, bill.ID).IsPaid {
		t.Error("expected bill to be paid after approving the full amount")
	}

	_, err := f.ledger.SubmitPayment(ctx, ani.ID, SubmitPaymentInput{
		BillID:     bill.ID,
		Amount:     1000,
		Type:       models.PaymentInstallment1,
		ReceiptURL: "/receipts/late.png",
	})
	wantKind(t, err, KindBusinessRule)

	var balErr *BalanceError
	if !errors.As(err, &balErr) {
		t.Fatalf("expected BalanceError, got %T", err)
	}
	if balErr.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", balErr.Remaining)
	}
	if !errors.Is(err, ErrAmountExceedsRemaining) {
		t.Error("BalanceError should match ErrAmountExceedsRemaining")
	}
}

func TestInstallmentScenario(t *testing.T) {
	f := newFixture(t)
	ani := f.member(t, "ani@example.com")
	bill := f.bill(t, ani.ID)

	first := f.submit(t, ani.ID, bill.ID, 30000, models.PaymentInstallment1)
	second := f.submit(t, ani.ID, bill.ID, 37000, models.PaymentInstallment2)

	f.adjudicate(t, first.ID, ActionApprove)
	if f.storedBill(t, bill.ID).IsPaid {
		t.Error("bill should not be paid after the first installment")
	}

	f.adjudicate(t, second.ID, ActionApprove)
	view := f.bill(t, ani.ID)
	if !view.IsPaid {
		t.Error("expected bill to be paid after both installments")
	}
	if view.ApprovedTotal != 67000 || view.Remaining != 0 {
		t.Errorf("ApprovedTotal = %d Remaining = %d, want 67000/0", view.ApprovedTotal, view.Remaining)
	}
	if len(view.Payments) != 2 {
		t.Errorf("expected 2 payments on the bill view, got %d", len(view.Payments))
	}
}

func TestSubmitPaymentCeiling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	bill := f.bill(t, ani.ID)

	first := f.submit(t, ani.ID, bill.ID, 20000, models.PaymentInstallment1)
	f.adjudicate(t, first.ID, ActionApprove)

	t.Run("rejects one more than remaining", func(t *testing.T) {
		_, err := f.ledger.SubmitPayment(ctx, ani.ID, SubmitPaymentInput{
			BillID: bill.ID, Amount: 47001, Type: models.PaymentInstallment2, ReceiptURL: "r",
		})
		wantKind(t, err, KindBusinessRule)
		var balErr *BalanceError
		if errors.As(err, &balErr) && balErr.Remaining != 47000 {
			t.Errorf("Remaining = %d, want 47000", balErr.Remaining)
		}
	})

	t.Run("accepts exactly remaining", func(t *testing.T) {
		p := f.submit(t, ani.ID, bill.ID, 47000, models.PaymentInstallment2)
		if p.Amount != 47000 {
			t.Errorf("Amount = %d, want 47000", p.Amount)
		}
	})

	t.Run("pending payments do not reduce remaining", func(t *testing.T) {
		// 47000 is still PENDING, so a FULL payment of the same size is admitted.
		f.submit(t, ani.ID, bill.ID, 47000, models.PaymentFull)
	})
}

func TestSubmitPaymentInstallmentSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate slot", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)

		first := f.submit(t, ani.ID, bill.ID, 10000, models.PaymentInstallment1)
		f.adjudicate(t, first.ID, ActionReject)

		_, err := f.ledger.SubmitPayment(ctx, ani.ID, SubmitPaymentInput{
			BillID: bill.ID, Amount: 10000, Type: models.PaymentInstallment1, ReceiptURL: "r",
		})
		wantKind(t, err, KindBusinessRule)
		if !errors.Is(err, ErrDuplicateInstallment) {
			t.Errorf("expected ErrDuplicateInstallment, got %v", err)
		}
	})

	t.Run("third installment", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)

		f.submit(t, ani.ID, bill.ID, 10000, models.PaymentInstallment1)
		f.submit(t, ani.ID, bill.ID, 10000, models.PaymentInstallment2)

		for _, typ := range []models.PaymentType{models.PaymentInstallment1, models.PaymentInstallment2} {
			_, err := f.ledger.SubmitPayment(ctx, ani.ID, SubmitPaymentInput{
				BillID: bill.ID, Amount: 10000, Type: typ, ReceiptURL: "r",
			})
			if !errors.Is(err, ErrInstallmentLimit) {
				t.Errorf("%s: expected ErrInstallmentLimit, got %v", typ, err)
			}
		}
	})

	t.Run("full payment alongside installments", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)

		f.submit(t, ani.ID, bill.ID, 10000, models.PaymentInstallment1)
		f.submit(t, ani.ID, bill.ID, 10000, models.PaymentInstallment2)
		f.submit(t, ani.ID, bill.ID, 47000, models.PaymentFull)
	})
}

func TestSubmitPaymentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	budi := f.member(t, "budi@example.com")
	bill := f.bill(t, ani.ID)

	tests := []struct {
		name   string
		userID string
		in     SubmitPaymentInput
		kind   Kind
	}{
		{"zero amount", ani.ID, SubmitPaymentInput{BillID: bill.ID, Amount: 0, Type: models.PaymentFull, ReceiptURL: "r"}, KindInvalidInput},
		{"negative amount", ani.ID, SubmitPaymentInput{BillID: bill.ID, Amount: -5, Type: models.PaymentFull, ReceiptURL: "r"}, KindInvalidInput},
		{"unknown type", ani.ID, SubmitPaymentInput{BillID: bill.ID, Amount: 5, Type: "INSTALLMENT_3", ReceiptURL: "r"}, KindInvalidInput},
		{"missing receipt", ani.ID, SubmitPaymentInput{BillID: bill.ID, Amount: 5, Type: models.PaymentFull, ReceiptURL: "  "}, KindInvalidInput},
		{"missing bill", ani.ID, SubmitPaymentInput{Amount: 5, Type: models.PaymentFull, ReceiptURL: "r"}, KindInvalidInput},
		{"unknown bill", ani.ID, SubmitPaymentInput{BillID: "nope", Amount: 5, Type: models.PaymentFull, ReceiptURL: "r"}, KindNotFound},
		{"someone else's bill", budi.ID, SubmitPaymentInput{BillID: bill.ID, Amount: 5, Type: models.PaymentFull, ReceiptURL: "r"}, KindNotFound},
		{"no caller", "", SubmitPaymentInput{BillID: bill.ID, Amount: 5, Type: models.PaymentFull, ReceiptURL: "r"}, KindUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.SubmitPayment(ctx, tt.userID, tt.in)
			wantKind(t, err, tt.kind)
		})
	}

	t.Run("type is case-insensitive", func(t *testing.T) {
		p := f.submit(t, ani.ID, bill.ID, 1000, "installment_1")
		if p.Type != models.PaymentInstallment1 {
			t.Errorf("Type = %s, want INSTALLMENT_1", p.Type)
		}
	})
}

func TestAdjudicatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("re-approving is idempotent", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)
		p := f.submit(t, ani.ID, bill.ID, 67000, models.PaymentFull)

		f.adjudicate(t, p.ID, ActionApprove)
		rec := f.adjudicate(t, p.ID, ActionApprove)
		if rec.Status != models.StatusApproved {
			t.Errorf("Status = %s, want APPROVED", rec.Status)
		}
		if !f.storedBill(t, bill.ID).IsPaid {
			t.Error("bill should stay paid after re-approval")
		}
	})

	t.Run("approval re-checks the ceiling", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)

		// Both pass admission because neither is approved yet.
		a := f.submit(t, ani.ID, bill.ID, 67000, models.PaymentFull)
		b := f.submit(t, ani.ID, bill.ID, 40000, models.PaymentInstallment1)

		f.adjudicate(t, a.ID, ActionApprove)
		_, err := f.ledger.AdjudicatePayment(ctx, b.ID, ActionApprove, "")
		wantKind(t, err, KindBusinessRule)

		got, err := f.store.GetPayment(ctx, b.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if got.Status != models.StatusPending {
			t.Errorf("over-ceiling payment status = %s, want PENDING", got.Status)
		}

		// Rejecting it is still allowed.
		if rec := f.adjudicate(t, b.ID, ActionReject); rec.Status != models.StatusRejected {
			t.Errorf("Status = %s, want REJECTED", rec.Status)
		}
	})

	t.Run("reject recomputes the bill", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)
		p := f.submit(t, ani.ID, bill.ID, 67000, models.PaymentFull)

		f.adjudicate(t, p.ID, ActionApprove)
		f.adjudicate(t, p.ID, ActionReject)
		if f.storedBill(t, bill.ID).IsPaid {
			t.Error("bill should be unpaid once its only approved payment is rejected")
		}
	})

	t.Run("notes are overwritten and cleared", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)
		p := f.submit(t, ani.ID, bill.ID, 1000, models.PaymentFull)

		rec, err := f.ledger.AdjudicatePayment(ctx, p.ID, ActionReject, "receipt unreadable")
		if err != nil {
			t.Fatalf("AdjudicatePayment failed: %v", err)
		}
		if rec.Notes != "receipt unreadable" {
			t.Errorf("Notes = %q", rec.Notes)
		}
		if rec.UserEmail != "ani@example.com" || rec.BillMonth != 3 || rec.BillYear != 2025 {
			t.Errorf("record not denormalized: %+v", rec)
		}

		rec = f.adjudicate(t, p.ID, ActionReject)
		if rec.Notes != "" {
			t.Errorf("Notes = %q, want cleared", rec.Notes)
		}
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ledger.AdjudicatePayment(ctx, "missing", ActionApprove, "")
		wantKind(t, err, KindNotFound)
	})

	t.Run("unknown action", func(t *testing.T) {
		if _, err := ParseAction("archive"); KindOf(err) != KindInvalidInput {
			t.Errorf("ParseAction(archive) error = %v, want InvalidInput", err)
		}
		if a, err := ParseAction(" Approve "); err != nil || a != ActionApprove {
			t.Errorf("ParseAction(Approve) = %s, %v", a, err)
		}
		f := newFixture(t)
		_, err := f.ledger.AdjudicatePayment(ctx, "p", Action("archive"), "")
		wantKind(t, err, KindInvalidInput)
	})
}

func TestRecomputeBillStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	bill := f.bill(t, ani.ID)
	p := f.submit(t, ani.ID, bill.ID, 67000, models.PaymentFull)
	f.adjudicate(t, p.ID, ActionApprove)

	// Corrupt the cache, then repair it twice.
	if err := f.store.SetBillPaid(ctx, bill.ID, false); err != nil {
		t.Fatalf("SetBillPaid failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := f.ledger.RecomputeBillStatus(ctx, bill.ID)
		if err != nil {
			t.Fatalf("RecomputeBillStatus failed: %v", err)
		}
		if !got.IsPaid {
			t.Errorf("run %d: IsPaid = false, want true", i)
		}
	}

	_, err := f.ledger.RecomputeBillStatus(ctx, "missing")
	wantKind(t, err, KindNotFound)
}

func TestCurrentBill(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent within a month", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")

		first := f.bill(t, ani.ID)
		*f.clock = march2025.Add(15 * 24 * time.Hour)
		second := f.bill(t, ani.ID)

		if first.ID != second.ID {
			t.Errorf("expected same bill, got %s and %s", first.ID, second.ID)
		}
		if first.Month != 3 || first.Year != 2025 {
			t.Errorf("period = %d/%d, want 3/2025", first.Month, first.Year)
		}
		n, err := f.store.CountBills(ctx)
		if err != nil {
			t.Fatalf("CountBills failed: %v", err)
		}
		if n != 1 {
			t.Errorf("CountBills = %d, want 1", n)
		}
	})

	t.Run("new month gets a new bill", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")

		march := f.bill(t, ani.ID)
		*f.clock = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
		april := f.bill(t, ani.ID)

		if march.ID == april.ID {
			t.Error("expected a separate bill for April")
		}
		if april.Month != 4 {
			t.Errorf("Month = %d, want 4", april.Month)
		}
	})

	t.Run("uses default_bill_amount", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		if _, err := f.ledger.UpsertSetting(ctx, models.DefaultBillAmountKey, "50000", ""); err != nil {
			t.Fatalf("UpsertSetting failed: %v", err)
		}
		if got := f.bill(t, ani.ID).Amount; got != 50000 {
			t.Errorf("Amount = %d, want 50000", got)
		}
	})

	t.Run("malformed setting falls back", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		// Written directly to the store to simulate a legacy row.
		if err := f.store.UpsertSetting(ctx, &models.Setting{Key: models.DefaultBillAmountKey, Value: "lots"}); err != nil {
			t.Fatalf("UpsertSetting failed: %v", err)
		}
		if got := f.bill(t, ani.ID).Amount; got != FallbackBillAmount {
			t.Errorf("Amount = %d, want %d", got, FallbackBillAmount)
		}
	})

	t.Run("corrects a stale paid flag", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")
		bill := f.bill(t, ani.ID)

		if err := f.store.SetBillPaid(ctx, bill.ID, true); err != nil {
			t.Fatalf("SetBillPaid failed: %v", err)
		}
		if f.bill(t, ani.ID).IsPaid {
			t.Error("expected CurrentBill to report the bill unpaid")
		}
		if f.storedBill(t, bill.ID).IsPaid {
			t.Error("expected the corrected flag to be persisted")
		}
	})

	t.Run("concurrent creation yields one bill", func(t *testing.T) {
		f := newFixture(t)
		ani := f.member(t, "ani@example.com")

		const workers = 8
		ids := make([]string, workers)
		errs := make([]error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				view, err := f.ledger.CurrentBill(ctx, ani.ID)
				errs[i] = err
				if err == nil {
					ids[i] = view.ID
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			if errs[i] != nil {
				t.Fatalf("worker %d failed: %v", i, errs[i])
			}
			if ids[i] != ids[0] {
				t.Errorf("worker %d got bill %s, want %s", i, ids[i], ids[0])
			}
		}
		n, _ := f.store.CountBills(ctx)
		if n != 1 {
			t.Errorf("CountBills = %d, want 1", n)
		}
	})

	t.Run("requires a caller", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ledger.CurrentBill(ctx, "")
		wantKind(t, err, KindUnauthorized)
	})
}

func TestUpsertSetting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.UpsertSetting(ctx, "welcome_text", "Halo", "Shown on the dashboard"); err != nil {
		t.Fatalf("UpsertSetting failed: %v", err)
	}
	got, err := f.ledger.UpsertSetting(ctx, "welcome_text", "Hello", "")
	if err != nil {
		t.Fatalf("UpsertSetting failed: %v", err)
	}
	if got.Value != "Hello" {
		t.Errorf("Value = %q, want Hello", got.Value)
	}
	if got.Description != "Shown on the dashboard" {
		t.Errorf("Description = %q, want the previous description kept", got.Description)
	}

	settings, err := f.ledger.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings failed: %v", err)
	}
	if len(settings) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(settings))
	}

	tests := []struct {
		name, key, value string
	}{
		{"missing key", "", "1"},
		{"missing value", "k", ""},
		{"non-numeric amount", models.DefaultBillAmountKey, "abc"},
		{"zero amount", models.DefaultBillAmountKey, "0"},
		{"negative amount", models.DefaultBillAmountKey, "-100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.UpsertSetting(ctx, tt.key, tt.value, "")
			wantKind(t, err, KindInvalidInput)
		})
	}

	amount, err := f.ledger.DefaultBillAmount(ctx)
	if err != nil || amount != FallbackBillAmount {
		t.Errorf("DefaultBillAmount = %d, %v; want fallback", amount, err)
	}
}

func TestExportPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	budi := f.member(t, "budi@example.com")

	aniBill := f.bill(t, ani.ID)
	budiBill := f.bill(t, budi.ID)
	p1 := f.submit(t, ani.ID, aniBill.ID, 30000, models.PaymentInstallment1)
	p2 := f.submit(t, budi.ID, budiBill.ID, 67000, models.PaymentFull)
	f.submit(t, ani.ID, aniBill.ID, 37000, models.PaymentInstallment2)
	f.adjudicate(t, p1.ID, ActionApprove)
	f.adjudicate(t, p2.ID, ActionApprove)

	t.Run("csv with status filter", func(t *testing.T) {
		res, err := f.ledger.ExportPayments(ctx, ExportRequest{Status: "APPROVED"})
		if err != nil {
			t.Fatalf("ExportPayments failed: %v", err)
		}
		if res.Count != 2 {
			t.Errorf("Count = %d, want 2", res.Count)
		}
		lines := splitLines(string(res.Data))
		if len(lines) != res.Count+1 {
			t.Errorf("expected %d lines, got %d", res.Count+1, len(lines))
		}
		if res.Filename != "payment-history-2025-03-10.csv" || res.ContentType != "text/csv" {
			t.Errorf("unexpected file: %s %s", res.Filename, res.ContentType)
		}
	})

	t.Run("json", func(t *testing.T) {
		res, err := f.ledger.ExportPayments(ctx, ExportRequest{Format: "json", Status: "all"})
		if err != nil {
			t.Fatalf("ExportPayments failed: %v", err)
		}
		if res.Count != 3 || res.ContentType != "application/json" {
			t.Errorf("Count = %d ContentType = %s", res.Count, res.ContentType)
		}
	})

	t.Run("date range", func(t *testing.T) {
		res, err := f.ledger.ExportPayments(ctx, ExportRequest{StartDate: "2025-03-10", EndDate: "2025-03-10"})
		if err != nil {
			t.Fatalf("ExportPayments failed: %v", err)
		}
		if res.Count != 3 {
			t.Errorf("same-day range: Count = %d, want 3", res.Count)
		}

		res, err = f.ledger.ExportPayments(ctx, ExportRequest{StartDate: "2025-03-11"})
		if err != nil {
			t.Fatalf("ExportPayments failed: %v", err)
		}
		if res.Count != 0 {
			t.Errorf("future range: Count = %d, want 0", res.Count)
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		for _, req := range []ExportRequest{
			{Format: "xml"},
			{Status: "PAID"},
			{StartDate: "yesterday"},
			{StartDate: "2025-03-10", EndDate: "2025-03-01"},
		} {
			_, err := f.ledger.ExportPayments(ctx, req)
			wantKind(t, err, KindInvalidInput)
		}
	})
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func TestListPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	budi := f.member(t, "budi@example.com")

	aniBill := f.bill(t, ani.ID)
	budiBill := f.bill(t, budi.ID)
	p := f.submit(t, ani.ID, aniBill.ID, 67000, models.PaymentFull)
	f.submit(t, budi.ID, budiBill.ID, 1000, models.PaymentInstallment1)
	f.adjudicate(t, p.ID, ActionApprove)

	all, err := f.ledger.ListPayments(ctx, "all")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListPayments(all) = %d, %v", len(all), err)
	}
	pending, err := f.ledger.ListPayments(ctx, "pending")
	if err != nil || len(pending) != 1 {
		t.Fatalf("ListPayments(pending) = %d, %v", len(pending), err)
	}
	if pending[0].UserEmail != "budi@example.com" {
		t.Errorf("unexpected pending payment owner %s", pending[0].UserEmail)
	}
	if _, err := f.ledger.ListPayments(ctx, "PAID"); KindOf(err) != KindInvalidInput {
		t.Errorf("expected InvalidInput for unknown status, got %v", err)
	}

	own, err := f.ledger.ListMemberPayments(ctx, ani.ID, "")
	if err != nil || len(own) != 1 || own[0].UserID != ani.ID {
		t.Fatalf("ListMemberPayments = %v, %v", own, err)
	}
	none, err := f.ledger.ListMemberPayments(ctx, ani.ID, budiBill.ID)
	if err != nil || len(none) != 0 {
		t.Errorf("members must not see other bills' payments: %d, %v", len(none), err)
	}
}

func TestStatsAndUnpaidMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "admin@example.com", models.RoleAdmin)
	ani := f.member(t, "ani@example.com")
	budi := f.member(t, "budi@example.com")
	f.member(t, "citra@example.com") // never opens a bill

	aniBill := f.bill(t, ani.ID)
	budiBill := f.bill(t, budi.ID)
	p1 := f.submit(t, ani.ID, aniBill.ID, 67000, models.PaymentFull)
	p2 := f.submit(t, budi.ID, budiBill.ID, 30000, models.PaymentInstallment1)
	p3 := f.submit(t, budi.ID, budiBill.ID, 10000, models.PaymentInstallment2)
	f.adjudicate(t, p1.ID, ActionApprove)
	f.adjudicate(t, p2.ID, ActionApprove)
	f.adjudicate(t, p3.ID, ActionReject)

	stats, err := f.ledger.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := models.Stats{
		TotalMembers:     3,
		TotalBills:       2,
		TotalPayments:    3,
		PendingPayments:  0,
		ApprovedPayments: 2,
		RejectedPayments: 1,
		TotalRevenue:     97000,
	}
	if *stats != want {
		t.Errorf("Stats = %+v, want %+v", *stats, want)
	}

	report, err := f.ledger.UnpaidMembers(ctx, 3, 2025)
	if err != nil {
		t.Fatalf("UnpaidMembers failed: %v", err)
	}
	if report.TotalMembers != 3 || len(report.Paid) != 1 || len(report.Unpaid) != 2 {
		t.Fatalf("report = %d members, %d paid, %d unpaid", report.TotalMembers, len(report.Paid), len(report.Unpaid))
	}
	if report.Paid[0].Email != "ani@example.com" {
		t.Errorf("paid member = %s", report.Paid[0].Email)
	}
	for _, s := range report.Unpaid {
		switch s.Email {
		case "budi@example.com":
			if s.State != models.StateUnpaid || *s.Remaining != 37000 {
				t.Errorf("budi: %s remaining %d", s.State, *s.Remaining)
			}
		case "citra@example.com":
			if s.State != models.StateNoBill {
				t.Errorf("citra: %s, want NO_BILL", s.State)
			}
		}
	}

	for _, period := range [][2]int{{0, 2025}, {13, 2025}, {5, 1999}} {
		_, err := f.ledger.UnpaidMembers(ctx, period[0], period[1])
		wantKind(t, err, KindInvalidInput)
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	f.member(t, "budi@example.com")

	got, err := f.ledger.UpdateUser(ctx, ani.ID, UpdateUserInput{Name: "Ani", Email: "ANI@example.com", Role: "admin"})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if got.Role != models.RoleAdmin || got.Name != "Ani" || got.Email != "ani@example.com" {
		t.Errorf("unexpected user: %+v", got)
	}

	_, err = f.ledger.UpdateUser(ctx, ani.ID, UpdateUserInput{Email: "budi@example.com", Role: models.RoleMember})
	wantKind(t, err, KindBusinessRule)

	_, err = f.ledger.UpdateUser(ctx, "missing", UpdateUserInput{Email: "x@example.com", Role: models.RoleMember})
	wantKind(t, err, KindNotFound)

	_, err = f.ledger.UpdateUser(ctx, ani.ID, UpdateUserInput{Email: "x@example.com", Role: "OWNER"})
	wantKind(t, err, KindInvalidInput)

	_, err = f.ledger.UpdateUser(ctx, ani.ID, UpdateUserInput{Email: "not-an-email", Role: models.RoleMember})
	wantKind(t, err, KindInvalidInput)

	users, err := f.ledger.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers = %d, %v", len(users), err)
	}
}

// race runs fn from n goroutines released together and returns their errors.
func race(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestConcurrentAdmissionSameSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	bill := f.bill(t, ani.ID)

	errs := race(2, func(int) error {
		_, err := f.ledger.SubmitPayment(ctx, ani.ID, SubmitPaymentInput{
			BillID:     bill.ID,
			Amount:     30000,
			Type:       models.PaymentInstallment1,
			ReceiptURL: "/receipts/proof.png",
		})
		return err
	})

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateInstallment):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("successes = %d, duplicates = %d; want 1 and 1 (errs: %v)", ok, dup, errs)
	}

	payments, err := f.store.ListPaymentsByBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByBill failed: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("stored payments = %d, want 1", len(payments))
	}
}

func TestConcurrentApprovalCeiling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	bill := f.bill(t, ani.ID)

	ids := []string{
		f.submit(t, ani.ID, bill.ID, 67000, models.PaymentFull).ID,
		f.submit(t, ani.ID, bill.ID, 67000, models.PaymentFull).ID,
	}

	errs := race(len(ids), func(i int) error {
		_, err := f.ledger.AdjudicatePayment(ctx, ids[i], ActionApprove, "")
		return err
	})

	var ok, over int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAmountExceedsRemaining):
			over++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || over != 1 {
		t.Fatalf("approvals = %d, rejected = %d; want 1 and 1 (errs: %v)", ok, over, errs)
	}

	view := f.bill(t, ani.ID)
	if view.ApprovedTotal != view.Amount {
		t.Errorf("ApprovedTotal = %d, want %d", view.ApprovedTotal, view.Amount)
	}
	if !view.IsPaid || view.Remaining != 0 {
		t.Errorf("bill = paid %v remaining %d, want paid with nothing remaining", view.IsPaid, view.Remaining)
	}
}

func TestExportMultilineNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ani := f.member(t, "ani@example.com")
	bill := f.bill(t, ani.ID)

	if _, err := f.ledger.SubmitPayment(ctx, ani.ID, SubmitPaymentInput{
		BillID:     bill.ID,
		Amount:     100,
		Type:       models.PaymentFull,
		ReceiptURL: "/receipts/proof.png",
		Notes:      "line1\nline2",
	}); err != nil {
		t.Fatalf("SubmitPayment failed: %v", err)
	}

	res, err := f.ledger.ExportPayments(ctx, ExportRequest{})
	if err != nil {
		t.Fatalf("ExportPayments failed: %v", err)
	}
	if lines := splitLines(string(res.Data)); len(lines) != res.Count+1 {
		t.Errorf("expected %d lines for %d records, got %d", res.Count+1, res.Count, len(lines))
	}
}
