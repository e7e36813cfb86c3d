package calculator

import (
	"testing"

	"github.com/mmynk/duespay/internal/models"
)

func payment(id string, amount int64, typ models.PaymentType, status models.PaymentStatus) *models.Payment {
	return &models.Payment{ID: id, Amount: amount, Type: typ, Status: status}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name         string
		billAmount   int64
		payments     []*models.Payment
		wantApproved int64
		wantRemain   int64
		wantSettled  bool
	}{
		{
			name:       "no payments leaves full amount",
			billAmount: 67000,
			wantRemain: 67000,
		},
		{
			name:       "pending and rejected payments are ignored",
			billAmount: 67000,
			payments: []*models.Payment{
				payment("a", 30000, models.PaymentInstallment1, models.StatusPending),
				payment("b", 37000, models.PaymentInstallment2, models.StatusRejected),
			},
			wantRemain: 67000,
		},
		{
			name:       "partial approval",
			billAmount: 67000,
			payments: []*models.Payment{
				payment("a", 30000, models.PaymentInstallment1, models.StatusApproved),
				payment("b", 37000, models.PaymentInstallment2, models.StatusPending),
			},
			wantApproved: 30000,
			wantRemain:   37000,
		},
		{
			name:       "exact settlement",
			billAmount: 67000,
			payments: []*models.Payment{
				payment("a", 67000, models.PaymentFull, models.StatusApproved),
			},
			wantApproved: 67000,
			wantSettled:  true,
		},
		{
			name:       "overpayment clamps remaining at zero",
			billAmount: 50000,
			payments: []*models.Payment{
				payment("a", 30000, models.PaymentInstallment1, models.StatusApproved),
				payment("b", 30000, models.PaymentInstallment2, models.StatusApproved),
			},
			wantApproved: 60000,
			wantSettled:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Balance(tt.billAmount, tt.payments)
			if got.ApprovedTotal != tt.wantApproved {
				t.Errorf("ApprovedTotal = %d, want %d", got.ApprovedTotal, tt.wantApproved)
			}
			if got.Remaining != tt.wantRemain {
				t.Errorf("Remaining = %d, want %d", got.Remaining, tt.wantRemain)
			}
			if got.Settled() != tt.wantSettled {
				t.Errorf("Settled() = %v, want %v", got.Settled(), tt.wantSettled)
			}
			if IsSettled(tt.billAmount, tt.payments) != tt.wantSettled {
				t.Errorf("IsSettled() = %v, want %v", !tt.wantSettled, tt.wantSettled)
			}
		})
	}
}

func TestApprovedTotalExcluding(t *testing.T) {
	payments := []*models.Payment{
		payment("a", 30000, models.PaymentInstallment1, models.StatusApproved),
		payment("b", 37000, models.PaymentInstallment2, models.StatusApproved),
		payment("c", 1000, models.PaymentFull, models.StatusPending),
	}

	if got := ApprovedTotalExcluding(payments, "b"); got != 30000 {
		t.Errorf("excluding b = %d, want 30000", got)
	}
	if got := ApprovedTotalExcluding(payments, "c"); got != 67000 {
		t.Errorf("excluding pending c = %d, want 67000", got)
	}
	if got := ApprovedTotalExcluding(payments, ""); got != 67000 {
		t.Errorf("excluding nothing = %d, want 67000", got)
	}
}

func TestInstallments(t *testing.T) {
	payments := []*models.Payment{
		payment("a", 67000, models.PaymentFull, models.StatusApproved),
		payment("b", 10000, models.PaymentInstallment1, models.StatusRejected),
	}

	slots := Installments(payments)
	if slots.Count != 1 {
		t.Errorf("Count = %d, want 1", slots.Count)
	}
	if !slots.Taken[models.PaymentInstallment1] {
		t.Error("expected INSTALLMENT_1 slot to be taken even when rejected")
	}
	if slots.Taken[models.PaymentInstallment2] {
		t.Error("INSTALLMENT_2 slot should be free")
	}
	if slots.Taken[models.PaymentFull] {
		t.Error("FULL payments do not occupy installment slots")
	}
}

func TestMemberStatus(t *testing.T) {
	user := &models.User{ID: "u1", Email: "ani@example.com"}

	t.Run("no bill", func(t *testing.T) {
		s := MemberStatus(user, 3, 2025, nil, nil)
		if s.State != models.StateNoBill {
			t.Errorf("State = %s, want NO_BILL", s.State)
		}
		if s.Amount != nil || s.Remaining != nil {
			t.Error("expected nil amount and remaining without a bill")
		}
		if s.Name != "ani@example.com" {
			t.Errorf("Name = %q, want email fallback", s.Name)
		}
	})

	t.Run("unpaid", func(t *testing.T) {
		bill := &models.Bill{ID: "b1", Month: 3, Year: 2025, Amount: 67000}
		s := MemberStatus(user, 3, 2025, bill, []*models.Payment{
			payment("p", 30000, models.PaymentInstallment1, models.StatusApproved),
		})
		if s.State != models.StateUnpaid || s.IsPaid {
			t.Errorf("State = %s IsPaid = %v, want UNPAID/false", s.State, s.IsPaid)
		}
		if *s.Remaining != 37000 {
			t.Errorf("Remaining = %d, want 37000", *s.Remaining)
		}
	})

	t.Run("paid", func(t *testing.T) {
		bill := &models.Bill{ID: "b1", Month: 3, Year: 2025, Amount: 67000}
		s := MemberStatus(user, 3, 2025, bill, []*models.Payment{
			payment("p", 67000, models.PaymentFull, models.StatusApproved),
		})
		if s.State != models.StatePaid || !s.IsPaid {
			t.Errorf("State = %s IsPaid = %v, want PAID/true", s.State, s.IsPaid)
		}
	})
}

func TestSplitByState(t *testing.T) {
	statuses := []models.MemberStatus{
		{UserID: "a", State: models.StatePaid},
		{UserID: "b", State: models.StateUnpaid},
		{UserID: "c", State: models.StateNoBill},
	}
	paid, unpaid := SplitByState(statuses)
	if len(paid) != 1 || len(unpaid) != 2 {
		t.Errorf("paid=%d unpaid=%d, want 1/2", len(paid), len(unpaid))
	}
}
