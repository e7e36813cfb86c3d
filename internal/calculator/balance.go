package calculator

import "github.com/mmynk/duespay/internal/models"

// BillBalance is the settlement arithmetic for one bill.
type BillBalance struct {
	ApprovedTotal int64 // Sum of APPROVED payment amounts
	Remaining     int64 // Amount still owed, never negative
}

// Settled reports whether approved payments cover the bill.
func (b BillBalance) Settled() bool {
	return b.Remaining == 0
}

// Balance computes the approved total and remaining amount of a bill.
// Only APPROVED payments count; PENDING and REJECTED ones are ignored.
//
// Algorithm:
// - approvedTotal = sum(amount for p in payments if p.status == APPROVED)
// - remaining = max(billAmount - approvedTotal, 0)
func Balance(billAmount int64, payments []*models.Payment) BillBalance {
	approved := ApprovedTotal(payments)
	return BillBalance{
		ApprovedTotal: approved,
		Remaining:     remaining(billAmount, approved),
	}
}

// ApprovedTotal sums the amounts of APPROVED payments.
func ApprovedTotal(payments []*models.Payment) int64 {
	return ApprovedTotalExcluding(payments, "")
}

// ApprovedTotalExcluding sums APPROVED payments other than the one with paymentID.
// Used when re-validating a payment that may already be approved.
func ApprovedTotalExcluding(payments []*models.Payment, paymentID string) int64 {
	var total int64
	for _, p := range payments {
		if p.Status != models.StatusApproved {
			continue
		}
		if paymentID != "" && p.ID == paymentID {
			continue
		}
		total += p.Amount
	}
	return total
}

// IsSettled is the isPaid formula: approved total >= bill amount.
func IsSettled(billAmount int64, payments []*models.Payment) bool {
	return ApprovedTotal(payments) >= billAmount
}

// InstallmentSlots describes which installment slots of a bill are taken.
// Payments count regardless of status.
type InstallmentSlots struct {
	Count int
	Taken map[models.PaymentType]bool
}

// Installments collects the installment slot usage of a bill's payments.
func Installments(payments []*models.Payment) InstallmentSlots {
	slots := InstallmentSlots{Taken: make(map[models.PaymentType]bool)}
	for _, p := range payments {
		if !p.Type.IsInstallment() {
			continue
		}
		slots.Count++
		slots.Taken[p.Type] = true
	}
	return slots
}

func remaining(amount, approved int64) int64 {
	if approved >= amount {
		return 0
	}
	return amount - approved
}
