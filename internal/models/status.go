package models

// SettlementState classifies a member for one billing period.
type SettlementState string

const (
	StatePaid   SettlementState = "PAID"
	StateUnpaid SettlementState = "UNPAID"
	StateNoBill SettlementState = "NO_BILL"
)

// MemberStatus is one member's settlement status for a period.
// Amount and Remaining are nil when the member has no bill for the period.
type MemberStatus struct {
	UserID       string
	Name         string
	Email        string
	Month        int
	Year         int
	Amount       *int64
	PaidApproved int64
	Remaining    *int64
	IsPaid       bool
	State        SettlementState
}

// PeriodReport groups member statuses for one (month, year).
type PeriodReport struct {
	Month        int
	Year         int
	TotalMembers int
	Paid         []MemberStatus
	Unpaid       []MemberStatus
	All          []MemberStatus
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalMembers     int
	TotalBills       int
	TotalPayments    int
	PendingPayments  int
	ApprovedPayments int
	RejectedPayments int
	TotalRevenue     int64
}
