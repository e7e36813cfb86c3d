package models

import "strings"

// PaymentType says whether a payment covers the whole bill or one installment.
type PaymentType string

const (
	PaymentFull         PaymentType = "FULL"
	PaymentInstallment1 PaymentType = "INSTALLMENT_1"
	PaymentInstallment2 PaymentType = "INSTALLMENT_2"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentFull, PaymentInstallment1, PaymentInstallment2:
		return true
	}
	return false
}

// IsInstallment reports whether t occupies one of the two installment slots.
func (t PaymentType) IsInstallment() bool {
	return t == PaymentInstallment1 || t == PaymentInstallment2
}

// PaymentStatus is the adjudication state of a payment.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusApproved PaymentStatus = "APPROVED"
	StatusRejected PaymentStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParsePaymentStatus parses a status filter. Empty and "all" mean no filter
// and return "" with ok set.
func ParsePaymentStatus(s string) (status PaymentStatus, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", true
	}
	status = PaymentStatus(strings.ToUpper(s))
	return status, status.Valid()
}

// Payment is one proof-of-payment submission against a bill.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// BillID is the bill this payment settles.
	BillID string

	// UserID is the bill's owner. Always equal to the bill's UserID.
	UserID string

	// Amount is the paid amount in whole currency units. Immutable.
	Amount int64

	// Type is FULL or one of the installment slots. Immutable.
	Type PaymentType

	// Status starts PENDING and changes only through adjudication.
	Status PaymentStatus

	// ReceiptURL references the stored proof image.
	ReceiptURL string

	// Notes is optional free text, overwritten on adjudication.
	Notes string

	// CreatedAt is the Unix timestamp when the payment was submitted.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}

// PaymentRecord is a payment with its user and bill fields denormalized.
type PaymentRecord struct {
	Payment
	UserName   string
	UserEmail  string
	BillMonth  int
	BillYear   int
	BillAmount int64
}
