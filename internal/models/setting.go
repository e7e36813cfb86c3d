package models

// DefaultBillAmountKey is the setting holding the amount of newly created bills.
const DefaultBillAmountKey = "default_bill_amount"

// Setting is an administrator-managed key/value pair.
type Setting struct {
	Key         string
	Value       string
	Description string

	// UpdatedAt is the Unix timestamp of the last write.
	UpdatedAt int64
}
