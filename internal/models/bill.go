package models

// Bill is the amount one user owes for one calendar month.
// There is at most one bill per (UserID, Month, Year).
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// UserID is the member who owes the bill.
	UserID string

	// Month is the calendar month, 1-12.
	Month int

	// Year is the calendar year, e.g. 2025.
	Year int

	// Amount is the total owed in whole currency units. Always positive.
	Amount int64

	// IsPaid caches whether approved payments cover Amount.
	// Recomputed after every adjudication and on every current-bill read.
	IsPaid bool

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}

// BillView is a bill together with its payments and computed balance.
type BillView struct {
	Bill
	Payments      []*Payment
	ApprovedTotal int64
	Remaining     int64
}
