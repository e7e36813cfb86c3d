// Package api defines the duespay.v1 wire messages. Messages are plain Go
// structs carried by connect with the JSON codec in this package.
package api

import "time"

// User is an account as seen by clients. Password hashes never leave the server.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is a user with ownership counts, for the admin user list.
type UserSummary struct {
	User
	BillCount    int `json:"billCount"`
	PaymentCount int `json:"paymentCount"`
}

type Bill struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Amount    int64     `json:"amount"`
	IsPaid    bool      `json:"isPaid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Payment struct {
	ID         string    `json:"id"`
	BillID     string    `json:"billId"`
	UserID     string    `json:"userId"`
	Amount     int64     `json:"amount"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	ReceiptURL string    `json:"receiptUrl"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PaymentRecord is a payment with its owner and bill period.
type PaymentRecord struct {
	Payment
	UserName   string `json:"userName"`
	UserEmail  string `json:"userEmail"`
	BillMonth  int    `json:"billMonth"`
	BillYear   int    `json:"billYear"`
	BillAmount int64  `json:"billAmount"`
}

type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MemberStatus is one member's settlement state for a period. Amount and
// Remaining are absent when the member has no bill.
type MemberStatus struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	Amount       *int64 `json:"amount,omitempty"`
	PaidApproved int64  `json:"paidApproved"`
	Remaining    *int64 `json:"remaining,omitempty"`
	IsPaid       bool   `json:"isPaid"`
	State        string `json:"state"`
}

type Stats struct {
	TotalMembers     int   `json:"totalMembers"`
	TotalBills       int   `json:"totalBills"`
	TotalPayments    int   `json:"totalPayments"`
	PendingPayments  int   `json:"pendingPayments"`
	ApprovedPayments int   `json:"approvedPayments"`
	RejectedPayments int   `json:"rejectedPayments"`
	TotalRevenue     int64 `json:"totalRevenue"`
}

// AuthService

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// BillingService

type GetCurrentBillRequest struct{}

type GetCurrentBillResponse struct {
	Bill          Bill      `json:"bill"`
	Payments      []Payment `json:"payments"`
	ApprovedTotal int64     `json:"approvedTotal"`
	Remaining     int64     `json:"remaining"`
}

type SubmitPaymentRequest struct {
	BillID     string `json:"billId" validate:"required"`
	Amount     int64  `json:"amount" validate:"gt=0"`
	Type       string `json:"type" validate:"required"`
	ReceiptURL string `json:"receiptUrl" validate:"required"`
	Notes      string `json:"notes" validate:"max=1000"`
}

type SubmitPaymentResponse struct {
	Payment Payment `json:"payment"`
}

type ListMyPaymentsRequest struct {
	BillID string `json:"billId"`
}

// ListPaymentsResponse is shared by ListMyPayments and ListPayments.
type ListPaymentsResponse struct {
	Payments []PaymentRecord `json:"payments"`
}

// AdminService

type ListPaymentsRequest struct {
	Status string `json:"status"`
}

type AdjudicatePaymentRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
	Action    string `json:"action" validate:"required"`
	Notes     string `json:"notes" validate:"max=1000"`
}

type AdjudicatePaymentResponse struct {
	Payment PaymentRecord `json:"payment"`
}

type ListSettingsRequest struct{}

type ListSettingsResponse struct {
	Settings []Setting `json:"settings"`
}

type UpsertSettingRequest struct {
	Key         string `json:"key" validate:"required,max=100"`
	Value       string `json:"value" validate:"required"`
	Description string `json:"description"`
}

type UpsertSettingResponse struct {
	Setting Setting `json:"setting"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []UserSummary `json:"users"`
}

type UpdateUserRequest struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name" validate:"max=100"`
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role" validate:"required"`
}

type UpdateUserResponse struct {
	User User `json:"user"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	Stats Stats `json:"stats"`
}

// ListUnpaidMembersRequest selects a period. Zero month and year mean the
// current month.
type ListUnpaidMembersRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type ListUnpaidMembersResponse struct {
	Month        int            `json:"month"`
	Year         int            `json:"year"`
	TotalMembers int            `json:"totalMembers"`
	Paid         []MemberStatus `json:"paid"`
	Unpaid       []MemberStatus `json:"unpaid"`
}

type RecomputeBillRequest struct {
	BillID string `json:"billId" validate:"required"`
}

type RecomputeBillResponse struct {
	Bill Bill `json:"bill"`
}

type ExportPaymentsRequest struct {
	Format    string `json:"format"`
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ExportPaymentsResponse carries the rendered file. Data is base64 on the wire.
type ExportPaymentsResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Count       int    `json:"count"`
	Data        []byte `json:"data"`
}

// UploadReceiptResponse is the JSON body of POST /upload/receipt.
type UploadReceiptResponse struct {
	ReceiptURL string `json:"receiptUrl"`
}
