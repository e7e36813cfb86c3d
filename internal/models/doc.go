// Package models defines the core domain models for duespay.
//
// # Models
//
//   - User: a registered account, either an ADMIN or a MEMBER
//   - Bill: the monthly amount one member owes for one (month, year) period
//   - Payment: one proof-of-payment submission against a Bill
//   - Setting: a key/value pair adjusted by administrators
//
// Read models used by the admin surface:
//   - PaymentRecord: a Payment denormalized with its user and bill fields
//   - MemberStatus: one member's settlement status for a period
//
// # Design Principles
//
//  1. **Integer money**: amounts are whole currency units stored as int64
//  2. **Derived state**: Bill.IsPaid is a cache of the approved-payment sum and is
//     always recomputed, never trusted
//  3. **Avoid circular references**: relationships are ID strings, not pointers
package models
