package calculator

import "github.com/mmynk/duespay/internal/models"

// MemberStatus classifies one member for a period.
// A nil bill yields NO_BILL with no amount.
func MemberStatus(user *models.User, month, year int, bill *models.Bill, payments []*models.Payment) models.MemberStatus {
	status := models.MemberStatus{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Email:  user.Email,
		Month:  month,
		Year:   year,
		State:  models.StateNoBill,
	}
	if bill == nil {
		return status
	}

	bal := Balance(bill.Amount, payments)
	amount := bill.Amount
	rem := bal.Remaining

	status.Month = bill.Month
	status.Year = bill.Year
	status.Amount = &amount
	status.PaidApproved = bal.ApprovedTotal
	status.Remaining = &rem
	status.IsPaid = bal.Settled()
	if status.IsPaid {
		status.State = models.StatePaid
	} else {
		status.State = models.StateUnpaid
	}
	return status
}

// SplitByState groups statuses into paid and unpaid lists.
// NO_BILL members count as unpaid.
func SplitByState(statuses []models.MemberStatus) (paid, unpaid []models.MemberStatus) {
	for _, s := range statuses {
		if s.State == models.StatePaid {
			paid = append(paid, s)
		} else {
			unpaid = append(unpaid, s)
		}
	}
	return paid, unpaid
}
