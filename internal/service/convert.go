package service

import (
	"time"

	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/pkg/api"
)

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: unixTime(u.CreatedAt),
	}
}

func toAPIBill(b *models.Bill) api.Bill {
	return api.Bill{
		ID:        b.ID,
		UserID:    b.UserID,
		Month:     b.Month,
		Year:      b.Year,
		Amount:    b.Amount,
		IsPaid:    b.IsPaid,
		CreatedAt: unixTime(b.CreatedAt),
		UpdatedAt: unixTime(b.UpdatedAt),
	}
}

func toAPIPayment(p *models.Payment) api.Payment {
	return api.Payment{
		ID:         p.ID,
		BillID:     p.BillID,
		UserID:     p.UserID,
		Amount:     p.Amount,
		Type:       string(p.Type),
		Status:     string(p.Status),
		ReceiptURL: p.ReceiptURL,
		Notes:      p.Notes,
		CreatedAt:  unixTime(p.CreatedAt),
		UpdatedAt:  unixTime(p.UpdatedAt),
	}
}

func toAPIRecord(r *models.PaymentRecord) api.PaymentRecord {
	return api.PaymentRecord{
		Payment:    toAPIPayment(&r.Payment),
		UserName:   r.UserName,
		UserEmail:  r.UserEmail,
		BillMonth:  r.BillMonth,
		BillYear:   r.BillYear,
		BillAmount: r.BillAmount,
	}
}

func toAPIRecords(records []*models.PaymentRecord) []api.PaymentRecord {
	out := make([]api.PaymentRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toAPIRecord(r))
	}
	return out
}

func toAPISetting(s *models.Setting) api.Setting {
	return api.Setting{
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		UpdatedAt:   unixTime(s.UpdatedAt),
	}
}

func toAPIStatuses(statuses []models.MemberStatus) []api.MemberStatus {
	out := make([]api.MemberStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, api.MemberStatus{
			UserID:       s.UserID,
			Name:         s.Name,
			Email:        s.Email,
			Month:        s.Month,
			Year:         s.Year,
			Amount:       s.Amount,
			PaidApproved: s.PaidApproved,
			Remaining:    s.Remaining,
			IsPaid:       s.IsPaid,
			State:        string(s.State),
		})
	}
	return out
}
