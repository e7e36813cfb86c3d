package ledger

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/duespay/internal/export"
	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/internal/storage"
)

// ListPayments returns all payments for administrators, newest first.
// status is PENDING, APPROVED, REJECTED, "all" or empty.
func (l *Ledger) ListPayments(ctx context.Context, status string) ([]*models.PaymentRecord, error) {
	st, ok := models.ParsePaymentStatus(status)
	if !ok {
		return nil, invalid("status", fmt.Sprintf("unsupported status %q", status))
	}
	records, err := l.store.ListPaymentRecords(ctx, storage.PaymentFilter{Status: st})
	if err != nil {
		l.logger.Error("Failed to list payments", "status", status, "error", err)
		return nil, err
	}
	return records, nil
}

// ListMemberPayments returns userID's own payments, optionally for one bill.
func (l *Ledger) ListMemberPayments(ctx context.Context, userID, billID string) ([]*models.PaymentRecord, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	records, err := l.store.ListPaymentRecords(ctx, storage.PaymentFilter{
		UserID: userID,
		BillID: strings.TrimSpace(billID),
	})
	if err != nil {
		l.logger.Error("Failed to list member payments", "user_id", userID, "error", err)
		return nil, err
	}
	return records, nil
}

// ExportRequest selects payments to export.
type ExportRequest struct {
	Format    string // csv (default) or json
	Status    string // status filter, "all" or empty for none
	StartDate string // 2006-01-02 or RFC3339, inclusive
	EndDate   string // 2006-01-02 (through end of day) or RFC3339, inclusive
}

// ExportResult is a rendered export file.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Count       int
}

// ExportPayments renders the matching payments as a CSV or JSON file.
func (l *Ledger) ExportPayments(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, invalid("format", err.Error())
	}
	status, ok := models.ParsePaymentStatus(req.Status)
	if !ok {
		return nil, invalid("status", fmt.Sprintf("unsupported status %q", req.Status))
	}
	from, err := parseDate(req.StartDate, false)
	if err != nil {
		return nil, invalid("start_date", err.Error())
	}
	to, err := parseDate(req.EndDate, true)
	if err != nil {
		return nil, invalid("end_date", err.Error())
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, invalid("end_date", "must not be before start_date")
	}

	records, err := l.store.ListPaymentRecords(ctx, storage.PaymentFilter{
		Status: status,
		From:   from,
		To:     to,
	})
	if err != nil {
		l.logger.Error("Failed to load payments for export", "error", err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		l.logger.Error("Failed to render export", "format", format, "error", err)
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	l.logger.Info("Payments exported", "format", format, "status", status, "count", len(records))
	return &ExportResult{
		Filename:    format.Filename(l.now()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
		Count:       len(records),
	}, nil
}

// parseDate parses a date bound. A bare date used as an upper bound covers
// the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date (want YYYY-MM-DD or RFC3339)", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
