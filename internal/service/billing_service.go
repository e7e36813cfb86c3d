package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/duespay/internal/ledger"
	"github.com/mmynk/duespay/internal/middleware"
	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/pkg/api"
	"github.com/mmynk/duespay/pkg/api/duespayconnect"
)

var _ duespayconnect.BillingServiceHandler = (*BillingService)(nil)

// BillingService implements the member-facing RPCs.
type BillingService struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(l *ledger.Ledger, logger *slog.Logger) *BillingService {
	return &BillingService{ledger: l, logger: logger}
}

// GetCurrentBill returns the caller's bill for this month, opening it on first access.
func (s *BillingService) GetCurrentBill(ctx context.Context, req *connect.Request[api.GetCurrentBillRequest]) (*connect.Response[api.GetCurrentBillResponse], error) {
	view, err := s.ledger.CurrentBill(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}

	payments := make([]api.Payment, 0, len(view.Payments))
	for _, p := range view.Payments {
		payments = append(payments, toAPIPayment(p))
	}

	return connect.NewResponse(&api.GetCurrentBillResponse{
		Bill:          toAPIBill(&view.Bill),
		Payments:      payments,
		ApprovedTotal: view.ApprovedTotal,
		Remaining:     view.Remaining,
	}), nil
}

// SubmitPayment records a PENDING payment against one of the caller's bills.
func (s *BillingService) SubmitPayment(ctx context.Context, req *connect.Request[api.SubmitPaymentRequest]) (*connect.Response[api.SubmitPaymentResponse], error) {
	if err := api.Validate(req.Msg); err != nil {
		return nil, toConnectError(s.logger, err)
	}

	payment, err := s.ledger.SubmitPayment(ctx, middleware.GetUserID(ctx), ledger.SubmitPaymentInput{
		BillID:     req.Msg.BillID,
		Amount:     req.Msg.Amount,
		Type:       models.PaymentType(req.Msg.Type),
		ReceiptURL: req.Msg.ReceiptURL,
		Notes:      req.Msg.Notes,
	})
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}

	return connect.NewResponse(&api.SubmitPaymentResponse{Payment: toAPIPayment(payment)}), nil
}

// ListMyPayments returns the caller's payments, optionally for one bill.
func (s *BillingService) ListMyPayments(ctx context.Context, req *connect.Request[api.ListMyPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	records, err := s.ledger.ListMemberPayments(ctx, middleware.GetUserID(ctx), req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: toAPIRecords(records)}), nil
}
