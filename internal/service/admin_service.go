package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/duespay/internal/ledger"
	"github.com/mmynk/duespay/internal/models"
	"github.com/mmynk/duespay/pkg/api"
	"github.com/mmynk/duespay/pkg/api/duespayconnect"
)

var _ duespayconnect.AdminServiceHandler = (*AdminService)(nil)

// AdminService implements the administrator RPCs. The admin gate is an
// interceptor; handlers assume an ADMIN caller.
type AdminService struct {
	ledger *ledger.Ledger
	now    func() time.Time
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(l *ledger.Ledger, logger *slog.Logger) *AdminService {
	return &AdminService{ledger: l, now: time.Now, logger: logger}
}

func (s *AdminService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	records, err := s.ledger.ListPayments(ctx, req.Msg.Status)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: toAPIRecords(records)}), nil
}

// AdjudicatePayment approves or rejects a payment and settles its bill.
func (s *AdminService) AdjudicatePayment(ctx context.Context, req *connect.Request[api.AdjudicatePaymentRequest]) (*connect.Response[api.AdjudicatePaymentResponse], error) {
	if err := api.Validate(req.Msg); err != nil {
		return nil, toConnectError(s.logger, err)
	}
	action, err := ledger.ParseAction(req.Msg.Action)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}

	record, err := s.ledger.AdjudicatePayment(ctx, req.Msg.PaymentID, action, req.Msg.Notes)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.AdjudicatePaymentResponse{Payment: toAPIRecord(record)}), nil
}

func (s *AdminService) ListSettings(ctx context.Context, req *connect.Request[api.ListSettingsRequest]) (*connect.Response[api.ListSettingsResponse], error) {
	settings, err := s.ledger.ListSettings(ctx)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	out := make([]api.Setting, 0, len(settings))
	for _, st := range settings {
		out = append(out, toAPISetting(st))
	}
	return connect.NewResponse(&api.ListSettingsResponse{Settings: out}), nil
}

func (s *AdminService) UpsertSetting(ctx context.Context, req *connect.Request[api.UpsertSettingRequest]) (*connect.Response[api.UpsertSettingResponse], error) {
	if err := api.Validate(req.Msg); err != nil {
		return nil, toConnectError(s.logger, err)
	}
	setting, err := s.ledger.UpsertSetting(ctx, req.Msg.Key, req.Msg.Value, req.Msg.Description)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.UpsertSettingResponse{Setting: toAPISetting(setting)}), nil
}

func (s *AdminService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	users, err := s.ledger.ListUsers(ctx)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	out := make([]api.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, api.UserSummary{
			User:         toAPIUser(&u.User),
			BillCount:    u.BillCount,
			PaymentCount: u.PaymentCount,
		})
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: out}), nil
}

func (s *AdminService) UpdateUser(ctx context.Context, req *connect.Request[api.UpdateUserRequest]) (*connect.Response[api.UpdateUserResponse], error) {
	if err := api.Validate(req.Msg); err != nil {
		return nil, toConnectError(s.logger, err)
	}
	user, err := s.ledger.UpdateUser(ctx, req.Msg.UserID, ledger.UpdateUserInput{
		Name:  req.Msg.Name,
		Email: req.Msg.Email,
		Role:  models.Role(req.Msg.Role),
	})
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.UpdateUserResponse{User: toAPIUser(user)}), nil
}

func (s *AdminService) GetStats(ctx context.Context, req *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error) {
	stats, err := s.ledger.Stats(ctx)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.GetStatsResponse{Stats: api.Stats(*stats)}), nil
}

// ListUnpaidMembers reports settlement per member. A zero month and year
// select the current month.
func (s *AdminService) ListUnpaidMembers(ctx context.Context, req *connect.Request[api.ListUnpaidMembersRequest]) (*connect.Response[api.ListUnpaidMembersResponse], error) {
	month, year := req.Msg.Month, req.Msg.Year
	if month == 0 && year == 0 {
		now := s.now()
		month, year = int(now.Month()), now.Year()
	}

	report, err := s.ledger.UnpaidMembers(ctx, month, year)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.ListUnpaidMembersResponse{
		Month:        report.Month,
		Year:         report.Year,
		TotalMembers: report.TotalMembers,
		Paid:         toAPIStatuses(report.Paid),
		Unpaid:       toAPIStatuses(report.Unpaid),
	}), nil
}

// RecomputeBill repairs a bill's paid flag from its approved payments.
func (s *AdminService) RecomputeBill(ctx context.Context, req *connect.Request[api.RecomputeBillRequest]) (*connect.Response[api.RecomputeBillResponse], error) {
	if err := api.Validate(req.Msg); err != nil {
		return nil, toConnectError(s.logger, err)
	}
	bill, err := s.ledger.RecomputeBillStatus(ctx, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.RecomputeBillResponse{Bill: toAPIBill(bill)}), nil
}

func (s *AdminService) ExportPayments(ctx context.Context, req *connect.Request[api.ExportPaymentsRequest]) (*connect.Response[api.ExportPaymentsResponse], error) {
	res, err := s.ledger.ExportPayments(ctx, ledger.ExportRequest{
		Format:    req.Msg.Format,
		Status:    req.Msg.Status,
		StartDate: req.Msg.StartDate,
		EndDate:   req.Msg.EndDate,
	})
	if err != nil {
		return nil, toConnectError(s.logger, err)
	}
	return connect.NewResponse(&api.ExportPaymentsResponse{
		Filename:    res.Filename,
		ContentType: res.ContentType,
		Count:       res.Count,
		Data:        res.Data,
	}), nil
}
