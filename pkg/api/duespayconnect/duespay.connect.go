// Package duespayconnect wires the duespay.v1 services to connect handlers
// and clients. It follows the layout protoc-gen-connect-go produces, with
// the messages from package api and the JSON codec preinstalled.
package duespayconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/duespay/pkg/api"
)

const (
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "duespay.v1.AuthService"
	// BillingServiceName is the fully-qualified name of the BillingService service.
	BillingServiceName = "duespay.v1.BillingService"
	// AdminServiceName is the fully-qualified name of the AdminService service.
	AdminServiceName = "duespay.v1.AdminService"
)

// Procedure names, as they appear in URL paths.
const (
	AuthServiceRegisterProcedure       = "/duespay.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/duespay.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/duespay.v1.AuthService/GetCurrentUser"

	BillingServiceGetCurrentBillProcedure = "/duespay.v1.BillingService/GetCurrentBill"
	BillingServiceSubmitPaymentProcedure  = "/duespay.v1.BillingService/SubmitPayment"
	BillingServiceListMyPaymentsProcedure = "/duespay.v1.BillingService/ListMyPayments"

	AdminServiceListPaymentsProcedure      = "/duespay.v1.AdminService/ListPayments"
	AdminServiceAdjudicatePaymentProcedure = "/duespay.v1.AdminService/AdjudicatePayment"
	AdminServiceListSettingsProcedure      = "/duespay.v1.AdminService/ListSettings"
	AdminServiceUpsertSettingProcedure     = "/duespay.v1.AdminService/UpsertSetting"
	AdminServiceListUsersProcedure         = "/duespay.v1.AdminService/ListUsers"
	AdminServiceUpdateUserProcedure        = "/duespay.v1.AdminService/UpdateUser"
	AdminServiceGetStatsProcedure          = "/duespay.v1.AdminService/GetStats"
	AdminServiceListUnpaidMembersProcedure = "/duespay.v1.AdminService/ListUnpaidMembers"
	AdminServiceRecomputeBillProcedure     = "/duespay.v1.AdminService/RecomputeBill"
	AdminServiceExportPaymentsProcedure    = "/duespay.v1.AdminService/ExportPayments"
)

// IsAdminProcedure reports whether procedure belongs to AdminService.
func IsAdminProcedure(procedure string) bool {
	return strings.HasPrefix(procedure, "/"+AdminServiceName+"/")
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

// AuthServiceHandler is implemented by the server.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	register := connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...)
	login := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
	getCurrentUser := connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...)
	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceRegisterProcedure:
			register.ServeHTTP(w, r)
		case AuthServiceLoginProcedure:
			login.ServeHTTP(w, r)
		case AuthServiceGetCurrentUserProcedure:
			getCurrentUser.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// AuthServiceClient is a client for the duespay.v1.AuthService service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.AuthResponse]
	login          *connect.Client[api.LoginRequest, api.AuthResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

// NewAuthServiceClient constructs a client. baseURL is the server root,
// e.g. http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.AuthResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[api.LoginRequest, api.AuthResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// BillingServiceHandler is implemented by the server.
type BillingServiceHandler interface {
	GetCurrentBill(context.Context, *connect.Request[api.GetCurrentBillRequest]) (*connect.Response[api.GetCurrentBillResponse], error)
	SubmitPayment(context.Context, *connect.Request[api.SubmitPaymentRequest]) (*connect.Response[api.SubmitPaymentResponse], error)
	ListMyPayments(context.Context, *connect.Request[api.ListMyPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
}

// NewBillingServiceHandler builds an HTTP handler from the service implementation.
func NewBillingServiceHandler(svc BillingServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getCurrentBill := connect.NewUnaryHandler(BillingServiceGetCurrentBillProcedure, svc.GetCurrentBill, opts...)
	submitPayment := connect.NewUnaryHandler(BillingServiceSubmitPaymentProcedure, svc.SubmitPayment, opts...)
	listMyPayments := connect.NewUnaryHandler(BillingServiceListMyPaymentsProcedure, svc.ListMyPayments, opts...)
	return "/" + BillingServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BillingServiceGetCurrentBillProcedure:
			getCurrentBill.ServeHTTP(w, r)
		case BillingServiceSubmitPaymentProcedure:
			submitPayment.ServeHTTP(w, r)
		case BillingServiceListMyPaymentsProcedure:
			listMyPayments.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// BillingServiceClient is a client for the duespay.v1.BillingService service.
type BillingServiceClient interface {
	GetCurrentBill(context.Context, *connect.Request[api.GetCurrentBillRequest]) (*connect.Response[api.GetCurrentBillResponse], error)
	SubmitPayment(context.Context, *connect.Request[api.SubmitPaymentRequest]) (*connect.Response[api.SubmitPaymentResponse], error)
	ListMyPayments(context.Context, *connect.Request[api.ListMyPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
}

type billingServiceClient struct {
	getCurrentBill *connect.Client[api.GetCurrentBillRequest, api.GetCurrentBillResponse]
	submitPayment  *connect.Client[api.SubmitPaymentRequest, api.SubmitPaymentResponse]
	listMyPayments *connect.Client[api.ListMyPaymentsRequest, api.ListPaymentsResponse]
}

// NewBillingServiceClient constructs a client.
func NewBillingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &billingServiceClient{
		getCurrentBill: connect.NewClient[api.GetCurrentBillRequest, api.GetCurrentBillResponse](httpClient, baseURL+BillingServiceGetCurrentBillProcedure, opts...),
		submitPayment:  connect.NewClient[api.SubmitPaymentRequest, api.SubmitPaymentResponse](httpClient, baseURL+BillingServiceSubmitPaymentProcedure, opts...),
		listMyPayments: connect.NewClient[api.ListMyPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+BillingServiceListMyPaymentsProcedure, opts...),
	}
}

func (c *billingServiceClient) GetCurrentBill(ctx context.Context, req *connect.Request[api.GetCurrentBillRequest]) (*connect.Response[api.GetCurrentBillResponse], error) {
	return c.getCurrentBill.CallUnary(ctx, req)
}

func (c *billingServiceClient) SubmitPayment(ctx context.Context, req *connect.Request[api.SubmitPaymentRequest]) (*connect.Response[api.SubmitPaymentResponse], error) {
	return c.submitPayment.CallUnary(ctx, req)
}

func (c *billingServiceClient) ListMyPayments(ctx context.Context, req *connect.Request[api.ListMyPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listMyPayments.CallUnary(ctx, req)
}

// AdminServiceHandler is implemented by the server.
type AdminServiceHandler interface {
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	AdjudicatePayment(context.Context, *connect.Request[api.AdjudicatePaymentRequest]) (*connect.Response[api.AdjudicatePaymentResponse], error)
	ListSettings(context.Context, *connect.Request[api.ListSettingsRequest]) (*connect.Response[api.ListSettingsResponse], error)
	UpsertSetting(context.Context, *connect.Request[api.UpsertSettingRequest]) (*connect.Response[api.UpsertSettingResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	UpdateUser(context.Context, *connect.Request[api.UpdateUserRequest]) (*connect.Response[api.UpdateUserResponse], error)
	GetStats(context.Context, *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error)
	ListUnpaidMembers(context.Context, *connect.Request[api.ListUnpaidMembersRequest]) (*connect.Response[api.ListUnpaidMembersResponse], error)
	RecomputeBill(context.Context, *connect.Request[api.RecomputeBillRequest]) (*connect.Response[api.RecomputeBillResponse], error)
	ExportPayments(context.Context, *connect.Request[api.ExportPaymentsRequest]) (*connect.Response[api.ExportPaymentsResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler from the service implementation.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	routes := map[string]http.Handler{
		AdminServiceListPaymentsProcedure:      connect.NewUnaryHandler(AdminServiceListPaymentsProcedure, svc.ListPayments, opts...),
		AdminServiceAdjudicatePaymentProcedure: connect.NewUnaryHandler(AdminServiceAdjudicatePaymentProcedure, svc.AdjudicatePayment, opts...),
		AdminServiceListSettingsProcedure:      connect.NewUnaryHandler(AdminServiceListSettingsProcedure, svc.ListSettings, opts...),
		AdminServiceUpsertSettingProcedure:     connect.NewUnaryHandler(AdminServiceUpsertSettingProcedure, svc.UpsertSetting, opts...),
		AdminServiceListUsersProcedure:         connect.NewUnaryHandler(AdminServiceListUsersProcedure, svc.ListUsers, opts...),
		AdminServiceUpdateUserProcedure:        connect.NewUnaryHandler(AdminServiceUpdateUserProcedure, svc.UpdateUser, opts...),
		AdminServiceGetStatsProcedure:          connect.NewUnaryHandler(AdminServiceGetStatsProcedure, svc.GetStats, opts...),
		AdminServiceListUnpaidMembersProcedure: connect.NewUnaryHandler(AdminServiceListUnpaidMembersProcedure, svc.ListUnpaidMembers, opts...),
		AdminServiceRecomputeBillProcedure:     connect.NewUnaryHandler(AdminServiceRecomputeBillProcedure, svc.RecomputeBill, opts...),
		AdminServiceExportPaymentsProcedure:    connect.NewUnaryHandler(AdminServiceExportPaymentsProcedure, svc.ExportPayments, opts...),
	}
	return "/" + AdminServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// AdminServiceClient is a client for the duespay.v1.AdminService service.
type AdminServiceClient interface {
	AdminServiceHandler
}

type adminServiceClient struct {
	listPayments      *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	adjudicatePayment *connect.Client[api.AdjudicatePaymentRequest, api.AdjudicatePaymentResponse]
	listSettings      *connect.Client[api.ListSettingsRequest, api.ListSettingsResponse]
	upsertSetting     *connect.Client[api.UpsertSettingRequest, api.UpsertSettingResponse]
	listUsers         *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	updateUser        *connect.Client[api.UpdateUserRequest, api.UpdateUserResponse]
	getStats          *connect.Client[api.GetStatsRequest, api.GetStatsResponse]
	listUnpaidMembers *connect.Client[api.ListUnpaidMembersRequest, api.ListUnpaidMembersResponse]
	recomputeBill     *connect.Client[api.RecomputeBillRequest, api.RecomputeBillResponse]
	exportPayments    *connect.Client[api.ExportPaymentsRequest, api.ExportPaymentsResponse]
}

// NewAdminServiceClient constructs a client.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &adminServiceClient{
		listPayments:      connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+AdminServiceListPaymentsProcedure, opts...),
		adjudicatePayment: connect.NewClient[api.AdjudicatePaymentRequest, api.AdjudicatePaymentResponse](httpClient, baseURL+AdminServiceAdjudicatePaymentProcedure, opts...),
		listSettings:      connect.NewClient[api.ListSettingsRequest, api.ListSettingsResponse](httpClient, baseURL+AdminServiceListSettingsProcedure, opts...),
		upsertSetting:     connect.NewClient[api.UpsertSettingRequest, api.UpsertSettingResponse](httpClient, baseURL+AdminServiceUpsertSettingProcedure, opts...),
		listUsers:         connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL+AdminServiceListUsersProcedure, opts...),
		updateUser:        connect.NewClient[api.UpdateUserRequest, api.UpdateUserResponse](httpClient, baseURL+AdminServiceUpdateUserProcedure, opts...),
		getStats:          connect.NewClient[api.GetStatsRequest, api.GetStatsResponse](httpClient, baseURL+AdminServiceGetStatsProcedure, opts...),
		listUnpaidMembers: connect.NewClient[api.ListUnpaidMembersRequest, api.ListUnpaidMembersResponse](httpClient, baseURL+AdminServiceListUnpaidMembersProcedure, opts...),
		recomputeBill:     connect.NewClient[api.RecomputeBillRequest, api.RecomputeBillResponse](httpClient, baseURL+AdminServiceRecomputeBillProcedure, opts...),
		exportPayments:    connect.NewClient[api.ExportPaymentsRequest, api.ExportPaymentsResponse](httpClient, baseURL+AdminServiceExportPaymentsProcedure, opts...),
	}
}

func (c *adminServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *adminServiceClient) AdjudicatePayment(ctx context.Context, req *connect.Request[api.AdjudicatePaymentRequest]) (*connect.Response[api.AdjudicatePaymentResponse], error) {
	return c.adjudicatePayment.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListSettings(ctx context.Context, req *connect.Request[api.ListSettingsRequest]) (*connect.Response[api.ListSettingsResponse], error) {
	return c.listSettings.CallUnary(ctx, req)
}

func (c *adminServiceClient) UpsertSetting(ctx context.Context, req *connect.Request[api.UpsertSettingRequest]) (*connect.Response[api.UpsertSettingResponse], error) {
	return c.upsertSetting.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *adminServiceClient) UpdateUser(ctx context.Context, req *connect.Request[api.UpdateUserRequest]) (*connect.Response[api.UpdateUserResponse], error) {
	return c.updateUser.CallUnary(ctx, req)
}

func (c *adminServiceClient) GetStats(ctx context.Context, req *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error) {
	return c.getStats.CallUnary(ctx, req)
}

func (c *adminServiceClient) ListUnpaidMembers(ctx context.Context, req *connect.Request[api.ListUnpaidMembersRequest]) (*connect.Response[api.ListUnpaidMembersResponse], error) {
	return c.listUnpaidMembers.CallUnary(ctx, req)
}

func (c *adminServiceClient) RecomputeBill(ctx context.Context, req *connect.Request[api.RecomputeBillRequest]) (*connect.Response[api.RecomputeBillResponse], error) {
	return c.recomputeBill.CallUnary(ctx, req)
}

func (c *adminServiceClient) ExportPayments(ctx context.Context, req *connect.Request[api.ExportPaymentsRequest]) (*connect.Response[api.ExportPaymentsResponse], error) {
	return c.exportPayments.CallUnary(ctx, req)
}
