// Package service exposes the ledger over connect RPC and a few plain HTTP
// routes for files.
package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/duespay/internal/auth"
	"github.com/mmynk/duespay/internal/ledger"
	"github.com/mmynk/duespay/internal/metrics"
	"github.com/mmynk/duespay/internal/middleware"
	"github.com/mmynk/duespay/internal/receipts"
	"github.com/mmynk/duespay/pkg/api/duespayconnect"
)

// Deps are the collaborators NewHandler wires together.
type Deps struct {
	Ledger        *ledger.Ledger
	Authenticator auth.Authenticator
	Users         UserLookup
	JWT           *auth.JWTManager
	Receipts      *receipts.LocalStore
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// NewHandler builds the complete HTTP handler: the three RPC services, the
// receipt and export routes, /metrics and /healthz, behind request logging
// and CORS.
func NewHandler(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	observe := []connect.Interceptor{
		middleware.MetricsInterceptor(d.Metrics),
		middleware.LoggingInterceptor(logger),
	}
	authn := middleware.RequireAuth(d.JWT,
		duespayconnect.AuthServiceRegisterProcedure,
		duespayconnect.AuthServiceLoginProcedure,
	)

	authPath, authHandler := duespayconnect.NewAuthServiceHandler(
		NewAuthService(d.Authenticator, d.JWT, d.Users, logger),
		connect.WithInterceptors(append(observe, authn)...),
	)
	mux.Handle(authPath, authHandler)

	billingPath, billingHandler := duespayconnect.NewBillingServiceHandler(
		NewBillingService(d.Ledger, logger),
		connect.WithInterceptors(append(observe, authn)...),
	)
	mux.Handle(billingPath, billingHandler)

	adminPath, adminHandler := duespayconnect.NewAdminServiceHandler(
		NewAdminService(d.Ledger, logger),
		connect.WithInterceptors(append(observe, authn, middleware.RequireAdmin())...),
	)
	mux.Handle(adminPath, adminHandler)

	mux.Handle("POST /upload/receipt", middleware.HTTPAuth(d.JWT, false, uploadReceipt(d.Receipts, d.Metrics, logger)))
	mux.Handle("GET "+receipts.URLPrefix+"{name}", middleware.HTTPAuth(d.JWT, false, serveReceipt(d.Receipts, logger)))
	mux.Handle("GET /admin/export", middleware.HTTPAuth(d.JWT, true, exportPayments(d.Ledger, logger)))

	mux.Handle("GET /metrics", d.Metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Debug("Failed to write health response", "error", err)
		}
	})

	return middleware.RequestLogger(logger, middleware.CORS(mux))
}
