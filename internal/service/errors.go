package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/duespay/internal/auth"
	"github.com/mmynk/duespay/internal/ledger"
	"github.com/mmynk/duespay/pkg/api"
)

// codes maps ledger error kinds to connect codes.
var codes = map[ledger.Kind]connect.Code{
	ledger.KindUnauthorized: connect.CodePermissionDenied,
	ledger.KindNotFound:     connect.CodeNotFound,
	ledger.KindInvalidInput: connect.CodeInvalidArgument,
	ledger.KindBusinessRule: connect.CodeFailedPrecondition,
	ledger.KindConflict:     connect.CodeAlreadyExists,
}

// toConnectError converts err into a connect error with an api.ErrorInfo
// detail. Internal errors are logged and replaced by a generic message.
func toConnectError(logger *slog.Logger, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	kind, code := classify(err)
	info := api.ErrorInfo{Kind: string(kind), Message: err.Error(), Fields: map[string]any{}}

	var (
		verr   *api.ValidationError
		lverr  ledger.ValidationError
		balErr *ledger.BalanceError
	)
	switch {
	case errors.As(err, &verr):
		fields := make([]any, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, f.String())
		}
		info.Fields["violations"] = fields
	case errors.As(err, &lverr):
		info.Fields["field"] = lverr.Field
	case errors.As(err, &balErr):
		info.Fields["requested"] = balErr.Requested
		info.Fields["remaining"] = balErr.Remaining
	}

	if code == connect.CodeInternal {
		logger.Error("Internal error", "error", err)
		err = errors.New("internal error")
		info.Message = err.Error()
		info.Fields = nil
	}

	out := connect.NewError(code, err)
	if detail, derr := api.NewErrorDetail(info); derr == nil {
		out.AddDetail(detail)
	} else {
		logger.Warn("Failed to build error detail", "error", derr)
	}
	return out
}

func classify(err error) (ledger.Kind, connect.Code) {
	var verr *api.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		return ledger.KindInvalidInput, connect.CodeInvalidArgument
	case errors.Is(err, auth.ErrEmailExists):
		return ledger.KindConflict, connect.CodeAlreadyExists
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ledger.KindUnauthorized, connect.CodeUnauthenticated
	}

	kind := ledger.KindOf(err)
	if code, ok := codes[kind]; ok {
		return kind, code
	}
	return ledger.KindInternal, connect.CodeInternal
}
