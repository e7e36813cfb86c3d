package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmynk/duespay/internal/ledger"
	"github.com/mmynk/duespay/internal/metrics"
	"github.com/mmynk/duespay/internal/middleware"
	"github.com/mmynk/duespay/internal/receipts"
	"github.com/mmynk/duespay/pkg/api"
)

// receiptField is the multipart form field carrying the image.
const receiptField = "receipt"

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write response", "error", err)
	}
}

// uploadReceipt handles POST /upload/receipt.
func uploadReceipt(store *receipts.LocalStore, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		outcome := "rejected"
		defer func() { m.ReceiptUploads.WithLabelValues(outcome).Inc() }()

		// Leave room for the multipart envelope around the file.
		r.Body = http.MaxBytesReader(w, r.Body, store.MaxBytes()+64<<10)

		file, _, err := r.FormFile(receiptField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, receipts.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, fmt.Sprintf("missing %q file field", receiptField), http.StatusBadRequest)
			return
		}
		defer file.Close()

		ref, err := store.Save(r.Context(), middleware.GetUserID(r.Context()), file)
		switch {
		case errors.Is(err, receipts.ErrTooLarge):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		case errors.Is(err, receipts.ErrUnsupportedType):
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		case errors.Is(err, receipts.ErrEmpty):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			outcome = "error"
			logger.Error("Receipt upload failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		outcome = "stored"
		writeJSON(w, logger, http.StatusCreated, api.UploadReceiptResponse{ReceiptURL: ref})
	})
}

// serveReceipt handles GET /receipts/{name}. Members see only their own
// uploads; other receipts are reported as missing. Admins see all.
func serveReceipt(store *receipts.LocalStore, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		owner, err := store.Owner(name)
		if errors.Is(err, receipts.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			logger.Error("Failed to read receipt owner", "file", name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !middleware.IsAdmin(r.Context()) && owner != middleware.GetUserID(r.Context()) {
			http.NotFound(w, r)
			return
		}

		f, mtype, err := store.Open(name)
		if errors.Is(err, receipts.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			logger.Error("Failed to open receipt", "file", name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		var modTime time.Time
		if info, err := f.Stat(); err == nil {
			modTime = info.ModTime()
		}
		w.Header().Set("Content-Type", mtype)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, name, modTime, f)
	})
}

// exportPayments handles GET /admin/export as a file download. Query
// parameters mirror ExportPaymentsRequest.
func exportPayments(l *ledger.Ledger, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := l.ExportPayments(r.Context(), ledger.ExportRequest{
			Format:    q.Get("format"),
			Status:    q.Get("status"),
			StartDate: q.Get("startDate"),
			EndDate:   q.Get("endDate"),
		})
		if errors.Is(err, ledger.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			logger.Error("Export failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(res.Data); err != nil {
			logger.Debug("Failed to write export", "file", res.Filename, "error", err)
		}
	})
}
