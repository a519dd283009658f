package payments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/kasir-pos/internal/common"
)

// Handler exposes the payment history over HTTP. Payments are created only
// through terminal settlement, never via a direct POST.
type Handler struct {
	Store *Store
}

// List returns recent payments, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payments store not configured", nil)
		return
	}
	records, err := h.Store.ListPayments(r.Context())
	if err != nil {
		h.writeError(w, err, "unable to load payments")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": records})
}

// Get returns a single payment by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payments store not configured", nil)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payment id", nil)
		return
	}
	rec, err := h.Store.GetPayment(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = common.NewAppError("NOT_FOUND", "payment not found", http.StatusNotFound, err)
		}
		h.writeError(w, err, "unable to load payment")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		common.JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", fallback, nil)
}
