package cashier

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/kasir-pos/internal/common"
)

// Handler serves the cashier directory endpoints.
type Handler struct {
	Svc *Service
}

// List handles GET /cashiers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cashiers, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list cashiers", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cashiers})
}

type verifyPinRequest struct {
	Pin string `json:"pin"`
}

// VerifyPin handles POST /cashiers/{code}/verify-pin. Cashiers without a
// PIN requirement sign in with the code alone.
func (h *Handler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	var req verifyPinRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
	}

	c, err := h.Svc.Authenticate(r.Context(), code, req.Pin)
	if err != nil {
		h.writeError(w, err, "failed to verify pin")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// writeError renders service rejections, which arrive as AppErrors with the
// status and code already decided.
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
