package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/kasir-pos/internal/common"
	"github.com/noah-isme/kasir-pos/internal/money"
)

// Handler wires catalog operations to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type productPayload struct {
	Name            string      `json:"name" validate:"required"`
	Price           money.Money `json:"price" validate:"gte=0"`
	Barcode         *string     `json:"barcode"`
	Visible         *bool       `json:"visible"`
	QuickDisplay    bool        `json:"quickDisplay"`
	AllowDecimalQty bool        `json:"allowDecimalQty"`
	DisplayOrder    int64       `json:"displayOrder"`
}

// List returns the catalog snapshot.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.Svc.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err, "unable to load products")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Create stores a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Svc.Create(r.Context(), payload.toProduct(0))
	if err != nil {
		h.writeError(w, err, "unable to create product")
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update replaces a product's editable fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.Svc.Update(r.Context(), payload.toProduct(id))
	if err != nil {
		h.writeError(w, err, "unable to update product")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// writeError maps service errors onto the canonical error payload. Errors
// that are not AppErrors stay opaque to the client.
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

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (productPayload, bool) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return productPayload{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return productPayload{}, false
		}
	}
	return payload, true
}

func (p productPayload) toProduct(id int64) Product {
	visible := true
	if p.Visible != nil {
		visible = *p.Visible
	}
	return Product{
		ID:              id,
		Name:            p.Name,
		Price:           p.Price,
		Barcode:         p.Barcode,
		Visible:         visible,
		QuickDisplay:    p.QuickDisplay,
		AllowDecimalQty: p.AllowDecimalQty,
		DisplayOrder:    p.DisplayOrder,
	}
}
