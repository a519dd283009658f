package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasir-pos/internal/catalog"
	"github.com/noah-isme/kasir-pos/internal/common"
	"github.com/noah-isme/kasir-pos/internal/payments"
	"github.com/noah-isme/kasir-pos/internal/register"
	"github.com/noah-isme/kasir-pos/internal/settlement"
)

// ProductSource resolves products for Add. Satisfied by catalog.Service.
type ProductSource interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
}

// Handler exposes the register state machine over HTTP. Every mutation
// returns the full state snapshot so the client never has to diff.
type Handler struct {
	Mgr         *Manager
	Products    ProductSource
	Logger      zerolog.Logger
	Settlements *prometheus.CounterVec
}

type createTerminalRequest struct {
	CashierName string `json:"cashierName"`
}

// Create handles POST /terminals.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTerminalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	req.CashierName = strings.TrimSpace(req.CashierName)
	if req.CashierName == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "cashierName is required", nil)
		return
	}
	t := h.Mgr.Create(req.CashierName)
	h.respondState(w, http.StatusCreated, t)
}

// Get handles GET /terminals/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	h.respondState(w, http.StatusOK, t)
}

// Delete handles DELETE /terminals/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	h.Mgr.Delete(t.ID)
	w.WriteHeader(http.StatusNoContent)
}

type addLineRequest struct {
	ProductID int64 `json:"productId"`
}

// AddLine handles POST /terminals/{id}/lines: add the product or bump
// its existing line by one step.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	product, err := h.Products.Get(r.Context(), req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	t.Do(func(cart *register.Cart, _ *settlement.Session) {
		cart.Add(product)
	})
	h.respondState(w, http.StatusOK, t)
}

type quantityStepRequest struct {
	DeltaSteps int `json:"deltaSteps"`
}

// StepQuantity handles POST /terminals/{id}/lines/{productId}/quantity.
func (h *Handler) StepQuantity(w http.ResponseWriter, r *http.Request) {
	t, productID, ok := h.terminalLine(w, r)
	if !ok {
		return
	}
	var req quantityStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	t.Do(func(cart *register.Cart, _ *settlement.Session) {
		cart.ChangeQuantity(productID, req.DeltaSteps)
	})
	h.respondState(w, http.StatusOK, t)
}

type textRequest struct {
	Text string `json:"text"`
}

// EditQuantity handles PUT /terminals/{id}/lines/{productId}/quantity-input.
func (h *Handler) EditQuantity(w http.ResponseWriter, r *http.Request) {
	h.lineTextOp(w, r, func(cart *register.Cart, productID int64, text string) {
		cart.EditQtyText(productID, text)
	})
}

// CommitQuantity handles POST /terminals/{id}/lines/{productId}/quantity-input/commit.
func (h *Handler) CommitQuantity(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(cart *register.Cart, productID int64) {
		cart.CommitQty(productID)
	})
}

// CancelQuantity handles POST /terminals/{id}/lines/{productId}/quantity-input/cancel.
func (h *Handler) CancelQuantity(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(cart *register.Cart, productID int64) {
		cart.CancelQtyEdit(productID)
	})
}

// EditPrice handles PUT /terminals/{id}/lines/{productId}/price-input.
func (h *Handler) EditPrice(w http.ResponseWriter, r *http.Request) {
	h.lineTextOp(w, r, func(cart *register.Cart, productID int64, text string) {
		cart.EditPriceText(productID, text)
	})
}

// CommitPrice handles POST /terminals/{id}/lines/{productId}/price-input/commit.
func (h *Handler) CommitPrice(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(cart *register.Cart, productID int64) {
		cart.CommitPrice(productID)
	})
}

// CancelPrice handles POST /terminals/{id}/lines/{productId}/price-input/cancel.
func (h *Handler) CancelPrice(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(cart *register.Cart, productID int64) {
		cart.CancelPriceEdit(productID)
	})
}

// RemoveLine handles DELETE /terminals/{id}/lines/{productId}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	h.lineOp(w, r, func(cart *register.Cart, productID int64) {
		cart.Remove(productID)
	})
}

// ClearLines handles DELETE /terminals/{id}/lines.
func (h *Handler) ClearLines(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	t.Do(func(cart *register.Cart, _ *settlement.Session) {
		cart.Clear()
	})
	h.respondState(w, http.StatusOK, t)
}

// OpenSettlement handles POST /terminals/{id}/settlement/open.
func (h *Handler) OpenSettlement(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	opened := false
	t.Do(func(_ *register.Cart, session *settlement.Session) {
		opened = session.Open()
	})
	if !opened {
		common.JSONError(w, http.StatusConflict, "NOT_READY", "cart is not ready to pay", nil)
		return
	}
	h.respondState(w, http.StatusOK, t)
}

// CloseSettlement handles POST /terminals/{id}/settlement/close.
func (h *Handler) CloseSettlement(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	t.Do(func(_ *register.Cart, session *settlement.Session) {
		session.Close()
	})
	h.respondState(w, http.StatusOK, t)
}

// SetCash handles PUT /terminals/{id}/settlement/cash.
func (h *Handler) SetCash(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	t.Do(func(_ *register.Cart, session *settlement.Session) {
		session.SetCashText(req.Text)
	})
	h.respondState(w, http.StatusOK, t)
}

// SetNote handles PUT /terminals/{id}/settlement/note.
func (h *Handler) SetNote(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	t.Do(func(_ *register.Cart, session *settlement.Session) {
		session.SetNote(req.Text)
	})
	h.respondState(w, http.StatusOK, t)
}

type confirmResponse struct {
	Payment payments.Record `json:"payment"`
	State   StateView       `json:"state"`
}

// Confirm handles POST /terminals/{id}/settlement/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	t, ok := h.terminal(w, r)
	if !ok {
		return
	}
	var (
		rec  payments.Record
		err  error
		view StateView
	)
	t.Do(func(cart *register.Cart, session *settlement.Session) {
		rec, err = session.Confirm(r.Context())
		view = snapshot(t, cart, session)
	})
	switch {
	case errors.Is(err, settlement.ErrNotReady):
		h.countSettlement("rejected")
		common.JSONError(w, http.StatusConflict, "NOT_READY", "confirmation is not allowed in the current state", nil)
		return
	case err != nil:
		h.countSettlement("error")
		h.Logger.Error().Err(err).Str("terminal_id", t.ID).Msg("confirm payment")
		common.JSONError(w, http.StatusBadGateway, "STORE_UNAVAILABLE", "payment could not be stored; state kept for retry", nil)
		return
	}
	h.countSettlement("confirmed")
	h.Logger.Info().
		Str("terminal_id", t.ID).
		Str("invoice_number", rec.InvoiceNumber).
		Int64("total", rec.Total).
		Msg("payment_confirmed")
	common.JSON(w, http.StatusCreated, map[string]any{"data": confirmResponse{Payment: rec, State: view}})
}

func (h *Handler) countSettlement(result string) {
	if h.Settlements != nil {
		h.Settlements.WithLabelValues(result).Inc()
	}
}

func (h *Handler) terminal(w http.ResponseWriter, r *http.Request) (*Terminal, bool) {
	id := chi.URLParam(r, "id")
	t, err := h.Mgr.Get(id)
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "terminal not found", nil)
		return nil, false
	}
	return t, true
}

func (h *Handler) terminalLine(w http.ResponseWriter, r *http.Request) (*Terminal, int64, bool) {
	t, ok := h.terminal(w, r)
	if !ok {
		return nil, 0, false
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return nil, 0, false
	}
	return t, productID, true
}

func (h *Handler) lineOp(w http.ResponseWriter, r *http.Request, op func(cart *register.Cart, productID int64)) {
	t, productID, ok := h.terminalLine(w, r)
	if !ok {
		return
	}
	t.Do(func(cart *register.Cart, _ *settlement.Session) {
		op(cart, productID)
	})
	h.respondState(w, http.StatusOK, t)
}

func (h *Handler) lineTextOp(w http.ResponseWriter, r *http.Request, op func(cart *register.Cart, productID int64, text string)) {
	t, productID, ok := h.terminalLine(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	t.Do(func(cart *register.Cart, _ *settlement.Session) {
		op(cart, productID, req.Text)
	})
	h.respondState(w, http.StatusOK, t)
}

func (h *Handler) respondState(w http.ResponseWriter, status int, t *Terminal) {
	var view StateView
	t.Do(func(cart *register.Cart, session *settlement.Session) {
		view = snapshot(t, cart, session)
	})
	common.JSON(w, status, map[string]any{"data": view})
}
