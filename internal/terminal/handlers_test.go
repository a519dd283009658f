package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-pos/internal/catalog"
	"github.com/noah-isme/kasir-pos/internal/money"
	"github.com/noah-isme/kasir-pos/internal/payments"
)

type stubProducts struct {
	products map[int64]catalog.Product
}

func (s *stubProducts) Get(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type stubPaymentStore struct {
	fail    error
	created int
}

func (s *stubPaymentStore) CreatePayment(_ context.Context, draft payments.Draft) (payments.Record, error) {
	s.created++
	if s.fail != nil {
		return payments.Record{}, s.fail
	}
	return payments.Record{
		ID:            1,
		InvoiceNumber: draft.InvoiceNumber,
		CashierName:   draft.CashierName,
		Subtotal:      draft.Subtotal,
		Total:         draft.Total,
		PaidCash:      draft.PaidCash,
		ChangeDue:     draft.ChangeDue,
		CreatedAt:     time.Now(),
	}, nil
}

func newTestRouter(store *stubPaymentStore) (*chi.Mux, *Handler) {
	mgr := NewManager(ManagerConfig{
		Rules:            money.Rules{QtyPrecision: 3, Rounding: money.ModeFloor},
		MaxEditablePrice: 10_000_000,
		InvoicePrefix:    "INV-",
		Store:            store,
	})
	h := &Handler{
		Mgr: mgr,
		Products: &stubProducts{products: map[int64]catalog.Product{
			1: {ID: 1, Name: "Es Teh", Price: 39_000},
			2: {ID: 2, Name: "Gula Pasir", Price: 15_000, AllowDecimalQty: true},
		}},
		Logger: zerolog.Nop(),
	}
	r := chi.NewRouter()
	r.Route("/terminals", func(tr chi.Router) {
		tr.Post("/", h.Create)
		tr.Route("/{id}", func(one chi.Router) {
			one.Get("/", h.Get)
			one.Delete("/", h.Delete)
			one.Post("/lines", h.AddLine)
			one.Delete("/lines", h.ClearLines)
			one.Route("/lines/{productId}", func(line chi.Router) {
				line.Delete("/", h.RemoveLine)
				line.Post("/quantity", h.StepQuantity)
				line.Put("/quantity-input", h.EditQuantity)
				line.Post("/quantity-input/commit", h.CommitQuantity)
				line.Post("/quantity-input/cancel", h.CancelQuantity)
				line.Put("/price-input", h.EditPrice)
				line.Post("/price-input/commit", h.CommitPrice)
				line.Post("/price-input/cancel", h.CancelPrice)
			})
			one.Route("/settlement", func(s chi.Router) {
				s.Post("/open", h.OpenSettlement)
				s.Post("/close", h.CloseSettlement)
				s.Put("/cash", h.SetCash)
				s.Put("/note", h.SetNote)
				s.Post("/confirm", h.Confirm)
			})
		})
	})
	return r, h
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) StateView {
	t.Helper()
	var envelope struct {
		Data StateView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestTerminalFullSaleFlow(t *testing.T) {
	store := &stubPaymentStore{}
	r, _ := newTestRouter(store)

	rec := doJSON(t, r, http.MethodPost, "/terminals", map[string]string{"cashierName": "Linh"})
	require.Equal(t, http.StatusCreated, rec.Code)
	state := decodeState(t, rec)
	require.NotEmpty(t, state.TerminalID)
	require.Equal(t, "Linh", state.CashierName)
	base := "/terminals/" + state.TerminalID

	// Add the same product twice: one line, quantity two.
	rec = doJSON(t, r, http.MethodPost, base+"/lines", map[string]int64{"productId": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodPost, base+"/lines", map[string]int64{"productId": 1})
	state = decodeState(t, rec)
	require.Len(t, state.Lines, 1)
	require.Equal(t, 2.0, state.Lines[0].Quantity)
	require.Equal(t, int64(78_000), state.Totals.Total)
	require.True(t, state.ReadyToPay)

	// Settlement: open, tender cash, confirm.
	rec = doJSON(t, r, http.MethodPost, base+"/settlement/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, r, http.MethodPut, base+"/settlement/cash", map[string]string{"text": "100000"})
	state = decodeState(t, rec)
	require.Equal(t, int64(100_000), state.Settlement.CashTendered)
	require.Equal(t, int64(22_000), state.Settlement.ChangeDue)
	require.True(t, state.Settlement.CanConfirm)

	rec = doJSON(t, r, http.MethodPost, base+"/settlement/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var confirmed struct {
		Data confirmResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	require.Equal(t, int64(78_000), confirmed.Data.Payment.Total)
	require.Equal(t, "Linh", confirmed.Data.Payment.CashierName)
	require.Empty(t, confirmed.Data.State.Lines)
	require.False(t, confirmed.Data.State.Settlement.Open)
	require.Equal(t, 1, store.created)
}

func TestTerminalQuantityEditFlow(t *testing.T) {
	r, _ := newTestRouter(&stubPaymentStore{})
	state := decodeState(t, doJSON(t, r, http.MethodPost, "/terminals", map[string]string{"cashierName": "Linh"}))
	base := "/terminals/" + state.TerminalID

	doJSON(t, r, http.MethodPost, base+"/lines", map[string]int64{"productId": 2})

	// Weighed line: type 1.5 kg and commit.
	doJSON(t, r, http.MethodPut, base+"/lines/2/quantity-input", map[string]string{"text": "1.5"})
	rec := doJSON(t, r, http.MethodPost, base+"/lines/2/quantity-input/commit", nil)
	state = decodeState(t, rec)
	require.Equal(t, 1.5, state.Lines[0].Quantity)
	require.Equal(t, int64(22_500), state.Totals.Total)

	// An invalid edit blocks settlement but keeps the committed value.
	doJSON(t, r, http.MethodPut, base+"/lines/2/quantity-input", map[string]string{"text": ""})
	rec = doJSON(t, r, http.MethodPost, base+"/lines/2/quantity-input/commit", nil)
	state = decodeState(t, rec)
	require.Equal(t, 1.5, state.Lines[0].Quantity)
	require.NotEmpty(t, state.Lines[0].QuantityError)
	require.False(t, state.ReadyToPay)

	rec = doJSON(t, r, http.MethodPost, base+"/settlement/open", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Cancel restores the mirror and readiness.
	rec = doJSON(t, r, http.MethodPost, base+"/lines/2/quantity-input/cancel", nil)
	state = decodeState(t, rec)
	require.Equal(t, "1.5", state.Lines[0].QuantityInput)
	require.Empty(t, state.Lines[0].QuantityError)
	require.True(t, state.ReadyToPay)
}

func TestTerminalPriceOverrideFlow(t *testing.T) {
	r, _ := newTestRouter(&stubPaymentStore{})
	state := decodeState(t, doJSON(t, r, http.MethodPost, "/terminals", map[string]string{"cashierName": "Linh"}))
	base := "/terminals/" + state.TerminalID

	doJSON(t, r, http.MethodPost, base+"/lines", map[string]int64{"productId": 1})
	doJSON(t, r, http.MethodPut, base+"/lines/1/price-input", map[string]string{"text": "45000"})
	rec := doJSON(t, r, http.MethodPost, base+"/lines/1/price-input/commit", nil)
	state = decodeState(t, rec)
	require.NotNil(t, state.Lines[0].EditedUnitPrice)
	require.Equal(t, int64(45_000), state.Lines[0].EffectiveUnitPrice)
	require.Equal(t, int64(45_000), state.Totals.Total)

	// Committing the base price clears the override.
	doJSON(t, r, http.MethodPut, base+"/lines/1/price-input", map[string]string{"text": "39000"})
	rec = doJSON(t, r, http.MethodPost, base+"/lines/1/price-input/commit", nil)
	state = decodeState(t, rec)
	require.Nil(t, state.Lines[0].EditedUnitPrice)
	require.Equal(t, int64(39_000), state.Totals.Total)
}

func TestConfirmStoreFailureKeepsState(t *testing.T) {
	store := &stubPaymentStore{fail: errors.New("db down")}
	r, _ := newTestRouter(store)
	state := decodeState(t, doJSON(t, r, http.MethodPost, "/terminals", map[string]string{"cashierName": "Linh"}))
	base := "/terminals/" + state.TerminalID

	doJSON(t, r, http.MethodPost, base+"/lines", map[string]int64{"productId": 1})
	doJSON(t, r, http.MethodPost, base+"/settlement/open", nil)
	doJSON(t, r, http.MethodPut, base+"/settlement/cash", map[string]string{"text": "50000"})

	rec := doJSON(t, r, http.MethodPost, base+"/settlement/confirm", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	state = decodeState(t, doJSON(t, r, http.MethodGet, base+"/", nil))
	require.Len(t, state.Lines, 1)
	require.True(t, state.Settlement.Open)
	require.Equal(t, "50000", state.Settlement.CashText)

	// Store recovers; the same terminal confirms without re-entry.
	store.fail = nil
	rec = doJSON(t, r, http.MethodPost, base+"/settlement/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, store.created)
}

func TestConfirmRejectedWhenUnderpaid(t *testing.T) {
	r, _ := newTestRouter(&stubPaymentStore{})
	state := decodeState(t, doJSON(t, r, http.MethodPost, "/terminals", map[string]string{"cashierName": "Linh"}))
	base := "/terminals/" + state.TerminalID

	doJSON(t, r, http.MethodPost, base+"/lines", map[string]int64{"productId": 1})
	doJSON(t, r, http.MethodPost, base+"/settlement/open", nil)
	doJSON(t, r, http.MethodPut, base+"/settlement/cash", map[string]string{"text": "10000"})

	rec := doJSON(t, r, http.MethodPost, base+"/settlement/confirm", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownTerminal(t *testing.T) {
	r, _ := newTestRouter(&stubPaymentStore{})
	rec := doJSON(t, r, http.MethodGet, "/terminals/nope/", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownProduct(t *testing.T) {
	r, _ := newTestRouter(&stubPaymentStore{})
	state := decodeState(t, doJSON(t, r, http.MethodPost, "/terminals", map[string]string{"cashierName": "Linh"}))
	rec := doJSON(t, r, http.MethodPost, "/terminals/"+state.TerminalID+"/lines", map[string]int64{"productId": 99})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDecrementToZeroRemovesLine(t *testing.T) {
	r, _ := newTestRouter(&stubPaymentStore{})
	state := decodeState(t, doJSON(t, r, http.MethodPost, "/terminals", map[string]string{"cashierName": "Linh"}))
	base := "/terminals/" + state.TerminalID

	doJSON(t, r, http.MethodPost, base+"/lines", map[string]int64{"productId": 1})
	rec := doJSON(t, r, http.MethodPost, base+"/lines/1/quantity", map[string]int{"deltaSteps": -1})
	state = decodeState(t, rec)
	require.Empty(t, state.Lines)
	require.False(t, state.ReadyToPay)
}
