package cashier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/kasir-pos/internal/cashier"
)

type stubRoster struct {
	cashiers map[string]cashier.Cashier
	hashes   map[string]*string
}

func (s *stubRoster) ListActive(_ context.Context) ([]cashier.Cashier, error) {
	out := make([]cashier.Cashier, 0, len(s.cashiers))
	for _, c := range s.cashiers {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubRoster) GetByCode(_ context.Context, code string) (cashier.Cashier, *string, error) {
	c, ok := s.cashiers[code]
	if !ok {
		return cashier.Cashier{}, nil, cashier.ErrNotFound
	}
	return c, s.hashes[code], nil
}

func newVerifyRouter(t *testing.T) http.Handler {
	t.Helper()
	hash, err := argon2id.CreateHash("1234", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	roster := &stubRoster{
		cashiers: map[string]cashier.Cashier{
			"linh":  {ID: 1, Code: "linh", Name: "Linh", RequirePin: true, IsActive: true},
			"hoang": {ID: 2, Code: "hoang", Name: "Hoàng", IsActive: true},
		},
		hashes: map[string]*string{"linh": &hash},
	}
	h := &cashier.Handler{Svc: cashier.NewService(roster)}
	r := chi.NewRouter()
	r.Post("/api/v1/cashiers/{code}/verify-pin", h.VerifyPin)
	return r
}

func TestVerifyPinEndpoint(t *testing.T) {
	router := newVerifyRouter(t)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"pin accepted", "/api/v1/cashiers/linh/verify-pin", `{"pin":"1234"}`, http.StatusOK, ""},
		{"code-only sign-in", "/api/v1/cashiers/hoang/verify-pin", "", http.StatusOK, ""},
		{"pin required", "/api/v1/cashiers/linh/verify-pin", "", http.StatusUnauthorized, "PIN_REQUIRED"},
		{"pin mismatch", "/api/v1/cashiers/linh/verify-pin", `{"pin":"0000"}`, http.StatusUnauthorized, "PIN_MISMATCH"},
		{"unknown cashier", "/api/v1/cashiers/nope/verify-pin", "", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			if tc.code == "" {
				return
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error.Code != tc.code {
				t.Fatalf("expected code %s got %s", tc.code, body.Error.Code)
			}
		})
	}
}
