package cashier

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/argon2id"

	"github.com/noah-isme/kasir-pos/internal/common"
)

// Directory abstracts the store for handlers and tests.
type Directory interface {
	ListActive(ctx context.Context) ([]Cashier, error)
	GetByCode(ctx context.Context, code string) (Cashier, *string, error)
}

// Service exposes directory lookups and PIN verification.
type Service struct {
	store Directory
}

// NewService wraps a directory store.
func NewService(store Directory) *Service {
	return &Service{store: store}
}

// List returns the active roster in display order.
func (s *Service) List(ctx context.Context) ([]Cashier, error) {
	return s.store.ListActive(ctx)
}

// Authenticate resolves a cashier by code and, when the entry requires a
// PIN, verifies it against the stored hash. Cashiers without a PIN
// requirement sign in with the code alone. Rejections carry an AppError
// wrapping the matching sentinel so callers can branch on either.
func (s *Service) Authenticate(ctx context.Context, code, pin string) (Cashier, error) {
	c, hash, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Cashier{}, notFoundError(err)
		}
		return Cashier{}, err
	}
	if !c.IsActive {
		return Cashier{}, notFoundError(ErrNotFound)
	}
	if !c.RequirePin {
		return c, nil
	}
	if pin == "" {
		return Cashier{}, common.NewAppError("PIN_REQUIRED", "this cashier requires a pin", http.StatusUnauthorized, ErrPINRequired)
	}
	if hash == nil {
		return Cashier{}, pinMismatchError()
	}
	ok, err := argon2id.ComparePasswordAndHash(pin, *hash)
	if err != nil {
		return Cashier{}, fmt.Errorf("compare pin: %w", err)
	}
	if !ok {
		return Cashier{}, pinMismatchError()
	}
	return c, nil
}

func notFoundError(err error) *common.AppError {
	return common.NewAppError("NOT_FOUND", "cashier not found", http.StatusNotFound, err)
}

func pinMismatchError() *common.AppError {
	return common.NewAppError("PIN_MISMATCH", "incorrect pin", http.StatusUnauthorized, ErrPINMismatch)
}
