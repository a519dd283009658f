// Package terminal hosts the in-memory register sessions. Each terminal
// owns one cart plus one settlement flow, serialized by a per-terminal
// mutex so every mutation and every derived read observes a consistent
// state.
package terminal

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/kasir-pos/internal/money"
	"github.com/noah-isme/kasir-pos/internal/receipt"
	"github.com/noah-isme/kasir-pos/internal/register"
	"github.com/noah-isme/kasir-pos/internal/settlement"
)

// ErrNoSuchTerminal is returned for unknown terminal ids.
var ErrNoSuchTerminal = errors.New("terminal not found")

// Terminal binds a cart and a settlement session under one lock.
type Terminal struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	cart    *register.Cart
	session *settlement.Session
}

// Do runs fn while holding the terminal lock. All reads and mutations of
// the cart or session go through here.
func (t *Terminal) Do(fn func(cart *register.Cart, session *settlement.Session)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.cart, t.session)
}

// ManagerConfig carries the policies and collaborators every new
// terminal is born with.
type ManagerConfig struct {
	Rules            money.Rules
	MaxEditablePrice money.Money
	InvoicePrefix    string
	Store            settlement.Store
	Printer          receipt.Printer
	Receipts         receipt.Builder
}

// Manager tracks live terminals by id.
type Manager struct {
	cfg ManagerConfig

	mu        sync.RWMutex
	terminals map[string]*Terminal
}

// NewManager constructs an empty terminal registry.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{cfg: cfg, terminals: make(map[string]*Terminal)}
}

// Create opens a new terminal for the named cashier and returns it.
func (m *Manager) Create(cashierName string) *Terminal {
	cart := register.NewCart(m.cfg.Rules, m.cfg.MaxEditablePrice)
	session := settlement.NewSession(cart, settlement.Config{
		Store:         m.cfg.Store,
		Printer:       m.cfg.Printer,
		Receipts:      m.cfg.Receipts,
		InvoicePrefix: m.cfg.InvoicePrefix,
	})
	session.SetCashier(cashierName)

	t := &Terminal{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		cart:      cart,
		session:   session,
	}
	m.mu.Lock()
	m.terminals[t.ID] = t
	m.mu.Unlock()
	return t
}

// Get resolves a terminal by id.
func (m *Manager) Get(id string) (*Terminal, error) {
	m.mu.RLock()
	t, ok := m.terminals[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoSuchTerminal
	}
	return t, nil
}

// Delete drops a terminal. Any in-memory cart state is discarded.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.terminals, id)
	m.mu.Unlock()
}

// Len reports the number of live terminals.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.terminals)
}
