// Package cashier manages the cashier directory: who can operate a
// terminal, whether they need a PIN, and the display ordering the
// sign-in screen uses.
package cashier

import "errors"

// Sentinel errors surfaced to handlers for status mapping.
var (
	ErrNotFound    = errors.New("cashier not found")
	ErrPINRequired = errors.New("cashier pin required")
	ErrPINMismatch = errors.New("cashier pin mismatch")
)

// Cashier is the directory entry returned to clients. PIN hashes never
// leave the store.
type Cashier struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	LastActive   *string `json:"lastActive"`
	RequirePin   bool    `json:"requirePin"`
	DisplayOrder int64   `json:"displayOrder"`
	IsActive     bool    `json:"isActive"`
}

type seedEntry struct {
	Code       string
	Name       string
	Role       string
	LastActive string
	RequirePin bool
	PIN        string
}

// defaultSeed provisions a usable sign-in screen on a fresh database.
var defaultSeed = []seedEntry{
	{Code: "linh", Name: "Linh", Role: "Trưởng ca", LastActive: "08:05", RequirePin: true, PIN: "1234"},
	{Code: "hoang", Name: "Hoàng", Role: "Thu ngân", LastActive: "08:10"},
	{Code: "an", Name: "An", Role: "Thu ngân", LastActive: "Đang nghỉ", RequirePin: true, PIN: "5678"},
	{Code: "vi", Name: "Vi", Role: "Thu ngân", LastActive: "Hôm qua"},
}
