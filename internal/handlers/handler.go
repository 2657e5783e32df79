package handlers

import (
	"context"

	"go-pos-ledger/internal/account"
	"go-pos-ledger/internal/ledger"
)

// Assistant answers free-form questions about one tenant's shop.
type Assistant interface {
	Ask(ctx context.Context, tenantID, message string) (string, error)
}

// Handler holds the services the HTTP routes call into.
type Handler struct {
	ledger    *ledger.Ledger
	accounts  *account.Service
	assistant Assistant
	dev       bool
}

// New builds a Handler. assistant may be nil, in which case the assistant
// route is not registered.
func New(l *ledger.Ledger, accounts *account.Service, assistant Assistant, dev bool) *Handler {
	return &Handler{ledger: l, accounts: accounts, assistant: assistant, dev: dev}
}
