package core

import (
	"errors"
	"strings"
)

// AccountType classifies how an account behaves for display purposes. The
// engine's arithmetic does not depend on it.
type AccountType string

const (
	AccountBank AccountType = "bank"
	AccountCard AccountType = "card"
	AccountCash AccountType = "cash"
)

// Account is a money container owned by the household. Balances are always
// derived from transactions; InitialBalance is carried for reconciliation
// against the bank's own statement, never folded into engine output.
type Account struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Reserve        bool        `json:"isReserve"` // savings/side-pocket: transfers into it reduce availability
	Primary        bool        `json:"isPrimary"`
	Active         bool        `json:"isActive"`
	InitialBalance Money       `json:"initialBalance"`
}

var (
	ErrEmptyAccountName   = errors.New("empty account name")
	ErrInvalidAccountType = errors.New("invalid account type")
)

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyAccountName
	}
	switch a.Type {
	case AccountBank, AccountCard, AccountCash:
	default:
		return ErrInvalidAccountType
	}
	return nil
}

// ActiveAccounts filters out inactive accounts, preserving order.
func ActiveAccounts(accounts []Account) []Account {
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out
}
