package domain

import "github.com/shopspring/decimal"

// AccountType distinguishes which account on an exchange holds a balance.
type AccountType string

const (
	AccountTypeSpot    AccountType = "spot"
	AccountTypeFutures AccountType = "futures"
)

// Balance is one asset holding on one exchange account, already parsed
// into exact decimals. Balances are built fresh on every poll cycle and
// never mutated afterwards.
type Balance struct {
	Coin        string
	Free        decimal.Decimal
	Locked      decimal.Decimal
	Total       decimal.Decimal
	Exchange    string
	AccountType AccountType
}
