package domain

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AssetRow is one persisted per-asset line of a snapshot.
type AssetRow struct {
	UserID      int64
	CreatedAt   time.Time
	Coin        string
	Exchange    string
	AccountType AccountType
	Free        decimal.Decimal
	Locked      decimal.Decimal
	Total       decimal.Decimal
	PriceUSDT   decimal.Decimal
	TotalUSDT   decimal.Decimal
}

// TotalRow is the aggregate line written together with the asset rows
// of the same cycle. Detail holds the per-exchange USDT subtotals.
type TotalRow struct {
	UserID    int64
	CreatedAt time.Time
	TotalUSDT decimal.Decimal
	Detail    map[string]decimal.Decimal
}

// DetailJSON serializes the per-exchange breakdown. Decimals are encoded
// as strings so the stored text survives a round trip without precision loss.
func (t TotalRow) DetailJSON() (string, error) {
	b, err := json.Marshal(t.Detail)
	if err != nil {
		return "", errors.Wrap(err, "marshal snapshot detail")
	}
	return string(b), nil
}
