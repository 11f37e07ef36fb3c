// Package valuation converts a batch of balances into the rows of one
// snapshot, valued in the quote currency.
package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/assetwatch/internal/domain"
)

// QuoteSymbol is the reference currency every balance is valued in.
const QuoteSymbol = "USDT"

var one = decimal.NewFromInt(1)

// Snapshot values each balance using the price snapshot and aggregates
// the total and the per-exchange breakdown. A balance whose pair is
// missing from prices gets a zero value but still produces a row; the
// quote currency itself is always worth exactly 1.
func Snapshot(userID int64, at time.Time, balances []domain.Balance, prices map[string]decimal.Decimal) ([]domain.AssetRow, domain.TotalRow) {
	rows := make([]domain.AssetRow, 0, len(balances))
	total := decimal.Zero
	detail := make(map[string]decimal.Decimal)

	for _, b := range balances {
		if !b.Total.IsPositive() {
			continue
		}

		price := prices[b.Coin+QuoteSymbol]
		if b.Coin == QuoteSymbol {
			price = one
		}
		value := price.Mul(b.Total)

		total = total.Add(value)
		detail[b.Exchange] = detail[b.Exchange].Add(value)

		rows = append(rows, domain.AssetRow{
			UserID:      userID,
			CreatedAt:   at,
			Coin:        b.Coin,
			Exchange:    b.Exchange,
			AccountType: b.AccountType,
			Free:        b.Free,
			Locked:      b.Locked,
			Total:       b.Total,
			PriceUSDT:   price,
			TotalUSDT:   value,
		})
	}

	return rows, domain.TotalRow{
		UserID:    userID,
		CreatedAt: at,
		TotalUSDT: total,
		Detail:    detail,
	}
}
