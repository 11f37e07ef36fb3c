package exchange

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/assetwatch/config"
	"github.com/vadiminshakov/assetwatch/internal/domain"
)

// Exchange is the capability an adapter exposes to the tracker: current
// account balances and the last price per trading-pair symbol.
type Exchange interface {
	Name() string
	AccountAssets(ctx context.Context) ([]domain.Balance, error)
	Tickers(ctx context.Context) (map[string]decimal.Decimal, error)
}

// FromConfig builds the adapter for a configured exchange. Adding an
// exchange means adding a case here and a constructor beside the others.
func FromConfig(cfg config.ExchangeConfig) (Exchange, error) {
	switch cfg.Name {
	case "binance":
		return NewBinance(cfg.APIKey, cfg.APISecret), nil
	case "bybit":
		return NewBybit(cfg.APIKey, cfg.APISecret), nil
	case "coinex":
		return NewCoinex(cfg.APIKey, cfg.APISecret), nil
	default:
		return nil, errors.Errorf("unsupported exchange: %s", cfg.Name)
	}
}
