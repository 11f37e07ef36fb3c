package exchange

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/assetwatch/internal/domain"
)

const binanceName = "binance"

// Binance tracks spot and USD-M futures accounts.
type Binance struct {
	spot *binance.Client
	fut  *futures.Client
}

func NewBinance(apiKey, apiSecret string) *Binance {
	return &Binance{
		spot: binance.NewClient(apiKey, apiSecret),
		fut:  futures.NewClient(apiKey, apiSecret),
	}
}

func (b *Binance) Name() string { return binanceName }

func (b *Binance) AccountAssets(ctx context.Context) ([]domain.Balance, error) {
	account, err := b.spot.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get binance spot account")
	}
	balances := collect(account.Balances, formatBinanceSpot)

	futBalances, err := b.fut.NewGetBalanceService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get binance futures balance")
	}
	return append(balances, collect(futBalances, formatBinanceFutures)...), nil
}

func (b *Binance) Tickers(ctx context.Context) (map[string]decimal.Decimal, error) {
	prices, err := b.spot.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list binance prices")
	}

	out := make(map[string]decimal.Decimal, len(prices))
	for _, p := range prices {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			continue
		}
		out[p.Symbol] = price
	}
	return out, nil
}

func formatBinanceSpot(bal binance.Balance) (domain.Balance, error) {
	free, err := decimal.NewFromString(bal.Free)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse free balance")
	}
	locked, err := decimal.NewFromString(bal.Locked)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse locked balance")
	}
	return domain.Balance{
		Coin:        bal.Asset,
		Free:        free,
		Locked:      locked,
		Total:       free.Add(locked),
		Exchange:    binanceName,
		AccountType: domain.AccountTypeSpot,
	}, nil
}

// formatBinanceFutures uses the wallet balance the exchange reports as
// the total; locked is whatever is not available.
func formatBinanceFutures(bal *futures.Balance) (domain.Balance, error) {
	total, err := decimal.NewFromString(bal.Balance)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse futures balance")
	}
	free, err := decimal.NewFromString(bal.AvailableBalance)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse futures available balance")
	}
	return domain.Balance{
		Coin:        bal.Asset,
		Free:        free,
		Locked:      total.Sub(free),
		Total:       total,
		Exchange:    binanceName,
		AccountType: domain.AccountTypeFutures,
	}, nil
}
