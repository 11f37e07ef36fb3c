package exchange

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/assetwatch/internal/domain"
)

const bybitName = "bybit"

// Bybit tracks the unified trading account.
type Bybit struct {
	client *bybit.Client
}

func NewBybit(apiKey, apiSecret string) *Bybit {
	return &Bybit{client: bybit.NewClient().WithAuth(apiKey, apiSecret)}
}

func (b *Bybit) Name() string { return bybitName }

func (b *Bybit) AccountAssets(ctx context.Context) ([]domain.Balance, error) {
	res, err := b.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "get bybit wallet balance")
	}

	var balances []domain.Balance
	for _, account := range res.Result.List {
		balances = append(balances, collect(account.Coin, formatBybitCoin)...)
	}
	return balances, nil
}

func (b *Bybit) Tickers(ctx context.Context) (map[string]decimal.Decimal, error) {
	result, err := b.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
	})
	if err != nil {
		return nil, errors.Wrap(err, "get bybit tickers")
	}

	out := make(map[string]decimal.Decimal, len(result.Result.Spot.List))
	for _, item := range result.Result.Spot.List {
		price, err := decimal.NewFromString(item.LastPrice)
		if err != nil {
			continue
		}
		out[string(item.Symbol)] = price
	}
	return out, nil
}

// formatBybitCoin treats the unified wallet as a spot account: the
// wallet balance is the total, locked is what the exchange reports as
// locked, free is the rest.
func formatBybitCoin(coin bybit.V5WalletBalanceCoin) (domain.Balance, error) {
	total, err := decimal.NewFromString(coin.WalletBalance)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse wallet balance")
	}
	locked := decimal.Zero
	if coin.Locked != "" {
		locked, err = decimal.NewFromString(coin.Locked)
		if err != nil {
			return domain.Balance{}, errors.Wrap(err, "parse locked balance")
		}
	}
	return domain.Balance{
		Coin:        string(coin.Coin),
		Free:        total.Sub(locked),
		Locked:      locked,
		Total:       total,
		Exchange:    bybitName,
		AccountType: domain.AccountTypeSpot,
	}, nil
}
