package exchange

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/assetwatch/internal/domain"
	"github.com/vadiminshakov/assetwatch/pkg/coinex"
)

const coinexName = "coinex"

// Coinex tracks spot and futures accounts through the CoinEx v2 API.
type Coinex struct {
	client *coinex.Client
}

func NewCoinex(apiKey, apiSecret string) *Coinex {
	return &Coinex{client: coinex.NewClient(apiKey, apiSecret)}
}

func (c *Coinex) Name() string { return coinexName }

func (c *Coinex) AccountAssets(ctx context.Context) ([]domain.Balance, error) {
	spot, err := c.client.SpotBalances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get coinex spot balance")
	}
	balances := collect(spot, formatCoinexSpot)

	fut, err := c.client.FuturesBalances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get coinex futures balance")
	}
	return append(balances, collect(fut, formatCoinexFutures)...), nil
}

func (c *Coinex) Tickers(ctx context.Context) (map[string]decimal.Decimal, error) {
	tickers, err := c.client.SpotTickers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get coinex tickers")
	}

	out := make(map[string]decimal.Decimal, len(tickers))
	for _, t := range tickers {
		price, err := decimal.NewFromString(t.Last)
		if err != nil {
			continue
		}
		out[t.Market] = price
	}
	return out, nil
}

func formatCoinexSpot(bal coinex.SpotBalance) (domain.Balance, error) {
	free, err := decimal.NewFromString(bal.Available)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse available balance")
	}
	frozen, err := decimal.NewFromString(bal.Frozen)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse frozen balance")
	}
	return domain.Balance{
		Coin:        bal.Ccy,
		Free:        free,
		Locked:      frozen,
		Total:       free.Add(frozen),
		Exchange:    coinexName,
		AccountType: domain.AccountTypeSpot,
	}, nil
}

// formatCoinexFutures sums available, margin, frozen and unrealized PnL,
// which is how CoinEx composes its futures account balance.
func formatCoinexFutures(bal coinex.FuturesBalance) (domain.Balance, error) {
	available, err := decimal.NewFromString(bal.Available)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse available balance")
	}
	margin, err := decimal.NewFromString(bal.Margin)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse margin balance")
	}
	frozen, err := decimal.NewFromString(bal.Frozen)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse frozen balance")
	}
	unrealized, err := decimal.NewFromString(bal.UnrealizedPNL)
	if err != nil {
		return domain.Balance{}, errors.Wrap(err, "parse unrealized pnl")
	}
	return domain.Balance{
		Coin:        bal.Ccy,
		Free:        available,
		Locked:      frozen,
		Total:       available.Add(margin).Add(frozen).Add(unrealized),
		Exchange:    coinexName,
		AccountType: domain.AccountTypeFutures,
	}, nil
}
