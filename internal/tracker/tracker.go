// Package tracker schedules the two polling loops of the engine: one
// refreshing the price cache, one snapshotting account balances. The
// loops share a fixed interval but tick independently; the price cache
// is the only state they share.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/assetwatch/internal/domain"
	"github.com/vadiminshakov/assetwatch/internal/exchange"
	"github.com/vadiminshakov/assetwatch/internal/pricecache"
	"github.com/vadiminshakov/assetwatch/internal/storage/history"
	"github.com/vadiminshakov/assetwatch/internal/valuation"
)

type Tracker struct {
	userID    int64
	interval  time.Duration
	exchanges []exchange.Exchange
	cache     *pricecache.Cache
	store     history.Store
	logger    *zap.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	loops   *errgroup.Group
}

// New builds a tracker and populates the price cache once, best effort:
// an exchange failing during bootstrap is logged and skipped, the
// account loop simply starts against fewer prices.
func New(userID int64, interval time.Duration, exchanges []exchange.Exchange, store history.Store, logger *zap.Logger) *Tracker {
	t := &Tracker{
		userID:    userID,
		interval:  interval,
		exchanges: exchanges,
		cache:     pricecache.New(),
		store:     store,
		logger:    logger,
		stop:      make(chan struct{}),
	}
	t.refreshTickers(context.Background())
	logger.Info("price cache bootstrapped", zap.Int("symbols", t.cache.Len()))
	return t
}

// Start launches both loops. It must be called at most once per Tracker.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return errors.New("tracker already started")
	}
	t.started = true

	t.loops = new(errgroup.Group)
	t.loops.Go(func() error {
		t.run("ticker", t.refreshTickers)
		return nil
	})
	t.loops.Go(func() error {
		t.run("account", t.snapshotAccounts)
		return nil
	})

	t.logger.Info("tracker started",
		zap.Duration("interval", t.interval),
		zap.Int("exchanges", len(t.exchanges)))
	return nil
}

// Stop signals both loops and blocks until they exit. An in-flight
// iteration always finishes its work first; the signal is only observed
// at the wait point between iterations. Stop before Start, or a second
// Stop, is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.started || t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	loops := t.loops
	t.mu.Unlock()

	close(t.stop)
	_ = loops.Wait()
	t.logger.Info("tracker stopped")
}

// run executes one loop: do the work, then wait one interval or a stop
// signal. Network and database calls are not cancelled mid-flight, so
// the work func gets a background context.
func (t *Tracker) run(name string, work func(ctx context.Context)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		work(context.Background())

		select {
		case <-t.stop:
			t.logger.Info("loop exited", zap.String("loop", name))
			return
		case <-ticker.C:
			// stop wins over a tick that became ready at the same moment
			select {
			case <-t.stop:
				t.logger.Info("loop exited", zap.String("loop", name))
				return
			default:
			}
		}
	}
}

// refreshTickers collects price tables from every exchange and merges
// them into the cache in one step. A failing exchange contributes
// nothing this tick and is retried on the next one.
func (t *Tracker) refreshTickers(ctx context.Context) {
	merged := make(map[string]decimal.Decimal)
	for _, ex := range t.exchanges {
		tickers, err := ex.Tickers(ctx)
		if err != nil {
			t.logger.Error("failed to fetch tickers",
				zap.String("exchange", ex.Name()), zap.Error(err))
			continue
		}
		for symbol, price := range tickers {
			merged[symbol] = price
		}
	}
	if len(merged) > 0 {
		t.cache.Merge(merged)
	}
}

// snapshotAccounts performs one account tick: take a price snapshot,
// collect balances from every exchange, value them and persist one
// snapshot. A failing exchange degrades coverage; a failing write loses
// this snapshot and the loop waits for the next interval.
func (t *Tracker) snapshotAccounts(ctx context.Context) {
	prices := t.cache.Snapshot()

	var balances []domain.Balance
	for _, ex := range t.exchanges {
		assets, err := ex.AccountAssets(ctx)
		if err != nil {
			t.logger.Error("failed to fetch account assets",
				zap.String("exchange", ex.Name()), zap.Error(err))
			continue
		}
		balances = append(balances, assets...)
	}
	if len(balances) == 0 {
		t.logger.Warn("no balances collected this tick")
		return
	}

	batch := uuid.NewString()
	rows, total := valuation.Snapshot(t.userID, time.Now(), balances, prices)

	if err := t.store.SaveSnapshot(ctx, rows, total); err != nil {
		t.logger.Error("failed to persist snapshot",
			zap.String("batch", batch), zap.Error(err))
		return
	}

	t.logger.Info("snapshot saved",
		zap.String("batch", batch),
		zap.Int("assets", len(rows)),
		zap.String("total_usdt", total.TotalUSDT.String()))
}
