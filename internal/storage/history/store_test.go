package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/assetwatch/config"
	"github.com/vadiminshakov/assetwatch/internal/domain"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()

	store, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "history.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mongodb"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestSaveSnapshotWritesBothTables(t *testing.T) {
	store := openTestStore(t)

	now := time.Now().Truncate(time.Second)
	rows := []domain.AssetRow{
		{
			UserID:      1,
			CreatedAt:   now,
			Coin:        "BTC",
			Exchange:    "binance",
			AccountType: domain.AccountTypeSpot,
			Free:        decimal.NewFromInt(1),
			Locked:      decimal.Zero,
			Total:       decimal.NewFromInt(1),
			PriceUSDT:   decimal.NewFromInt(50000),
			TotalUSDT:   decimal.NewFromInt(50000),
		},
		{
			UserID:      1,
			CreatedAt:   now,
			Coin:        "ETH",
			Exchange:    "coinex",
			AccountType: domain.AccountTypeFutures,
			Free:        decimal.NewFromInt(10),
			Locked:      decimal.NewFromInt(2),
			Total:       decimal.NewFromInt(12),
			PriceUSDT:   decimal.NewFromInt(3000),
			TotalUSDT:   decimal.NewFromInt(36000),
		},
	}
	total := domain.TotalRow{
		UserID:    1,
		CreatedAt: now,
		TotalUSDT: decimal.NewFromInt(86000),
		Detail: map[string]decimal.Decimal{
			"binance": decimal.NewFromInt(50000),
			"coinex":  decimal.NewFromInt(36000),
		},
	}

	require.NoError(t, store.SaveSnapshot(context.Background(), rows, total))

	var assets []AssetHistory
	require.NoError(t, store.db.Order("coin").Find(&assets).Error)
	require.Len(t, assets, 2)
	assert.Equal(t, "BTC", assets[0].Coin)
	assert.Equal(t, "spot", assets[0].Type)
	assert.Equal(t, "50000", assets[0].PriceUSDT)
	assert.Equal(t, "futures", assets[1].Type)
	assert.Equal(t, "36000", assets[1].TotalUSDT)

	var totals []TotalAssetsHistory
	require.NoError(t, store.db.Find(&totals).Error)
	require.Len(t, totals, 1)
	assert.Equal(t, "86000", totals[0].TotalUSDT)
	assert.JSONEq(t, `{"binance":"50000","coinex":"36000"}`, totals[0].Detail)
}

func TestSaveSnapshotWithNoAssetRowsStillWritesTotal(t *testing.T) {
	store := openTestStore(t)

	total := domain.TotalRow{
		UserID:    1,
		CreatedAt: time.Now(),
		TotalUSDT: decimal.Zero,
		Detail:    map[string]decimal.Decimal{},
	}
	require.NoError(t, store.SaveSnapshot(context.Background(), nil, total))

	var count int64
	require.NoError(t, store.db.Model(&TotalAssetsHistory{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
