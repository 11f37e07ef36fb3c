package pricecache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeThenSnapshot(t *testing.T) {
	c := New()

	c.Merge(map[string]decimal.Decimal{"BTCUSDT": decimal.NewFromInt(50000)})

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap["BTCUSDT"].Equal(decimal.NewFromInt(50000)))
}

func TestMergeKeepsUntouchedSymbols(t *testing.T) {
	c := New()

	c.Merge(map[string]decimal.Decimal{
		"BTCUSDT": decimal.NewFromInt(50000),
		"ETHUSDT": decimal.NewFromInt(3000),
	})
	c.Merge(map[string]decimal.Decimal{"BTCUSDT": decimal.NewFromInt(51000)})

	snap := c.Snapshot()
	assert.True(t, snap["BTCUSDT"].Equal(decimal.NewFromInt(51000)))
	assert.True(t, snap["ETHUSDT"].Equal(decimal.NewFromInt(3000)), "symbols absent from the update must keep their price")
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	c := New()
	c.Merge(map[string]decimal.Decimal{"BTCUSDT": decimal.NewFromInt(50000)})

	snap := c.Snapshot()
	c.Merge(map[string]decimal.Decimal{"BTCUSDT": decimal.NewFromInt(1)})

	assert.True(t, snap["BTCUSDT"].Equal(decimal.NewFromInt(50000)), "a merge after Snapshot must not leak into the copy")
}

func TestConcurrentMergeAndSnapshot(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		price := decimal.NewFromInt(int64(i + 1))
		symbol := "SYM" + strconv.Itoa(i%5) + "USDT"
		go func() {
			defer wg.Done()
			c.Merge(map[string]decimal.Decimal{symbol: price})
		}()
		go func() {
			defer wg.Done()
			for sym, p := range c.Snapshot() {
				assert.NotEmpty(t, sym)
				assert.True(t, p.IsPositive())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
}
