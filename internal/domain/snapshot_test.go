package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailJSONEncodesDecimalsAsStrings(t *testing.T) {
	row := TotalRow{
		Detail: map[string]decimal.Decimal{
			"binance": decimal.RequireFromString("1234.5678"),
			"coinex":  decimal.Zero,
		},
	}

	s, err := row.DetailJSON()
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(s), &decoded))
	assert.Equal(t, "1234.5678", decoded["binance"])
	assert.Equal(t, "0", decoded["coinex"])
}
