package holdingscsv

import (
	"testing"

	"etf-analysis/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	s := GetStats([]domain.Holding{
		{Ticker: "AAPL", Weight: 7.5},
		{Ticker: "XOM", Weight: 1.25},
		{Ticker: "KO", Weight: 2.0},
	})
	require.NotNil(t, s)
	assert.Equal(t, 3, s.TotalHoldings)
	assert.Equal(t, "10.75", s.TotalWeight)
	assert.Equal(t, "3.5833", s.AvgWeight)
	assert.Equal(t, "7.50", s.MaxWeight)
	assert.Equal(t, "1.2500", s.MinWeight)
	assert.Equal(t, 2, s.LowWeightCount)
}

func TestGetStats_Empty(t *testing.T) {
	assert.Nil(t, GetStats(nil))
}
