package holdingscsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "weight (%)", NormalizeHeader("  Weight**  (%) "))
	assert.Equal(t, "market value", NormalizeHeader("Market\tValue*"))
	assert.Equal(t, "", NormalizeHeader(" * "))
}

func TestColumnRules_ExactBeforeContains(t *testing.T) {
	for _, f := range Fields {
		rules := RulesFor(f)
		require.NotEmpty(t, rules, f)
		seenContains := false
		for _, r := range rules {
			if r.Kind == MatchContains {
				seenContains = true
				continue
			}
			assert.False(t, seenContains, "exact rule %q after a contains rule for %s", r.Pattern, f)
		}
	}
}

func TestMatchField(t *testing.T) {
	r, ok := MatchField(FieldWeight, "Weight (%)")
	require.True(t, ok)
	assert.Equal(t, "weight (%)", r.Pattern)
	assert.Equal(t, MatchExact, r.Kind)

	r, ok = MatchField(FieldTicker, "Ticker Symbol (Local)")
	require.True(t, ok)
	assert.Equal(t, "ticker", r.Pattern)
	assert.Equal(t, MatchContains, r.Kind)

	r, ok = MatchField(FieldMarketValue, "Val")
	require.True(t, ok)
	assert.Equal(t, MatchContains, r.Kind)

	_, ok = MatchField(FieldSector, "Ticker")
	assert.False(t, ok)

	_, ok = MatchField(FieldTicker, "  ")
	assert.False(t, ok)
}

func TestColumnRule_Matches(t *testing.T) {
	exact := ColumnRule{Field: FieldShares, Pattern: "shares", Kind: MatchExact}
	assert.True(t, exact.Matches("shares"))
	assert.False(t, exact.Matches("shares held"))

	contains := ColumnRule{Field: FieldShares, Pattern: "shares", Kind: MatchContains}
	assert.True(t, contains.Matches("shares held"))
	assert.True(t, contains.Matches("share"))
	assert.False(t, contains.Matches(""))
}

func TestMapColumns_FirstColumnWins(t *testing.T) {
	idx := MapColumns([]string{"Ticker", "Symbol", "Weight", "Portfolio Weight"})
	assert.Equal(t, 0, idx.Ticker)
	assert.Equal(t, 2, idx.Weight)
	assert.Equal(t, -1, idx.Shares)
}

func TestMapColumns_SkipsEmptyCells(t *testing.T) {
	idx := MapColumns([]string{"", "Ticker", "**", "Weight"})
	assert.Equal(t, 1, idx.Ticker)
	assert.Equal(t, 3, idx.Weight)
}

func TestMapColumns_CellServesSeveralFields(t *testing.T) {
	idx := MapColumns([]string{"Holdings Ticker", "% of Funds"})
	assert.Equal(t, 0, idx.Ticker)
	assert.Equal(t, 0, idx.CompanyName)
	assert.Equal(t, 1, idx.Weight)
}

func TestColumnIndex_RequireCore(t *testing.T) {
	headers := []string{"Name", "Shares"}
	err := MapColumns(headers).RequireCore(headers)
	require.Error(t, err)
	mce, ok := err.(*MissingColumnsError)
	require.True(t, ok)
	assert.Equal(t, []Field{FieldTicker, FieldWeight}, mce.Missing)
	assert.Equal(t, -1, Unmapped().Of(FieldSector))
}
