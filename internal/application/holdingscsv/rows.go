package holdingscsv

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"etf-analysis/internal/domain"
)

// MaxWeight guards against a market value column being mapped as weight.
const MaxWeight = 1000.0

// SplitLine splits one CSV line on commas outside double quotes. Quote
// characters toggle the quoted state and are dropped; values are trimmed.
func SplitLine(line string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, strings.TrimSpace(cur.String()))
}

// CleanValue strips double quotes and surrounding whitespace.
func CleanValue(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, `"`, ""))
}

var (
	weightNoise = regexp.MustCompile(`[%$,\s]`)
	numberNoise = regexp.MustCompile(`[$,\s]`)
	// leading decimal literal; trailing footnote markers such as "7.5*" are ignored.
	numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ParseWeight parses a percentage cell. It returns nil for empty, non-numeric,
// non-finite and out-of-range (|w| > MaxWeight) values.
func ParseWeight(v string) *float64 {
	n := parseLeadingFloat(weightNoise.ReplaceAllString(v, ""))
	if n == nil || math.Abs(*n) > MaxWeight {
		return nil
	}
	return n
}

// ParseNumber parses a share count or currency amount. No magnitude cap.
func ParseNumber(v string) *float64 {
	return parseLeadingFloat(numberNoise.ReplaceAllString(v, ""))
}

func parseLeadingFloat(s string) *float64 {
	lit := numberPrefix.FindString(s)
	if lit == "" {
		return nil
	}
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

var specialRows = map[string]struct{}{
	"total": {}, "cash": {}, "sum": {}, "other": {}, "n/a": {}, "-": {}, "": {},
}

// IsSpecialRow reports summary/cash lines that are not holdings.
func IsSpecialRow(ticker string) bool {
	_, ok := specialRows[strings.ToLower(strings.TrimSpace(ticker))]
	return ok
}

func cell(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// NormalizeRow turns the split cells of one data line into a holding. The
// second return value is false when the line is not a holding.
func NormalizeRow(values []string, idx ColumnIndex) (domain.Holding, bool) {
	if len(values) < 2 {
		return domain.Holding{}, false
	}
	ticker := CleanValue(cell(values, idx.Ticker))
	weight := ParseWeight(cell(values, idx.Weight))
	if ticker == "" || weight == nil || *weight == 0 || IsSpecialRow(ticker) {
		return domain.Holding{}, false
	}

	h := domain.Holding{
		Ticker:      strings.ToUpper(ticker),
		CompanyName: ticker,
		Weight:      *weight,
	}
	if idx.CompanyName != -1 {
		if name := CleanValue(cell(values, idx.CompanyName)); name != "" {
			h.CompanyName = name
		}
	}
	if idx.Shares != -1 {
		h.Shares = ParseNumber(cell(values, idx.Shares))
	}
	if idx.MarketValue != -1 {
		h.MarketValue = ParseNumber(cell(values, idx.MarketValue))
	}
	if idx.Sector != -1 {
		if sector := CleanValue(cell(values, idx.Sector)); sector != "" {
			h.Sector = &sector
		}
	}
	return h, true
}
