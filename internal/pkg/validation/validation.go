package validation

import (
	"regexp"
	"strings"
)

// ETF symbols and tickers: letters, digits, dot and hyphen (BRK.B, BF-B), up to 16 chars.
var symbolRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,15}$`)

// Snapshot ids are opaque but always URL-safe and short.
var snapshotIDRe = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// NormalizeSymbol trims and upper-cases an ETF symbol or ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func IsValidSymbol(s string) bool {
	return symbolRe.MatchString(NormalizeSymbol(s))
}

func IsValidSnapshotID(id string) bool {
	return snapshotIDRe.MatchString(id)
}
