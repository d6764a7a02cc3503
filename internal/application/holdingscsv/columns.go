package holdingscsv

import (
	"regexp"
	"strings"
)

// Field is a canonical holdings column.
type Field string

const (
	FieldTicker      Field = "ticker"
	FieldCompanyName Field = "company_name"
	FieldWeight      Field = "weight"
	FieldShares      Field = "shares"
	FieldMarketValue Field = "market_value"
	FieldSector      Field = "sector"
)

// Fields lists canonical fields in evaluation order.
var Fields = []Field{FieldTicker, FieldCompanyName, FieldWeight, FieldShares, FieldMarketValue, FieldSector}

// MatchKind says how a rule pattern is compared with a normalized header cell.
type MatchKind int

const (
	// MatchExact requires header == pattern.
	MatchExact MatchKind = iota
	// MatchContains accepts header containing pattern or pattern containing header.
	MatchContains
)

func (k MatchKind) String() string {
	if k == MatchExact {
		return "exact"
	}
	return "contains"
}

// ColumnRule is one (field, pattern, kind) entry of the synonym table.
type ColumnRule struct {
	Field   Field
	Pattern string
	Kind    MatchKind
}

// Matches reports whether a normalized header cell satisfies the rule.
func (r ColumnRule) Matches(header string) bool {
	if header == "" {
		return false
	}
	if r.Kind == MatchExact {
		return header == r.Pattern
	}
	return strings.Contains(header, r.Pattern) || strings.Contains(r.Pattern, header)
}

var synonyms = map[Field][]string{
	FieldTicker:      {"ticker", "symbol", "stock symbol", "ticker symbol", "holdings ticker"},
	FieldCompanyName: {"name", "holding", "holdings", "company name", "holdings name", "description", "security name"},
	FieldWeight:      {"weight", "weight (%)", "portfolio weight", "% of net assets", "net assets", "allocation", "% of funds", "percent of assets"},
	FieldShares:      {"shares", "number of shares", "shares held", "quantity"},
	FieldMarketValue: {"market value", "market val", "value", "holdings value", "notional value"},
	FieldSector:      {"sector", "asset class", "industry", "sub-industry"},
}

// ColumnRules is the priority-ordered rule table: per field, every exact rule
// precedes every contains rule.
var ColumnRules = buildRules()

var rulesByField = groupRules(ColumnRules)

func buildRules() []ColumnRule {
	var rules []ColumnRule
	for _, f := range Fields {
		for _, p := range synonyms[f] {
			rules = append(rules, ColumnRule{Field: f, Pattern: p, Kind: MatchExact})
		}
		for _, p := range synonyms[f] {
			rules = append(rules, ColumnRule{Field: f, Pattern: p, Kind: MatchContains})
		}
	}
	return rules
}

func groupRules(rules []ColumnRule) map[Field][]ColumnRule {
	out := make(map[Field][]ColumnRule, len(Fields))
	for _, r := range rules {
		out[r.Field] = append(out[r.Field], r)
	}
	return out
}

// RulesFor returns the rules of one field in priority order.
func RulesFor(f Field) []ColumnRule {
	return rulesByField[f]
}

// MatchField returns the first rule of field f accepting the raw header cell.
func MatchField(f Field, rawHeader string) (ColumnRule, bool) {
	h := NormalizeHeader(rawHeader)
	if h == "" {
		return ColumnRule{}, false
	}
	for _, r := range RulesFor(f) {
		if r.Matches(h) {
			return r, true
		}
	}
	return ColumnRule{}, false
}

var headerNoise = regexp.MustCompile(`[*\s]+`)

// NormalizeHeader lower-cases, trims and collapses whitespace/asterisk runs.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.TrimSpace(headerNoise.ReplaceAllString(h, " "))
}

// ColumnIndex holds the column position of each canonical field, -1 when unmapped.
type ColumnIndex struct {
	Ticker      int `json:"ticker"`
	CompanyName int `json:"company_name"`
	Weight      int `json:"weight"`
	Shares      int `json:"shares"`
	MarketValue int `json:"market_value"`
	Sector      int `json:"sector"`
}

// Unmapped returns a ColumnIndex with every field set to -1.
func Unmapped() ColumnIndex {
	return ColumnIndex{-1, -1, -1, -1, -1, -1}
}

func (c *ColumnIndex) slot(f Field) *int {
	switch f {
	case FieldTicker:
		return &c.Ticker
	case FieldCompanyName:
		return &c.CompanyName
	case FieldWeight:
		return &c.Weight
	case FieldShares:
		return &c.Shares
	case FieldMarketValue:
		return &c.MarketValue
	case FieldSector:
		return &c.Sector
	}
	return nil
}

// Of returns the column index of a field (-1 when unmapped or unknown).
func (c ColumnIndex) Of(f Field) int {
	if p := c.slot(f); p != nil {
		return *p
	}
	return -1
}

// MapColumns assigns header cells to canonical fields. Assignment is write-once:
// the first column matching a field wins. One cell may serve several fields.
func MapColumns(headers []string) ColumnIndex {
	idx := Unmapped()
	for i, raw := range headers {
		h := NormalizeHeader(raw)
		if h == "" {
			continue
		}
		for _, f := range Fields {
			slot := idx.slot(f)
			if *slot != -1 {
				continue
			}
			for _, r := range RulesFor(f) {
				if r.Matches(h) {
					*slot = i
					break
				}
			}
		}
	}
	return idx
}

// RequireCore fails when ticker or weight is unmapped.
func (c ColumnIndex) RequireCore(headers []string) error {
	var missing []Field
	if c.Ticker == -1 {
		missing = append(missing, FieldTicker)
	}
	if c.Weight == -1 {
		missing = append(missing, FieldWeight)
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Missing: missing, Headers: headers}
	}
	return nil
}
