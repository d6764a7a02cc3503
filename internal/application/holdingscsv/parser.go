// Package holdingscsv normalizes vendor ETF holdings exports into canonical holdings.
//
// Exports differ per issuer: title and "as of" lines above the table, differently
// named columns, currency and percent formatting, and trailing total/cash rows.
// Parse handles all of these and fails only when no header, no ticker/weight
// column or no holding row can be found.
package holdingscsv

import (
	"strings"

	"etf-analysis/internal/domain"

	"github.com/rs/zerolog/log"
)

// Result is the detailed outcome of a parse.
type Result struct {
	Holdings  []domain.Holding `json:"holdings"`
	HeaderRow int              `json:"header_row"`
	Headers   []string         `json:"headers"`
	Columns   ColumnIndex      `json:"columns"`
	Skipped   int              `json:"skipped"`
}

// SplitLines splits raw text into non-blank lines, dropping a UTF-8 BOM and CRs.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Parse returns the holdings found in csvText.
func Parse(csvText string) ([]domain.Holding, error) {
	res, err := ParseDetailed(csvText)
	if err != nil {
		return nil, err
	}
	return res.Holdings, nil
}

// ParseDetailed is Parse plus header position, column mapping and skipped line count.
func ParseDetailed(csvText string) (*Result, error) {
	lines := SplitLines(csvText)
	if len(lines) < 2 {
		return nil, ErrEmptyFile
	}

	headerRow, err := LocateHeader(lines)
	if err != nil {
		return nil, err
	}
	headers := SplitLine(lines[headerRow])
	idx := MapColumns(headers)
	if err := idx.RequireCore(headers); err != nil {
		return nil, err
	}

	res := &Result{HeaderRow: headerRow, Headers: headers, Columns: idx}
	for _, line := range lines[headerRow+1:] {
		h, ok := NormalizeRow(SplitLine(line), idx)
		if !ok {
			res.Skipped++
			continue
		}
		res.Holdings = append(res.Holdings, h)
	}
	if len(res.Holdings) == 0 {
		return nil, ErrNoValidData
	}

	log.Debug().
		Int("header_row", headerRow).
		Int("holdings", len(res.Holdings)).
		Int("skipped", res.Skipped).
		Msg("holdings csv parsed")
	return res, nil
}
