package compare

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Row change types.
const (
	ChangeNew     = "new"
	ChangeRemoved = "removed"
	ChangeChanged = "changed"
)

// Row is one line of the CSV export. Weights are formatted to 4 decimals;
// cells that do not apply are empty.
type Row struct {
	ChangeType    string `csv:"change_type"`
	Ticker        string `csv:"ticker"`
	CompanyName   string `csv:"company_name"`
	BaseWeight    string `csv:"base_weight"`
	TargetWeight  string `csv:"target_weight"`
	Change        string `csv:"change"`
	ChangePercent string `csv:"change_percent"`
}

// Rows flattens the diff: new holdings, then removed, then weight changes.
func (r *Result) Rows() []Row {
	rows := make([]Row, 0, len(r.Added)+len(r.Removed)+len(r.Changed))
	for _, h := range r.Added {
		rows = append(rows, Row{
			ChangeType:   ChangeNew,
			Ticker:       h.Ticker,
			CompanyName:  h.CompanyName,
			TargetWeight: fixed4(h.Weight),
			Change:       fixed4(h.Weight),
		})
	}
	for _, h := range r.Removed {
		rows = append(rows, Row{
			ChangeType:  ChangeRemoved,
			Ticker:      h.Ticker,
			CompanyName: h.CompanyName,
			BaseWeight:  fixed4(h.Weight),
			Change:      fixed4(-h.Weight),
		})
	}
	for _, c := range r.Changed {
		rows = append(rows, Row{
			ChangeType:    ChangeChanged,
			Ticker:        c.Ticker,
			CompanyName:   c.CompanyName,
			BaseWeight:    fixed4(c.BaseWeight),
			TargetWeight:  fixed4(c.TargetWeight),
			Change:        fixed4(c.Change),
			ChangePercent: decimal.NewFromFloat(c.ChangePercent).StringFixed(2),
		})
	}
	return rows
}

// WriteCSV writes Rows as CSV with a header line.
func (r *Result) WriteCSV(w io.Writer) error {
	return gocsv.Marshal(r.Rows(), w)
}

func fixed4(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}
