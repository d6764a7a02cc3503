package domain

// SnapshotSummary is the derived listing view of one snapshot: it is never stored.
type SnapshotSummary struct {
	SnapshotID string `json:"snapshot_id"`
	ETFSymbol  string `json:"etf_symbol"`
	UploadDate int64  `json:"upload_date"`
	Count      int    `json:"count"`
}

// SummarizeSnapshots groups holdings by snapshot id, keeping first-seen order.
func SummarizeSnapshots(holdings []Holding) []SnapshotSummary {
	index := make(map[string]int)
	var out []SnapshotSummary
	for _, h := range holdings {
		i, ok := index[h.SnapshotID]
		if !ok {
			index[h.SnapshotID] = len(out)
			out = append(out, SnapshotSummary{
				SnapshotID: h.SnapshotID,
				ETFSymbol:  h.ETFSymbol,
				UploadDate: h.UploadDate,
			})
			i = len(out) - 1
		}
		out[i].Count++
	}
	return out
}
