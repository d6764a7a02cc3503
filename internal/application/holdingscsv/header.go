package holdingscsv

import "strings"

// HeaderScanLimit is how many non-blank lines are searched for the header row.
const HeaderScanLimit = 15

// Vendor exports put fund titles and dates above the table; these lines mention
// holdings/name keywords too and must never be taken as the header.
var metadataMarkers = []string{
	"as of",
	"inception date",
	"fund holdings",
	"holdings details",
	"equity,as of",
}

var headerKeywords = []string{"ticker", "symbol", "name", "holding", "holdings", "weight", "percent", "% of"}

// LocateHeader returns the index of the first line within the scan window that
// matches at least two header keywords.
func LocateHeader(lines []string) (int, error) {
	for i := 0; i < len(lines) && i < HeaderScanLimit; i++ {
		lower := strings.ToLower(lines[i])
		if isMetadataLine(lower) {
			continue
		}
		if keywordHits(lower) >= 2 {
			return i, nil
		}
	}
	return -1, ErrHeaderNotFound
}

func isMetadataLine(lower string) bool {
	for _, m := range metadataMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func keywordHits(lower string) int {
	n := 0
	for _, k := range headerKeywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}
