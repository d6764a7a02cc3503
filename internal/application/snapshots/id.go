package snapshots

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewSnapshotID returns snap_<unix-ms>_<9 random base36 chars>. Ids are never
// checked for collisions.
func NewSnapshotID(now time.Time) string {
	return "snap_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomBase36(9)
}

func randomBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b[i] = idAlphabet[v.Int64()]
	}
	return string(b)
}
