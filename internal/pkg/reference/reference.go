// Package reference generates human-readable booking references. Uniqueness
// is enforced by the database index on bookings.reference; callers retry with
// a fresh reference on a duplicate-key conflict.
package reference

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	prefix       = "RB"
	suffixLen    = 4
	suffixChars  = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	suffixChoice = int64(len(suffixChars))
)

// New returns a reference of the form RB-<base36 unix millis><random suffix>,
// e.g. RB-LZX3K9T2-7QF4.
func New() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(ts) + 1 + suffixLen)
	sb.WriteString(prefix)
	sb.WriteByte('-')
	sb.WriteString(ts)
	sb.WriteByte('-')
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(suffixChoice))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a fixed character rather than panic.
			sb.WriteByte(suffixChars[0])
			continue
		}
		sb.WriteByte(suffixChars[n.Int64()])
	}
	return sb.String()
}
