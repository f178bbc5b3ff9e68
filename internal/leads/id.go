package leads

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	idPrefix     = "DEM"
	idSuffixLen  = 4
	base36Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewID returns DEM-<base36 unix millis>-<4 random base36 chars>. Collisions
// are not prevented, only made unlikely.
func NewID(now time.Time) string {
	var b strings.Builder
	b.WriteString(idPrefix)
	b.WriteByte('-')
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	b.WriteByte('-')
	radix := big.NewInt(int64(len(base36Digits)))
	for i := 0; i < idSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			n = big.NewInt(now.UnixNano() >> (i * 5) % int64(len(base36Digits)))
		}
		b.WriteByte(base36Digits[n.Int64()])
	}
	return b.String()
}
