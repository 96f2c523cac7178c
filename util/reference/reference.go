// Package reference generates client-side transaction references for payment
// attempts: a millisecond timestamp plus a short random suffix, unique within
// the process lifetime with high probability.
package reference

import (
	"crypto/rand"
	"strconv"
	"time"
)

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// New returns a reference of the form TX<unix-millis><6 random chars>.
func New() string {
	buf := make([]byte, 6)
	// crypto/rand.Read does not fail on supported platforms
	_, _ = rand.Read(buf)
	suffix := make([]byte, len(buf))
	for i, c := range buf {
		suffix[i] = suffixAlphabet[int(c)%len(suffixAlphabet)]
	}
	return "TX" + strconv.FormatInt(time.Now().UnixMilli(), 10) + string(suffix)
}
