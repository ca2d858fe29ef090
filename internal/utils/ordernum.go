package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber builds a human-readable order reference like
// "NS-20260831-4F2K". Uniqueness is enforced by the database; callers
// regenerate on a duplicate.
func GenerateOrderNumber(now time.Time) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// the clock so order creation still proceeds.
		return fmt.Sprintf("NS-%s-%04d", now.UTC().Format("20060102"), now.UnixNano()%10000)
	}

	for i, b := range suffix {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}

	return fmt.Sprintf("NS-%s-%s", now.UTC().Format("20060102"), suffix)
}
