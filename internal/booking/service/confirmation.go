package service

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	confirmationPrefix   = "HB"
	confirmationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	confirmationSuffixLen = 6
)

// newConfirmationNumber builds a human-facing identifier of the form
// HB-20260115-K7M2QX. Uniqueness is enforced by the database; callers retry
// on duplicate-key errors.
func newConfirmationNumber(now time.Time) (string, error) {
	buf := make([]byte, confirmationSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("confirmation suffix: %w", err)
	}
	for i, b := range buf {
		buf[i] = confirmationAlphabet[int(b)%len(confirmationAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", confirmationPrefix, now.UTC().Format("20060102"), string(buf)), nil
}
