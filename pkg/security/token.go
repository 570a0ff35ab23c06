package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

const trackingTokenBytes = 16

var trackingTokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// NewTrackingToken returns a 128-bit random hex token. Requesters use it to
// look up and edit their submission without an account.
func NewTrackingToken() (string, error) {
	buf := make([]byte, trackingTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate tracking token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IsTrackingToken reports whether value has the shape of a tracking token.
// Lookups for malformed tokens can be rejected without touching the database.
func IsTrackingToken(value string) bool {
	return trackingTokenPattern.MatchString(value)
}
