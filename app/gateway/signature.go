package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// verifyHMACSHA256Hex checks a hex-encoded HMAC-SHA256 digest of the exact
// raw body bytes against the shared secret. Returns false on a missing
// signature or secret rather than an error: a failed check is a hard gate,
// not a fault.
func verifyHMACSHA256Hex(payload []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" || strings.TrimSpace(secret) == "" {
		return false
	}

	candidate, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	expected := mac.Sum(nil)

	return hmac.Equal(expected, candidate)
}
