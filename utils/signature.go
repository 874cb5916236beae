package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks that signature is the hex HMAC-SHA256 of body under
// secret. It must be fed the exact raw request bytes: a re-serialized body is
// not guaranteed to match what the sender signed.
//
// It fails closed: a missing signature or an unconfigured secret verifies as
// false, never as an error the caller could mistakenly treat as success.
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	// Compare decoded digests, not hex strings: gateways differ on digit case.
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), sig)
}

// SignPayload computes the hex HMAC-SHA256 signature for a payload. Used by
// tests and by tooling that replays webhooks against a local instance.
func SignPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
