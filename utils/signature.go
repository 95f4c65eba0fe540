package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignMessage returns the hex HMAC-SHA256 of the payload under the shared
// secret. Used both for the booking intent embedded in checkout session
// metadata and for webhook signature verification.
func SignMessage(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyMessage compares signatures in constant time.
func VerifyMessage(secret string, payload []byte, signature string) bool {
	expected := SignMessage(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
