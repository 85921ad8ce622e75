// Package payment verifies payment proofs issued by the payment gateway.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks that a claimed payment was really signed by the gateway.
// This is the sole gate between a forged checkout request and order
// creation, so it runs before any state mutation.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify recomputes the gateway signature over gatewayOrderID|gatewayPaymentID
// and compares it to the supplied one in constant time. Any difference,
// including truncation or casing, yields false.
func (v *Verifier) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := v.Sign(gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex-encoded HMAC-SHA256 the gateway would produce.
func (v *Verifier) Sign(gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
