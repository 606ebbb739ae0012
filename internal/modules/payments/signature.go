package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Sign returns hex(HMAC-SHA256(secret, message)).
func Sign(message []byte, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write(message)
	return hex.EncodeToString(m.Sum(nil))
}

// Verify compares signature against Sign(message, secret) in constant time.
// An empty secret or signature never verifies.
func Verify(message []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(message, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CallbackMessage is the payload the gateway signs for a client-side checkout.
func CallbackMessage(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}

// Verifier holds the two secrets. They authenticate different senders and
// must never be the same value.
type Verifier struct {
	apiSecret     string
	webhookSecret string
}

var errSharedSecret = errors.New("verifier: api secret and webhook secret must differ")

func NewVerifier(apiSecret, webhookSecret string) (*Verifier, error) {
	if apiSecret == "" || webhookSecret == "" {
		return nil, errors.New("verifier: both secrets are required")
	}
	if apiSecret == webhookSecret {
		return nil, errSharedSecret
	}
	return &Verifier{apiSecret: apiSecret, webhookSecret: webhookSecret}, nil
}

func (v *Verifier) VerifyCallback(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" {
		return false
	}
	return Verify(CallbackMessage(orderID, paymentID), signature, v.apiSecret)
}

// VerifyWebhook checks the header signature against the exact raw body.
func (v *Verifier) VerifyWebhook(rawBody []byte, signature string) bool {
	if len(rawBody) == 0 {
		return false
	}
	return Verify(rawBody, signature, v.webhookSecret)
}
