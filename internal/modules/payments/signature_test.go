package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceSig(secret, msg string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

func TestVerify_CallbackContext(t *testing.T) {
	cases := []struct{ orderID, paymentID, secret string }{
		{"order_abc123", "pay_xyz789", "key-secret"},
		{"order_1", "pay_1", "s"},
		{"order_with|pipe", "pay_2", "another secret"},
	}
	for _, tc := range cases {
		sig := referenceSig(tc.secret, tc.orderID+"|"+tc.paymentID)

		assert.Equal(t, sig, Sign(CallbackMessage(tc.orderID, tc.paymentID), tc.secret))
		assert.True(t, Verify(CallbackMessage(tc.orderID, tc.paymentID), sig, tc.secret))
		assert.False(t, Verify(CallbackMessage(tc.orderID, tc.paymentID+"x"), sig, tc.secret))
		assert.False(t, Verify(CallbackMessage(tc.orderID, tc.paymentID), sig, tc.secret+"x"))
	}
}

func TestVerify_MalformedInput(t *testing.T) {
	msg := []byte("order_1|pay_1")
	good := Sign(msg, "k")

	assert.False(t, Verify(msg, "", "k"))
	assert.False(t, Verify(msg, good, ""))
	assert.False(t, Verify(msg, "not-hex-at-all", "k"))
	assert.False(t, Verify(msg, good[:10], "k"))
	assert.False(t, Verify(msg, strings.ToUpper(good), "k"))
	assert.False(t, Verify(msg, good+"00", "k"))
}

// Every single-byte corruption, wherever it sits, must take the same
// rejection path: no early-exit prefix match.
func TestVerify_MismatchPositionIndependent(t *testing.T) {
	msg := []byte("order_abc123|pay_xyz789")
	good := Sign(msg, "key-secret")
	require.Len(t, good, 64)

	for i := 0; i < len(good); i++ {
		b := []byte(good)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		assert.False(t, Verify(msg, string(b), "key-secret"), "position %d", i)
		// hmac.Equal is the constant-time primitive; it agrees with Verify
		assert.False(t, hmac.Equal([]byte(good), b))
	}
}

func TestVerifier_SeparateSecrets(t *testing.T) {
	_, err := NewVerifier("same", "same")
	assert.ErrorIs(t, err, errSharedSecret)

	_, err = NewVerifier("", "w")
	assert.Error(t, err)

	v, err := NewVerifier("api-secret", "webhook-secret")
	require.NoError(t, err)

	body := []byte(`{"event":"payment.captured"}`)
	assert.True(t, v.VerifyWebhook(body, Sign(body, "webhook-secret")))
	assert.False(t, v.VerifyWebhook(body, Sign(body, "api-secret")), "api secret must not authenticate webhooks")

	sig := Sign(CallbackMessage("order_1", "pay_1"), "api-secret")
	assert.True(t, v.VerifyCallback("order_1", "pay_1", sig))
	assert.False(t, v.VerifyCallback("order_1", "pay_1", Sign(CallbackMessage("order_1", "pay_1"), "webhook-secret")))
	assert.False(t, v.VerifyCallback("", "pay_1", sig))
	assert.False(t, v.VerifyWebhook(nil, sig))
}
