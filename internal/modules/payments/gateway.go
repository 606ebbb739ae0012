package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

type CreateOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is the gateway's view of an intended charge.
type GatewayOrder struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
}

// Gateway is the single payment gateway the service talks to.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (GatewayOrder, error)
}

const receiptMaxLen = 40

// ReceiptFor derives the receipt deterministically. Ids too long for the
// gateway's limit keep a short course prefix and a digest of both ids, so the
// receipt stays distinct per buyer.
func ReceiptFor(courseID, userID string) string {
	r := "rcpt_" + courseID + "_" + userID
	if len(r) <= receiptMaxLen {
		return r
	}
	prefix := courseID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	sum := sha256.Sum256([]byte(courseID + "|" + userID))
	return "rcpt_" + prefix + "_" + hex.EncodeToString(sum[:12])
}
