package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnora.com/app/internal/events"
)

func webhookBody(t *testing.T, event, orderID, paymentID string) []byte {
	t.Helper()
	entity := map[string]any{
		"id":       paymentID,
		"order_id": orderID,
		"amount":   49900,
		"currency": "INR",
		"status":   "captured",
	}
	if event == EventPaymentFailed {
		entity["status"] = "failed"
		entity["error_description"] = "Payment declined by bank"
	}
	b, err := json.Marshal(map[string]any{
		"entity":  "event",
		"event":   event,
		"payload": map[string]any{"payment": map[string]any{"entity": entity}},
	})
	require.NoError(t, err)
	return b
}

func countEvents(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&GatewayEvent{}).Count(&n).Error)
	return n
}

func TestHandleWebhookEvent_Captured(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)
	body := webhookBody(t, EventPaymentCaptured, "order_abc123", "pay_xyz")

	res, err := f.rec.HandleWebhookEvent(ctx, body, Sign(body, testWebhookSecret), "evt_1")
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.False(t, res.Duplicate)
	require.NotNil(t, res.Payment)
	assert.Equal(t, StatusPaid, res.Payment.Status)
	assert.Equal(t, "pay_xyz", *res.Payment.GatewayPaymentID)
	assert.Equal(t, string(SourceWebhook), *res.Payment.PaidVia)
	assert.False(t, f.owns(t))
	assert.Equal(t, 1, f.events.Count(events.PaymentPaid))

	var row GatewayEvent
	require.NoError(t, f.db.First(&row, "event_id = ?", "evt_1").Error)
	assert.Equal(t, EventPaymentCaptured, row.EventType)
	assert.NotNil(t, row.ProcessedAt)
	assert.Nil(t, row.ProcessError)
}

func TestHandleWebhookEvent_GrantsWhenEnabled(t *testing.T) {
	f := newFixture(t, grantOnWebhook)
	f.createPending(t)
	body := webhookBody(t, EventPaymentCaptured, "order_abc123", "pay_xyz")

	_, err := f.rec.HandleWebhookEvent(context.Background(), body, Sign(body, testWebhookSecret), "evt_1")
	require.NoError(t, err)
	assert.True(t, f.owns(t))
}

func TestHandleWebhookEvent_ForgedSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)
	body := webhookBody(t, EventPaymentCaptured, "order_abc123", "pay_xyz")

	for name, sig := range map[string]string{
		"empty":          "",
		"api key secret": Sign(body, testKeySecret),
		"tampered":       Sign(append(body, ' '), testWebhookSecret),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.rec.HandleWebhookEvent(ctx, body, sig, "evt_1")
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}

	p, err := f.ledger.GetByOrderID(ctx, "order_abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Zero(t, countEvents(t, f))
}

func TestHandleWebhookEvent_Redelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)
	body := webhookBody(t, EventPaymentCaptured, "order_abc123", "pay_xyz")
	sig := Sign(body, testWebhookSecret)

	_, err := f.rec.HandleWebhookEvent(ctx, body, sig, "")
	require.NoError(t, err)
	res, err := f.rec.HandleWebhookEvent(ctx, body, sig, "")
	require.NoError(t, err)

	assert.True(t, res.Duplicate)
	assert.Equal(t, EventIDFor("", body), res.EventID)
	assert.Equal(t, int64(1), countEvents(t, f))
	assert.Equal(t, 1, f.events.Count(events.PaymentPaid))
}

func TestHandleWebhookEvent_UnknownOrderIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	body := webhookBody(t, EventPaymentCaptured, "order_other_service", "pay_1")

	res, err := f.rec.HandleWebhookEvent(context.Background(), body, Sign(body, testWebhookSecret), "evt_9")
	require.NoError(t, err)
	assert.False(t, res.Applied)

	var row GatewayEvent
	require.NoError(t, f.db.First(&row, "event_id = ?", "evt_9").Error)
	require.NotNil(t, row.ProcessError)
	assert.Contains(t, *row.ProcessError, "not found")
}

func TestHandleWebhookEvent_NullOrderIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)

	for _, event := range []string{EventPaymentCaptured, EventPaymentFailed} {
		body := []byte(`{"entity":"event","event":"` + event + `","payload":{"payment":{"entity":` +
			`{"id":"pay_direct","order_id":null,"amount":49900,"currency":"INR"}}}}`)
		sig := Sign(body, testWebhookSecret)

		res, err := f.rec.HandleWebhookEvent(ctx, body, sig, "evt_null_"+event)
		require.NoError(t, err, event)
		assert.False(t, res.Applied, event)

		res, err = f.rec.HandleWebhookEvent(ctx, body, sig, "evt_null_"+event)
		require.NoError(t, err, event)
		assert.True(t, res.Duplicate, event)

		var row GatewayEvent
		require.NoError(t, f.db.First(&row, "event_id = ?", "evt_null_"+event).Error)
		require.NotNil(t, row.ProcessError)
		assert.Contains(t, *row.ProcessError, "missing required fields")
		assert.NotNil(t, row.ProcessedAt)
	}

	assert.Equal(t, int64(2), countEvents(t, f))
	p, err := f.ledger.GetByOrderID(ctx, "order_abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Zero(t, f.events.Count(events.PaymentPaid))
}

func TestHandleWebhookEvent_Failed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)
	body := webhookBody(t, EventPaymentFailed, "order_abc123", "pay_xyz")

	res, err := f.rec.HandleWebhookEvent(ctx, body, Sign(body, testWebhookSecret), "evt_f")
	require.NoError(t, err)
	require.NotNil(t, res.Payment)
	assert.Equal(t, StatusFailed, res.Payment.Status)
	assert.Equal(t, "Payment declined by bank", *res.Payment.ErrorMessage)
	assert.Equal(t, 1, f.events.Count(events.PaymentFailed))
	assert.False(t, f.owns(t))
}

func TestHandleWebhookEvent_OtherTypesRecorded(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"event":"order.paid","payload":{}}`)

	res, err := f.rec.HandleWebhookEvent(context.Background(), body, Sign(body, testWebhookSecret), "evt_o")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, int64(1), countEvents(t, f))
}

func TestParseWebhookEvent_Malformed(t *testing.T) {
	for _, body := range []string{`not json`, `{}`, `{"payload":{}}`} {
		_, err := ParseWebhookEvent([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedEvent, body)
	}
}
