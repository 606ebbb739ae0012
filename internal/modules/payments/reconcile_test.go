package payments

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnora.com/app/internal/events"
)

func clientSig(orderID, paymentID string) string {
	return Sign(CallbackMessage(orderID, paymentID), testKeySecret)
}

func TestConfirmClientPayment_GrantsCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)

	p, err := f.rec.ConfirmClientPayment(ctx, "order_abc123", "pay_xyz", clientSig("order_abc123", "pay_xyz"))
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, p.Status)
	assert.Equal(t, "pay_xyz", *p.GatewayPaymentID)
	assert.True(t, f.owns(t))
	assert.Equal(t, 1, f.events.Count(events.PaymentPaid))

	ev := f.events.Events[0].Payload.(PaidEvent)
	assert.Equal(t, int64(49900), ev.AmountMinor)
	assert.Equal(t, SourceClient, ev.Via)
}

func TestConfirmClientPayment_Replay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)
	sig := clientSig("order_abc123", "pay_xyz")

	_, err := f.rec.ConfirmClientPayment(ctx, "order_abc123", "pay_xyz", sig)
	require.NoError(t, err)
	p, err := f.rec.ConfirmClientPayment(ctx, "order_abc123", "pay_xyz", sig)
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, p.Status)
	assert.Equal(t, 1, f.events.Count(events.PaymentPaid))

	ids, err := f.grants.ListCourseIDs(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.course.ID}, ids)
}

func TestConfirmClientPayment_BadSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)

	cases := map[string]string{
		"garbage":          "deadbeef",
		"other payment id": clientSig("order_abc123", "pay_other"),
		"webhook secret":   Sign(CallbackMessage("order_abc123", "pay_xyz"), testWebhookSecret),
	}
	for name, sig := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.rec.ConfirmClientPayment(ctx, "order_abc123", "pay_xyz", sig)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}

	p, err := f.ledger.GetByOrderID(ctx, "order_abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.False(t, f.owns(t))
	assert.Zero(t, f.events.Count(events.PaymentPaid))
}

func TestConfirmClientPayment_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.ConfirmClientPayment(context.Background(), "order_abc123", "", "sig")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestConfirmClientPayment_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.ConfirmClientPayment(context.Background(), "order_nope", "pay_1", clientSig("order_nope", "pay_1"))
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.Zero(t, f.events.Count(events.PaymentPaid))
}

func TestConfirmClientPayment_AfterWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)

	body := webhookBody(t, EventPaymentCaptured, "order_abc123", "pay_xyz")
	_, err := f.rec.HandleWebhookEvent(ctx, body, Sign(body, testWebhookSecret), "evt_1")
	require.NoError(t, err)
	assert.False(t, f.owns(t), "webhook does not grant by default")

	p, err := f.rec.ConfirmClientPayment(ctx, "order_abc123", "pay_xyz", clientSig("order_abc123", "pay_xyz"))
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, p.Status)
	assert.True(t, f.owns(t))
	assert.Equal(t, 1, f.events.Count(events.PaymentPaid))
}

func TestConcurrentConfirmations(t *testing.T) {
	f := newFixture(t, grantOnWebhook)
	ctx := context.Background()
	f.createPending(t)

	sig := clientSig("order_abc123", "pay_xyz")
	body := webhookBody(t, EventPaymentCaptured, "order_abc123", "pay_xyz")
	whSig := Sign(body, testWebhookSecret)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.rec.ConfirmClientPayment(ctx, "order_abc123", "pay_xyz", sig)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.rec.HandleWebhookEvent(ctx, body, whSig, "evt_same")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := f.ledger.GetByOrderID(ctx, "order_abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, p.Status)
	assert.Equal(t, 1, f.events.Count(events.PaymentPaid), "exactly one transition")

	ids, err := f.grants.ListCourseIDs(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestReconcilerMarkRefunded_KeepsEntitlement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPending(t)

	_, err := f.rec.ConfirmClientPayment(ctx, "order_abc123", "pay_xyz", clientSig("order_abc123", "pay_xyz"))
	require.NoError(t, err)

	p, err := f.rec.MarkRefunded(ctx, "order_abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, p.Status)
	assert.True(t, f.owns(t))
}
