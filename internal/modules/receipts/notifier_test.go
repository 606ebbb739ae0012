package receipts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnora.com/app/internal/events"
	"learnora.com/app/internal/mailer"
	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/modules/users"
)

type userStub map[string]users.User

func (s userStub) Get(_ context.Context, id string) (users.User, error) {
	u, ok := s[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

type courseStub map[string]courses.Course

func (s courseStub) Get(_ context.Context, id string) (courses.Course, error) {
	c, ok := s[id]
	if !ok {
		return courses.Course{}, courses.ErrNotFound
	}
	return c, nil
}

func newNotifier() (*Notifier, *mailer.Mock) {
	m := &mailer.Mock{}
	n := NewNotifier(m,
		userStub{"u1": {ID: "u1", Name: "Asha <3", Email: "asha@example.com"}},
		courseStub{"c1": {ID: "c1", Title: "Go 101"}},
		"receipts@learnora.test", "Learnora")
	return n, m
}

func paid() payments.PaidEvent {
	return payments.PaidEvent{
		OrderID:     "order_abc123",
		PaymentID:   "pay_xyz",
		UserID:      "u1",
		CourseID:    "c1",
		AmountMinor: 49900,
		Currency:    "INR",
		Via:         payments.SourceClient,
		PaidAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNotifier_SendsReceipt(t *testing.T) {
	n, m := newNotifier()

	require.NoError(t, n.Publish(context.Background(), events.PaymentPaid, paid()))
	require.Equal(t, 1, m.Count())

	e := m.Sent[0]
	assert.Equal(t, []string{"asha@example.com"}, e.To)
	assert.Equal(t, "Your receipt for Go 101", e.Subject)
	assert.Contains(t, e.TextBody, "₹499.00")
	assert.Contains(t, e.HTMLBody, "order_abc123")
	assert.Contains(t, e.HTMLBody, "Asha &lt;3")
}

func TestNotifier_IgnoresOtherEvents(t *testing.T) {
	n, m := newNotifier()
	require.NoError(t, n.Publish(context.Background(), events.PaymentFailed, payments.FailedEvent{OrderID: "o"}))
	assert.Zero(t, m.Count())
}

func TestNotifier_UnknownUser(t *testing.T) {
	n, m := newNotifier()
	ev := paid()
	ev.UserID = "ghost"
	assert.ErrorIs(t, n.Publish(context.Background(), events.PaymentPaid, ev), users.ErrNotFound)
	assert.Zero(t, m.Count())
}
