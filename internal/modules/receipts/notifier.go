// Package receipts emails a purchase receipt once a payment is finalized.
package receipts

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"learnora.com/app/internal/events"
	"learnora.com/app/internal/mailer"
	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/modules/users"
	"learnora.com/app/pkg/view"
)

const sendTimeout = 15 * time.Second

type UserLookup interface {
	Get(ctx context.Context, id string) (users.User, error)
}

type CourseLookup interface {
	Get(ctx context.Context, id string) (courses.Course, error)
}

// Notifier is an events.Publisher that reacts to payment.paid only.
type Notifier struct {
	mail     mailer.Service
	users    UserLookup
	courses  CourseLookup
	from     string
	fromName string
	logger   *slog.Logger
}

func NewNotifier(m mailer.Service, u UserLookup, c CourseLookup, from, fromName string) *Notifier {
	return &Notifier{mail: m, users: u, courses: c, from: from, fromName: fromName, logger: slog.Default()}
}

func (n *Notifier) SetLogger(logger *slog.Logger) { n.logger = logger }

func (n *Notifier) Publish(ctx context.Context, key string, v any) error {
	if key != events.PaymentPaid {
		return nil
	}
	ev, ok := v.(payments.PaidEvent)
	if !ok {
		return fmt.Errorf("receipts: unexpected payload %T", v)
	}

	u, err := n.users.Get(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("receipts: user %s: %w", ev.UserID, err)
	}
	c, err := n.courses.Get(ctx, ev.CourseID)
	if err != nil {
		return fmt.Errorf("receipts: course %s: %w", ev.CourseID, err)
	}

	email, err := n.compose(u, c, ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := n.mail.Send(ctx, email); err != nil {
		return fmt.Errorf("receipts: send %s: %w", ev.OrderID, err)
	}
	n.logger.InfoContext(ctx, "receipt sent", "order_id", ev.OrderID, "user_id", u.ID)
	return nil
}

type receiptData struct {
	Name      string
	Course    string
	OrderID   string
	PaymentID string
	Amount    string
	PaidAt    string
}

var htmlTmpl = template.Must(template.New("receipt").Parse(`<html>
  <body style="font-family: sans-serif;">
    <h2>Payment received</h2>
    <p>Hi {{.Name}},</p>
    <p>You now have access to <strong>{{.Course}}</strong>.</p>
    <table>
      <tr><td>Order</td><td>{{.OrderID}}</td></tr>
      <tr><td>Payment</td><td>{{.PaymentID}}</td></tr>
      <tr><td>Amount</td><td>{{.Amount}}</td></tr>
      <tr><td>Date</td><td>{{.PaidAt}}</td></tr>
    </table>
  </body>
</html>
`))

func (n *Notifier) compose(u users.User, c courses.Course, ev payments.PaidEvent) (mailer.Email, error) {
	paidAt := ev.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	d := receiptData{
		Name:      u.Name,
		Course:    c.Title,
		OrderID:   ev.OrderID,
		PaymentID: ev.PaymentID,
		Amount:    view.MoneyFromMinor(ev.AmountMinor, ev.Currency).Display,
		PaidAt:    paidAt.UTC().Format("2006-01-02 15:04 MST"),
	}

	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, d); err != nil {
		return mailer.Email{}, fmt.Errorf("receipts: render: %w", err)
	}
	text := fmt.Sprintf("Hi %s,\n\nYou now have access to %s.\n\nOrder: %s\nPayment: %s\nAmount: %s\nDate: %s\n",
		d.Name, d.Course, d.OrderID, d.PaymentID, d.Amount, d.PaidAt)

	return mailer.Email{
		From:     n.from,
		FromName: n.fromName,
		To:       []string{u.Email},
		Subject:  "Your receipt for " + c.Title,
		TextBody: text,
		HTMLBody: html.String(),
		Headers:  map[string]string{"X-Order-Id": ev.OrderID},
	}, nil
}
