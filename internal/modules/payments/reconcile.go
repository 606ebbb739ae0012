package payments

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"learnora.com/app/internal/events"
)

// Source says which trigger path delivered a confirmation.
type Source string

const (
	SourceClient  Source = "client"
	SourceWebhook Source = "webhook"
)

// Confirmation is one finalize request. Both trigger paths produce one after
// their own signature check.
type Confirmation struct {
	Source    Source
	OrderID   string
	PaymentID string
	Signature string // client path only
}

// Granter adds a course to a user's owned set inside the caller's transaction.
type Granter interface {
	GrantTx(ctx context.Context, tx *gorm.DB, userID, courseID, paymentID string) error
}

type PaidEvent struct {
	OrderID     string    `json:"order_id"`
	PaymentID   string    `json:"payment_id"`
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	Via         Source    `json:"via"`
	PaidAt      time.Time `json:"paid_at"`
}

type FailedEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
}

type Reconciler struct {
	db        *gorm.DB
	ledger    *Ledger
	granter   Granter
	verifier  *Verifier
	publisher events.Publisher
	logger    *slog.Logger

	grantOnWebhook bool
}

type ReconcilerDeps struct {
	DB        *gorm.DB
	Ledger    *Ledger
	Granter   Granter
	Verifier  *Verifier
	Publisher events.Publisher

	GrantOnWebhook bool
}

func NewReconciler(d ReconcilerDeps) *Reconciler {
	pub := d.Publisher
	if pub == nil {
		pub = events.Nop{}
	}
	return &Reconciler{
		db:             d.DB,
		ledger:         d.Ledger,
		granter:        d.Granter,
		verifier:       d.Verifier,
		publisher:      pub,
		logger:         slog.Default(),
		grantOnWebhook: d.GrantOnWebhook,
	}
}

func (r *Reconciler) SetLogger(logger *slog.Logger) { r.logger = logger }

// ConfirmClientPayment handles the checkout callback the frontend forwards.
// A bad signature leaves the record untouched.
func (r *Reconciler) ConfirmClientPayment(ctx context.Context, orderID, paymentID, signature string) (Payment, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return Payment{}, ErrMissingFields
	}
	if !r.verifier.VerifyCallback(orderID, paymentID, signature) {
		r.logger.WarnContext(ctx, "client payment signature rejected", "order_id", orderID)
		return Payment{}, ErrInvalidSignature
	}

	c := Confirmation{Source: SourceClient, OrderID: orderID, PaymentID: paymentID, Signature: signature}

	var p Payment
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, changed, err = r.finalizeTx(ctx, tx, c)
		return err
	})
	if err != nil {
		return Payment{}, err
	}
	r.afterFinalize(ctx, c, p, changed)
	return p, nil
}

// finalizeTx is the one place a payment becomes paid. It must run inside tx
// so the entitlement commits with the status change or not at all.
func (r *Reconciler) finalizeTx(ctx context.Context, tx *gorm.DB, c Confirmation) (Payment, bool, error) {
	p, changed, err := r.ledger.WithTx(tx).toPaid(ctx, c.OrderID, c.PaymentID, c.Signature, c.Source)
	if err != nil {
		return Payment{}, false, err
	}
	if !r.grants(c.Source) {
		return p, changed, nil
	}
	if err := r.granter.GrantTx(ctx, tx, p.UserID, p.CourseID, p.ID); err != nil {
		return Payment{}, false, err
	}
	return p, changed, nil
}

func (r *Reconciler) grants(s Source) bool {
	return s == SourceClient || r.grantOnWebhook
}

// afterFinalize runs once the transaction has committed.
func (r *Reconciler) afterFinalize(ctx context.Context, c Confirmation, p Payment, changed bool) {
	if !changed {
		r.logger.InfoContext(ctx, "payment already finalized", "order_id", p.OrderID, "source", c.Source)
		return
	}
	if !r.grants(c.Source) {
		r.logger.WarnContext(ctx, "paid without entitlement; waiting for client confirmation",
			"order_id", p.OrderID, "user_id", p.UserID, "course_id", p.CourseID)
	}

	ev := PaidEvent{
		OrderID:     p.OrderID,
		PaymentID:   p.ID,
		UserID:      p.UserID,
		CourseID:    p.CourseID,
		AmountMinor: p.AmountMinor,
		Currency:    p.Currency,
		Via:         c.Source,
	}
	if p.PaidAt != nil {
		ev.PaidAt = *p.PaidAt
	}
	if err := r.publisher.Publish(ctx, events.PaymentPaid, ev); err != nil {
		r.logger.ErrorContext(ctx, "publish failed", "event", events.PaymentPaid, "order_id", p.OrderID, "err", err)
	}
}

// MarkRefunded is the admin refund status marking.
func (r *Reconciler) MarkRefunded(ctx context.Context, orderID string) (Payment, error) {
	p, changed, err := r.ledger.MarkRefunded(ctx, orderID)
	if err != nil {
		return Payment{}, err
	}
	if changed {
		r.logger.InfoContext(ctx, "payment marked refunded", "order_id", orderID)
	}
	return p, nil
}
