package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnora.com/app/internal/events"
	"learnora.com/app/internal/shared/dbutil"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// GatewayEvent is the audit row for every verified webhook delivery.
// The unique event id is what makes redelivery a no-op.
type GatewayEvent struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	EventID     string         `gorm:"type:varchar(128);not null;uniqueIndex:ux_gateway_events_event_id"`
	EventType   string         `gorm:"type:varchar(64);not null"`
	OrderID     string         `gorm:"type:varchar(64);index:ix_gateway_events_order_id"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`

	ReceivedAt   time.Time  `gorm:"precision:3;not null"`
	ProcessedAt  *time.Time `gorm:"precision:3"`
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }

// WebhookEvent is the part of a gateway event payload this service reads.
type WebhookEvent struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Amount           int64  `json:"amount"`
				Currency         string `json:"currency"`
				Status           string `json:"status"`
				ErrorCode        string `json:"error_code"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (e WebhookEvent) OrderID() string   { return e.Payload.Payment.Entity.OrderID }
func (e WebhookEvent) PaymentID() string { return e.Payload.Payment.Entity.ID }

func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return WebhookEvent{}, ErrMalformedEvent
	}
	if ev.Event == "" {
		return WebhookEvent{}, ErrMalformedEvent
	}
	return ev, nil
}

// EventIDFor falls back to a body digest when the gateway sent no event id,
// so a byte-identical redelivery still dedupes.
func EventIDFor(headerID string, body []byte) string {
	if headerID != "" {
		return headerID
	}
	sum := sha256.Sum256(body)
	return "body_" + hex.EncodeToString(sum[:16])
}

type WebhookResult struct {
	EventID   string
	EventType string
	OrderID   string
	Duplicate bool
	Applied   bool
	Payment   *Payment
}

// HandleWebhookEvent authenticates rawBody against the webhook secret before
// trusting any of it, then records and applies the event exactly once.
func (r *Reconciler) HandleWebhookEvent(ctx context.Context, rawBody []byte, headerSignature, headerEventID string) (WebhookResult, error) {
	if !r.verifier.VerifyWebhook(rawBody, headerSignature) {
		r.logger.WarnContext(ctx, "webhook signature rejected", "event_id", headerEventID)
		return WebhookResult{}, ErrInvalidSignature
	}

	ev, err := ParseWebhookEvent(rawBody)
	if err != nil {
		return WebhookResult{}, err
	}

	res := WebhookResult{
		EventID:   EventIDFor(headerEventID, rawBody),
		EventType: ev.Event,
		OrderID:   ev.OrderID(),
	}

	var (
		paid    Payment
		changed bool
		failed  *Payment
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		row := GatewayEvent{
			ID:          uuid.NewString(),
			EventID:     res.EventID,
			EventType:   ev.Event,
			OrderID:     ev.OrderID(),
			PayloadJSON: datatypes.JSON(rawBody),
			ReceivedAt:  now,
		}
		ins := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 0 {
			res.Duplicate = true
			return nil
		}

		var applyErr error
		switch ev.Event {
		case EventPaymentCaptured:
			c := Confirmation{Source: SourceWebhook, OrderID: ev.OrderID(), PaymentID: ev.PaymentID()}
			paid, changed, applyErr = r.finalizeTx(ctx, tx, c)
			if applyErr == nil {
				res.Applied = true
				res.Payment = &paid
			}
		case EventPaymentFailed:
			reason := ev.Payload.Payment.Entity.ErrorDescription
			p, ch, ferr := r.ledger.WithTx(tx).MarkFailed(ctx, ev.OrderID(), reason)
			applyErr = ferr
			if ferr == nil {
				res.Applied = true
				res.Payment = &p
				if ch {
					failed = &p
				}
			}
		default:
			// recorded for audit, nothing to apply
		}

		return r.closeEvent(ctx, tx, row.ID, ev, applyErr)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "webhook event apply failed", "event_id", res.EventID, "type", ev.Event, "order_id", res.OrderID, "err", err)
		return res, err
	}

	if res.Duplicate {
		r.logger.InfoContext(ctx, "webhook event deduplicated", "event_id", res.EventID, "type", ev.Event)
		return res, nil
	}
	if ev.Event == EventPaymentCaptured && res.Applied {
		r.afterFinalize(ctx, Confirmation{Source: SourceWebhook, OrderID: res.OrderID}, paid, changed)
	}
	if failed != nil {
		fe := FailedEvent{OrderID: failed.OrderID, UserID: failed.UserID}
		if failed.ErrorMessage != nil {
			fe.Reason = *failed.ErrorMessage
		}
		if err := r.publisher.Publish(ctx, events.PaymentFailed, fe); err != nil {
			r.logger.ErrorContext(ctx, "publish failed", "event", events.PaymentFailed, "order_id", failed.OrderID, "err", err)
		}
	}
	r.logger.InfoContext(ctx, "webhook event processed", "event_id", res.EventID, "type", ev.Event, "order_id", res.OrderID, "applied", res.Applied)
	return res, nil
}

// closeEvent stamps the audit row. Events without an order id or for orders
// this service never created are kept with their error and acknowledged;
// anything else rolls the transaction back so the gateway redelivers.
func (r *Reconciler) closeEvent(ctx context.Context, tx *gorm.DB, rowID string, ev WebhookEvent, applyErr error) error {
	now := time.Now()
	if applyErr == nil {
		return tx.WithContext(ctx).Model(&GatewayEvent{}).
			Where("id = ?", rowID).
			Updates(map[string]any{"processed_at": &now, "process_error": nil}).Error
	}

	if errors.Is(applyErr, ErrPaymentNotFound) ||
		errors.Is(applyErr, ErrInvalidTransition) ||
		errors.Is(applyErr, ErrMissingFields) {
		msg := dbutil.Truncate(applyErr.Error(), 250)
		r.logger.WarnContext(ctx, "webhook event not applicable", "type", ev.Event, "order_id", ev.OrderID(), "reason", msg)
		return tx.WithContext(ctx).Model(&GatewayEvent{}).
			Where("id = ?", rowID).
			Updates(map[string]any{"processed_at": &now, "process_error": msg}).Error
	}
	return applyErr
}
