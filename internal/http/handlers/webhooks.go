package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/http/middleware"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/shared/apperr"
	"learnora.com/app/pkg/view"
)

const (
	HeaderWebhookSignature = "X-Razorpay-Signature"
	HeaderWebhookEventID   = "X-Razorpay-Event-Id"

	maxWebhookBody = 1 << 20
)

type WebhookHandler struct {
	Logger     *slog.Logger
	Reconciler *payments.Reconciler
}

func NewWebhookHandler(logger *slog.Logger, r *payments.Reconciler) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Reconciler: r}
}

// POST /api/payments/webhook
// The body is read raw; the signature covers the exact bytes.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil || len(body) > maxWebhookBody {
		middleware.Fail(c, apperr.InvalidErr("Invalid body.", nil))
		return
	}

	res, err := h.Reconciler.HandleWebhookEvent(c.Request.Context(), body,
		c.GetHeader(HeaderWebhookSignature), c.GetHeader(HeaderWebhookEventID))
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) || errors.Is(err, payments.ErrMalformedEvent) {
			fail(c, err)
			return
		}
		// 500 so the gateway redelivers
		h.Logger.ErrorContext(c.Request.Context(), "webhook apply failed", "event_id", res.EventID, "type", res.EventType, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, view.WebhookAck{
		OK:        true,
		EventID:   res.EventID,
		Duplicate: res.Duplicate,
		Applied:   res.Applied,
	})
}
