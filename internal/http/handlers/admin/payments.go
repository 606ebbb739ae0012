package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/http/middleware"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/shared/apperr"
)

type PaymentsHandler struct {
	Reconciler *payments.Reconciler
	Ledger     *payments.Ledger
}

func NewPaymentsHandler(r *payments.Reconciler, l *payments.Ledger) *PaymentsHandler {
	return &PaymentsHandler{Reconciler: r, Ledger: l}
}

type paymentRow struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	CourseID    string `json:"course_id"`
}

// POST /api/admin/payments/:orderId/refund
// Marks a refund processed at the gateway. Entitlements are left as they are.
func (h *PaymentsHandler) Refund(c *gin.Context) {
	p, err := h.Reconciler.MarkRefunded(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrPaymentNotFound):
			middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
		case errors.Is(err, payments.ErrInvalidTransition):
			middleware.Fail(c, apperr.ConflictErr("Only paid orders can be refunded."))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}
	c.JSON(http.StatusOK, toRow(p))
}

// GET /api/admin/users/:userId/payments
func (h *PaymentsHandler) ListByUser(c *gin.Context) {
	items, err := h.Ledger.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	out := make([]paymentRow, 0, len(items))
	for _, p := range items {
		out = append(out, toRow(p))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func toRow(p payments.Payment) paymentRow {
	return paymentRow{
		OrderID:     p.OrderID,
		Status:      p.Status,
		AmountMinor: p.AmountMinor,
		Currency:    p.Currency,
		CourseID:    p.CourseID,
	}
}
