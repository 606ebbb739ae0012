package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/pkg/view"
)

type PaymentsHandler struct {
	Ledger     *payments.Ledger
	Reconciler *payments.Reconciler
	KeyID      string
}

func NewPaymentsHandler(l *payments.Ledger, r *payments.Reconciler, keyID string) *PaymentsHandler {
	return &PaymentsHandler{Ledger: l, Reconciler: r, KeyID: keyID}
}

type createOrderInput struct {
	CourseID      string `json:"course_id" binding:"required,max=64"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=card cash UPI wallet netbanking"`
}

// POST /api/payments/orders/:userId
func (h *PaymentsHandler) CreateOrder(c *gin.Context) {
	var in createOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBind(c, err, &in)
		return
	}

	res, err := h.Ledger.CreatePendingOrder(c.Request.Context(), c.Param("userId"), in.CourseID, in.PaymentMethod)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, view.Checkout{
		KeyID: h.KeyID,
		Order: view.GatewayOrder{
			ID:       res.Order.ID,
			Amount:   res.Order.AmountMinor,
			Currency: res.Order.Currency,
			Receipt:  res.Order.Receipt,
			Status:   res.Order.Status,
		},
		Payment: paymentView(res.Payment),
	})
}

type verifyInput struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// POST /api/payments/verify
func (h *PaymentsHandler) Verify(c *gin.Context) {
	var in verifyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBind(c, err, &in)
		return
	}

	p, err := h.Reconciler.ConfirmClientPayment(c.Request.Context(), in.OrderID, in.PaymentID, in.Signature)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentView(p))
}

// GET /api/payments/orders/:orderId
func (h *PaymentsHandler) Get(c *gin.Context) {
	p, err := h.Ledger.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentView(p))
}
