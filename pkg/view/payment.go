package view

type Payment struct {
	ID               string  `json:"id"`
	OrderID          string  `json:"order_id"`
	UserID           string  `json:"user_id"`
	CourseID         string  `json:"course_id"`
	Amount           Money   `json:"amount"`
	PaymentMethod    string  `json:"payment_method"`
	Receipt          string  `json:"receipt"`
	Status           string  `json:"status"`
	GatewayPaymentID string  `json:"gateway_payment_id,omitempty"`
	PaidVia          string  `json:"paid_via,omitempty"`
	ErrorMessage     string  `json:"error_message,omitempty"`
	CreatedAt        string  `json:"created_at"`
	PaidAt           *string `json:"paid_at,omitempty"`
	RefundedAt       *string `json:"refunded_at,omitempty"`
}

// GatewayOrder is what the checkout widget needs to open the payment form.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Checkout struct {
	KeyID   string       `json:"key_id"`
	Order   GatewayOrder `json:"order"`
	Payment Payment      `json:"payment"`
}

type WebhookAck struct {
	OK        bool   `json:"ok"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Applied   bool   `json:"applied"`
}
