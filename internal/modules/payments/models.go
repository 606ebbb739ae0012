package payments

import "time"

const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusFailed   = "failed"
	StatusRefunded = "refunded"
)

var paymentMethods = map[string]bool{
	"card":       true,
	"cash":       true,
	"UPI":        true,
	"wallet":     true,
	"netbanking": true,
}

func ValidPaymentMethod(m string) bool { return paymentMethods[m] }

type Payment struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OrderID string `gorm:"type:varchar(64);not null;uniqueIndex:ux_payments_order_id"`

	UserID   string `gorm:"type:char(36);not null;index:ix_payments_user_id"`
	CourseID string `gorm:"type:char(36);not null;index:ix_payments_course_id"`

	AmountMinor   int64  `gorm:"not null"`
	Currency      string `gorm:"type:char(3);not null"`
	PaymentMethod string `gorm:"type:varchar(16);not null"`
	Receipt       string `gorm:"type:varchar(40);not null"`

	Status string `gorm:"type:varchar(16);not null;index:ix_payments_status"`

	// set only once a signature has been verified
	GatewayPaymentID *string `gorm:"type:varchar(64)"`
	GatewaySignature *string `gorm:"type:varchar(128)"`
	PaidVia          *string `gorm:"type:varchar(16)"` // client|webhook
	ErrorMessage     *string `gorm:"type:varchar(255)"`

	CreatedAt  time.Time  `gorm:"precision:3;not null"`
	UpdatedAt  time.Time  `gorm:"precision:3;not null"`
	PaidAt     *time.Time `gorm:"precision:3"`
	RefundedAt *time.Time `gorm:"precision:3"`
}

func (Payment) TableName() string { return "payments" }
