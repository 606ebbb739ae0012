package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/users"
	"learnora.com/app/internal/shared/dbutil"
)

type UserFinder interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type CourseFinder interface {
	Get(ctx context.Context, id string) (courses.Course, error)
}

// Ledger owns the payment-record lifecycle. Every status change is a single
// conditional UPDATE guarded by the expected current status.
type Ledger struct {
	db       *gorm.DB
	gateway  Gateway
	users    UserFinder
	courses  CourseFinder
	currency string
	logger   *slog.Logger
	now      func() time.Time
}

type LedgerDeps struct {
	DB       *gorm.DB
	Gateway  Gateway
	Users    UserFinder
	Courses  CourseFinder
	Currency string
}

func NewLedger(d LedgerDeps) *Ledger {
	return &Ledger{
		db:       d.DB,
		gateway:  d.Gateway,
		users:    d.Users,
		courses:  d.Courses,
		currency: d.Currency,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

func (l *Ledger) SetLogger(logger *slog.Logger) { l.logger = logger }

func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// WithTx returns a ledger bound to tx.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	cp := *l
	cp.db = tx
	return &cp
}

type CreateOrderResult struct {
	Order   GatewayOrder
	Payment Payment
}

func (l *Ledger) CreatePendingOrder(ctx context.Context, userID, courseID, paymentMethod string) (CreateOrderResult, error) {
	if userID == "" || courseID == "" {
		return CreateOrderResult{}, ErrMissingFields
	}
	if !ValidPaymentMethod(paymentMethod) {
		return CreateOrderResult{}, ErrInvalidPaymentMethod
	}

	ok, err := l.users.Exists(ctx, userID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if !ok {
		return CreateOrderResult{}, users.ErrNotFound
	}

	course, err := l.courses.Get(ctx, courseID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	currency := course.Currency
	if currency == "" {
		currency = l.currency
	}
	receipt := ReceiptFor(course.ID, userID)

	// gateway call happens outside any transaction
	order, err := l.gateway.CreateOrder(ctx, CreateOrderRequest{
		AmountMinor: course.DiscountPriceMinor,
		Currency:    currency,
		Receipt:     receipt,
		Notes:       map[string]string{"user_id": userID, "course_id": course.ID},
	})
	if err != nil {
		l.logger.ErrorContext(ctx, "gateway order creation failed", "user_id", userID, "course_id", course.ID, "err", err)
		return CreateOrderResult{}, err
	}
	if strings.TrimSpace(order.ID) == "" {
		return CreateOrderResult{}, fmt.Errorf("%w: empty order id", ErrGateway)
	}

	now := l.now()
	p := Payment{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		UserID:        userID,
		CourseID:      course.ID,
		AmountMinor:   course.DiscountPriceMinor,
		Currency:      currency,
		PaymentMethod: paymentMethod,
		Receipt:       receipt,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.db.WithContext(ctx).Create(&p).Error; err != nil {
		if dbutil.IsDuplicate(err) {
			return CreateOrderResult{}, ErrDuplicateOrder
		}
		return CreateOrderResult{}, err
	}

	l.logger.InfoContext(ctx, "pending order created", "order_id", p.OrderID, "payment_id", p.ID, "amount_minor", p.AmountMinor, "currency", p.Currency)
	return CreateOrderResult{Order: order, Payment: p}, nil
}

func (l *Ledger) GetByOrderID(ctx context.Context, orderID string) (Payment, error) {
	var p Payment
	if err := l.db.WithContext(ctx).First(&p, "order_id = ?", orderID).Error; err != nil {
		if dbutil.IsNotFound(err) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (l *Ledger) ListByUser(ctx context.Context, userID string) ([]Payment, error) {
	var items []Payment
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// MarkPaid records a client-verified payment. An already-paid record is
// returned unchanged.
func (l *Ledger) MarkPaid(ctx context.Context, orderID, gatewayPaymentID, gatewaySignature string) (Payment, error) {
	p, _, err := l.toPaid(ctx, orderID, gatewayPaymentID, gatewaySignature, SourceClient)
	return p, err
}

// MarkPaidFromWebhook is MarkPaid for the webhook path, which has no client
// signature to store.
func (l *Ledger) MarkPaidFromWebhook(ctx context.Context, orderID, gatewayPaymentID string) (Payment, error) {
	p, _, err := l.toPaid(ctx, orderID, gatewayPaymentID, "", SourceWebhook)
	return p, err
}

// toPaid reports whether this call performed the transition to paid.
func (l *Ledger) toPaid(ctx context.Context, orderID, gatewayPaymentID, signature string, via Source) (Payment, bool, error) {
	if orderID == "" {
		return Payment{}, false, ErrMissingFields
	}

	now := l.now()
	upd := map[string]any{
		"status":     StatusPaid,
		"paid_at":    now,
		"paid_via":   string(via),
		"updated_at": now,
	}
	if gatewayPaymentID != "" {
		upd["gateway_payment_id"] = gatewayPaymentID
	}
	if signature != "" {
		upd["gateway_signature"] = signature
	}

	// a failed attempt can be followed by a successful retry on the same order
	changed, err := l.transition(ctx, orderID, []string{StatusPending, StatusFailed}, upd)
	if err != nil {
		return Payment{}, false, err
	}
	return l.settle(ctx, orderID, StatusPaid, changed)
}

// MarkFailed moves a pending record to failed on a terminal gateway failure.
func (l *Ledger) MarkFailed(ctx context.Context, orderID, reason string) (Payment, bool, error) {
	if orderID == "" {
		return Payment{}, false, ErrMissingFields
	}
	if reason == "" {
		reason = "payment failed"
	}
	now := l.now()
	changed, err := l.transition(ctx, orderID, []string{StatusPending}, map[string]any{
		"status":        StatusFailed,
		"error_message": dbutil.Truncate(reason, 250),
		"updated_at":    now,
	})
	if err != nil {
		return Payment{}, false, err
	}
	return l.settle(ctx, orderID, StatusFailed, changed)
}

// MarkRefunded is the admin status marking for a refund processed elsewhere.
func (l *Ledger) MarkRefunded(ctx context.Context, orderID string) (Payment, bool, error) {
	if orderID == "" {
		return Payment{}, false, ErrMissingFields
	}
	now := l.now()
	changed, err := l.transition(ctx, orderID, []string{StatusPaid}, map[string]any{
		"status":      StatusRefunded,
		"refunded_at": now,
		"updated_at":  now,
	})
	if err != nil {
		return Payment{}, false, err
	}
	return l.settle(ctx, orderID, StatusRefunded, changed)
}

// transition is the compare-and-set: it only touches a row still in one of from.
func (l *Ledger) transition(ctx context.Context, orderID string, from []string, upd map[string]any) (bool, error) {
	res := l.db.WithContext(ctx).Model(&Payment{}).
		Where("order_id = ? AND status IN ?", orderID, from).
		Updates(upd)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// settle reloads the record after a conditional update. A lost race or a
// replay that finds the target status already in place is success.
func (l *Ledger) settle(ctx context.Context, orderID, target string, changed bool) (Payment, bool, error) {
	p, err := l.GetByOrderID(ctx, orderID)
	if err != nil {
		return Payment{}, false, err
	}
	if changed {
		l.logger.InfoContext(ctx, "payment status changed", "order_id", orderID, "status", target)
		return p, true, nil
	}
	if p.Status == target {
		return p, false, nil
	}
	return p, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, target)
}
