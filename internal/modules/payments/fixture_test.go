package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"learnora.com/app/internal/events"
	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/entitlements"
	"learnora.com/app/internal/modules/users"
	"learnora.com/app/internal/testutil"
)

const (
	testKeySecret     = "key_secret"
	testWebhookSecret = "whsec_other"
)

type fakeGateway struct {
	mu     sync.Mutex
	calls  []CreateOrderRequest
	nextID string
	err    error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req CreateOrderRequest) (GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return GatewayOrder{}, g.err
	}
	return GatewayOrder{
		ID:          g.nextID,
		Entity:      "order",
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      "created",
	}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fixture struct {
	db     *gorm.DB
	gw     *fakeGateway
	ledger *Ledger
	rec    *Reconciler
	grants *entitlements.Service
	events *events.Recorder
	clock  *testutil.Clock

	user   users.User
	course courses.Course
}

type fixtureOpt func(*ReconcilerDeps)

func grantOnWebhook(d *ReconcilerDeps) { d.GrantOnWebhook = true }

func newFixture(t *testing.T, opts ...fixtureOpt) *fixture {
	t.Helper()
	ctx := context.Background()

	db := testutil.NewDB(t, &users.User{}, &courses.Course{}, &Payment{}, &entitlements.UserCourse{}, &GatewayEvent{})

	u, err := users.NewRepo(db).Create(ctx, users.CreateInput{Name: "Asha", Email: "asha@example.com"})
	require.NoError(t, err)

	c := courses.Course{
		ID:                 "course-go-101",
		Slug:               "go-101",
		Title:              "Go 101",
		ActualPriceMinor:   99900,
		DiscountPriceMinor: 49900,
		Currency:           "INR",
		Duration:           "6h",
		Language:           "English",
		Category:           "programming",
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	require.NoError(t, courses.NewGormRepo(db).Create(ctx, &c))

	gw := &fakeGateway{nextID: "order_abc123"}
	clock := testutil.NewClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	ledger := NewLedger(LedgerDeps{
		DB:       db,
		Gateway:  gw,
		Users:    users.NewRepo(db),
		Courses:  courses.NewGormRepo(db),
		Currency: "INR",
	})
	ledger.SetClock(clock.Now)

	verifier, err := NewVerifier(testKeySecret, testWebhookSecret)
	require.NoError(t, err)

	grants := entitlements.NewService(db)
	rec := &events.Recorder{}
	deps := ReconcilerDeps{
		DB:        db,
		Ledger:    ledger,
		Granter:   grants,
		Verifier:  verifier,
		Publisher: rec,
	}
	for _, o := range opts {
		o(&deps)
	}

	return &fixture{
		db:     db,
		gw:     gw,
		ledger: ledger,
		rec:    NewReconciler(deps),
		grants: grants,
		events: rec,
		clock:  clock,
		user:   u,
		course: c,
	}
}

func (f *fixture) createPending(t *testing.T) Payment {
	t.Helper()
	res, err := f.ledger.CreatePendingOrder(context.Background(), f.user.ID, f.course.ID, "card")
	require.NoError(t, err)
	return res.Payment
}

func (f *fixture) owns(t *testing.T) bool {
	t.Helper()
	ok, err := f.grants.Owns(context.Background(), f.user.ID, f.course.ID)
	require.NoError(t, err)
	return ok
}
