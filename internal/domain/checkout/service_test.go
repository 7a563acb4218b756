package checkout

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/domain/cart"
	"github.com/your-org/tableorder-backend/internal/domain/menu"
	"github.com/your-org/tableorder-backend/internal/domain/order"
	"github.com/your-org/tableorder-backend/internal/pkg/clock"
)

// In-memory collaborators

type fakeCatalog struct {
	items map[uint]*menu.MenuItem
}

func (f *fakeCatalog) ItemByID(ctx context.Context, id uint) (*menu.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("menu item %d not found or inactive", id)
	}
	return item, nil
}

type memMirror struct {
	mu     sync.Mutex
	stored []cart.Line
}

func (m *memMirror) Load(ctx context.Context) ([]cart.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]cart.Line, len(m.stored))
	copy(out, m.stored)
	return out, nil
}

func (m *memMirror) Save(ctx context.Context, lines []cart.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append([]cart.Line(nil), lines...)
	return nil
}

func (m *memMirror) Purge(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

type memMirrorFactory struct {
	mu      sync.Mutex
	mirrors map[string]*memMirror
}

func (f *memMirrorFactory) CartMirror(sessionID string) cart.Mirror {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mirrors == nil {
		f.mirrors = make(map[string]*memMirror)
	}
	if _, ok := f.mirrors[sessionID]; !ok {
		f.mirrors[sessionID] = &memMirror{}
	}
	return f.mirrors[sessionID]
}

type memPrints struct {
	mu          sync.Mutex
	fingerprint string
	at          time.Time
}

func (m *memPrints) Last(ctx context.Context) (string, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fingerprint, m.at, nil
}

func (m *memPrints) Record(ctx context.Context, fp string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fingerprint, m.at = fp, at
	return nil
}

type memPrintsFactory struct {
	mu     sync.Mutex
	stores map[string]*memPrints
}

func (f *memPrintsFactory) FingerprintStore(sessionID string) order.FingerprintStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stores == nil {
		f.stores = make(map[string]*memPrints)
	}
	if _, ok := f.stores[sessionID]; !ok {
		f.stores[sessionID] = &memPrints{}
	}
	return f.stores[sessionID]
}

// scriptedOrderService answers CreateOrder from a queue and can block to
// simulate a slow remote call.
type scriptedOrderService struct {
	mu      sync.Mutex
	results []func() (*order.Order, error)
	block   chan struct{}
	entered chan struct{}
	calls   int
}

func (s *scriptedOrderService) CreateOrder(ctx context.Context, draft *order.Draft) (*order.Order, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return nil, &order.TransportError{Err: fmt.Errorf("no scripted result")}
	}
	next := s.results[0]
	s.results = s.results[1:]
	return next()
}

func (s *scriptedOrderService) queue(o *order.Order, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, func() (*order.Order, error) { return o, err })
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*order.Order
}

func (n *recordingNotifier) OrderCreated(o *order.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
}

type fixture struct {
	svc      *Service
	orders   *scriptedOrderService
	notifier *recordingNotifier
	mirrors  *memMirrorFactory
	clk      *clock.Manual
}

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{RestaurantID: "rest-1", BranchID: "branch-1"},
		Tax:   config.TaxConfig{Rate: 0, Name: "Tax", CountryCode: "US"},
		Guard: config.GuardConfig{
			AddDebounce:     300 * time.Millisecond,
			MinInterval:     3 * time.Second,
			AttemptBudget:   5,
			BaseCooldown:    5 * time.Second,
			MaxCooldown:     60 * time.Second,
			DuplicateWindow: 10 * time.Second,
			SweepInterval:   time.Second,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	catalog := &fakeCatalog{items: map[uint]*menu.MenuItem{
		1: {ID: 1, Name: "Burger", Price: 1500, IsActive: true},
		2: {ID: 2, Name: "Fries", Price: 500, IsActive: true},
		3: {ID: 3, Name: "Shake", Price: 750, IsActive: true},
	}}

	f := &fixture{
		orders:   &scriptedOrderService{},
		notifier: &recordingNotifier{},
		mirrors:  &memMirrorFactory{},
		clk:      clock.NewManual(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.svc = NewService(testConfig(), catalog, f.mirrors, &memPrintsFactory{}, f.orders, f.notifier, f.clk, log)
	return f
}

// fillCart adds items 1..3 (qty 1 each): 1500 + 500 + 750 = 2750 cents.
func (f *fixture) fillCart(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []uint{1, 2, 3} {
		_, err := f.svc.AddItem(ctx, sessionID, id, 1, nil)
		require.NoError(t, err)
		f.clk.Advance(time.Second)
	}
}

func TestAddItemAndTotals(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")

	view, err := f.svc.Cart(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Totals.ItemCount)
	assert.Equal(t, int64(2750), view.Totals.SubTotal)
	assert.Equal(t, int64(2750), view.Totals.TotalAmount)
}

func TestSubmitSuccessClearsCartAndResetsGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Three lines totaling $42.50.
	f.svc.AddItem(ctx, "s1", 1, 2, nil) // 3000
	f.clk.Advance(time.Second)
	f.svc.AddItem(ctx, "s1", 2, 1, nil) // 500
	f.clk.Advance(time.Second)
	f.svc.AddItem(ctx, "s1", 3, 1, nil) // 750
	f.clk.Advance(time.Second)

	f.orders.queue(&order.Order{ID: "o-1", Status: order.StatusPending, Total: 4250}, nil)

	created, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "o-1", created.ID)

	view, err := f.svc.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, f.mirrors.mirrors["s1"].stored)

	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, "o-1", f.notifier.orders[0].ID)

	// Guard amnesty: the full attempt budget is available again.
	f.clk.Advance(3 * time.Second)
	for i := 0; i < 5; i++ {
		f.svc.AddItem(ctx, "s1", 1, 1, nil)
		f.clk.Advance(time.Second)
		f.svc.AddItem(ctx, "s1", 2, i+1, nil) // Vary content per attempt
		f.clk.Advance(time.Second)
		f.orders.queue(nil, &order.ServerError{StatusCode: 500, Message: "boom"})
		_, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
		var serr *order.ServerError
		require.ErrorAs(t, err, &serr, "attempt %d should reach the remote service", i+1)
		f.clk.Advance(3 * time.Second)
	}
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.orders.queue(nil, &order.ServerError{StatusCode: 500, Message: "kitchen on fire"})

	_, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	var serr *order.ServerError
	require.ErrorAs(t, err, &serr)

	view, err := f.svc.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
	assert.Empty(t, f.notifier.orders)
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), "s1", SubmitRequest{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestSubmitSingleFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.orders.block = make(chan struct{})
	f.orders.entered = make(chan struct{}, 1)
	f.orders.queue(&order.Order{ID: "o-1"}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
		done <- err
	}()

	// Wait until the first attempt is admitted and on the wire.
	<-f.orders.entered

	_, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, order.ErrAlreadyInFlight)

	// The rejected attempt left the cart unchanged.
	view, err := f.svc.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)

	close(f.orders.block)
	require.NoError(t, <-done)
}

func TestSubmitDuplicateContentSuppression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.orders.queue(nil, &order.ServerError{StatusCode: 500, Message: "boom"})
	_, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	var serr *order.ServerError
	require.ErrorAs(t, err, &serr)

	// Unmodified cart resubmitted within the window is suppressed locally.
	f.clk.Advance(4 * time.Second)
	_, err = f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, order.ErrDuplicateContent)

	// After the record ages out, the same cart is admitted again.
	f.clk.Advance(11 * time.Second)
	f.orders.queue(&order.Order{ID: "o-2"}, nil)
	created, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "o-2", created.ID)
}

func TestSubmitValidationDoesNotConsumeAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Seed a persisted cart with a corrupt line so validation fails locally.
	mirror := f.mirrors.CartMirror("s1").(*memMirror)
	mirror.stored = []cart.Line{{ItemID: 0, Name: "Corrupt", UnitPrice: 100, Quantity: 1}}

	_, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	var verr *order.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, f.orders.calls, "validation aborts before any network call")
}

func TestEndSessionResetsGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "s1")

	f.orders.block = make(chan struct{})
	f.orders.entered = make(chan struct{}, 1)
	f.orders.queue(nil, &order.TransportError{Err: fmt.Errorf("gone")})

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	}()

	<-f.orders.entered
	_, err := f.svc.Submit(ctx, "s1", SubmitRequest{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, order.ErrAlreadyInFlight)

	// Navigate-away: the guard resets, but the persisted cart survives.
	f.svc.EndSession("s1")
	assert.NotEmpty(t, f.mirrors.mirrors["s1"].stored)

	close(f.orders.block)
	<-done

	view, err := f.svc.Cart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
}
