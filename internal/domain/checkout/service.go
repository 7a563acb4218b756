// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/domain/cart"
	"github.com/your-org/tableorder-backend/internal/domain/menu"
	"github.com/your-org/tableorder-backend/internal/domain/order"
	"github.com/your-org/tableorder-backend/internal/pkg/clock"
)

// Catalog is the read-only menu lookup the engine consumes
type Catalog interface {
	ItemByID(ctx context.Context, id uint) (*menu.MenuItem, error)
}

// MirrorFactory creates the durable cart mirror for a session
type MirrorFactory interface {
	CartMirror(sessionID string) cart.Mirror
}

// FingerprintFactory creates the fingerprint store for a session
type FingerprintFactory interface {
	FingerprintStore(sessionID string) order.FingerprintStore
}

// Notifier receives successfully created orders for downstream tracking.
// Calls are fire-and-forget; failures never affect the submission result.
type Notifier interface {
	OrderCreated(o *order.Order)
}

// Service is the cart/checkout façade exposed to the HTTP layer. Each session
// (one per storefront tab) owns its own cart store and submission guard; the
// service routes operations to the right session and wires submission
// success back into the cart.
type Service struct {
	cfg       *config.Config
	catalog   Catalog
	mirrors   MirrorFactory
	prints    FingerprintFactory
	submitter *order.Submitter
	notifier  Notifier
	clock     clock.Clock
	log       *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	cart  *cart.Store
	guard *order.Guard
}

// NewService creates the checkout service
func NewService(cfg *config.Config, catalog Catalog, mirrors MirrorFactory, prints FingerprintFactory, orderSvc order.Service, notifier Notifier, clk clock.Clock, log *logrus.Logger) *Service {
	return &Service{
		cfg:       cfg,
		catalog:   catalog,
		mirrors:   mirrors,
		prints:    prints,
		submitter: order.NewSubmitter(orderSvc),
		notifier:  notifier,
		clock:     clk,
		log:       log,
		sessions:  make(map[string]*session),
	}
}

// SubmitRequest carries the fulfillment choices for one checkout attempt
type SubmitRequest struct {
	OrderType     order.OrderType    `json:"order_type"`
	PaymentMethod string             `json:"payment_method"`
	TableID       *string            `json:"table_id,omitempty"`
	Customer      order.CustomerInfo `json:"customer_info"`
	Notes         string             `json:"notes,omitempty"`
}

// View is the cart representation returned to the HTTP layer
type View struct {
	SessionID string      `json:"session_id"`
	Items     []cart.Line `json:"items"`
	Totals    ViewTotals  `json:"totals"`
}

// ViewTotals extends the cart totals with the tax snapshot applied for display
type ViewTotals struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	SubTotal      int64 `json:"sub_total"`
	TaxAmount     int64 `json:"tax_amount"`
	TotalAmount   int64 `json:"total_amount"`
}

// Cart returns the current cart for a session
func (s *Service) Cart(ctx context.Context, sessionID string) (*View, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sessionID, sess), nil
}

// AddItem resolves the item, prices the selection and merges it into the
// session's cart.
func (s *Service) AddItem(ctx context.Context, sessionID string, itemID uint, quantity int, options []menu.SelectedOption) (*View, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, err := s.catalog.ItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	added, err := sess.cart.AddLine(ctx, item, quantity, options)
	if err != nil {
		return nil, err
	}
	if !added {
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"item_id":    itemID,
		}).Debug("Duplicate add dropped by debounce")
	}
	return s.view(sessionID, sess), nil
}

// UpdateItem changes the quantity of an identity-matched line
func (s *Service) UpdateItem(ctx context.Context, sessionID string, itemID uint, quantity int, options []menu.SelectedOption) (*View, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.cart.UpdateQuantity(ctx, itemID, quantity, options); err != nil {
		return nil, err
	}
	return s.view(sessionID, sess), nil
}

// RemoveItem removes an identity-matched line
func (s *Service) RemoveItem(ctx context.Context, sessionID string, itemID uint, options []menu.SelectedOption) (*View, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.cart.RemoveLine(ctx, itemID, options); err != nil {
		return nil, err
	}
	return s.view(sessionID, sess), nil
}

// ClearCart empties the session's cart and purges its mirror
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	return sess.cart.Clear(ctx)
}

// Submit runs one guarded submission attempt: build and validate the draft,
// ask the guard for admission, send the order, and on success clear the cart
// and reset the guard. The draft is snapshotted before the remote call, so
// concurrent cart edits only affect the next attempt.
func (s *Service) Submit(ctx context.Context, sessionID string, req SubmitRequest) (*order.Order, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	lines := sess.cart.Lines()

	draft, err := s.submitter.BuildDraft(lines, s.submitContext(req))
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	fingerprint := order.Fingerprint(draft)
	if err := sess.guard.Admit(ctx, len(lines), fingerprint); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"lines":      len(lines),
		"total":      draft.Total,
	})
	log.Info("Order submission admitted")

	created, err := s.submitter.Submit(ctx, draft)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err != nil {
		sess.guard.Fail()
		log.WithError(err).Warn("Order submission failed")
		return nil, err
	}

	sess.guard.Succeed()
	if clearErr := sess.cart.Clear(ctx); clearErr != nil {
		// The order is already placed; a mirror purge failure must not
		// turn success into failure.
		log.WithError(clearErr).Error("Failed to clear cart after order creation")
	}
	log.WithField("order_id", created.ID).Info("Order created")

	if s.notifier != nil {
		s.notifier.OrderCreated(created)
	}
	return created, nil
}

// EndSession drops a session's in-memory state: the guard's in-flight flag
// and any sensitive order context. An already-sent network request is not
// aborted. The persisted cart mirror is left intact.
func (s *Service) EndSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.mu.Lock()
		sess.guard.Reset()
		sess.mu.Unlock()
		delete(s.sessions, sessionID)
	}
}

// StartSweeper runs the recurring cooldown sweep until ctx is cancelled. An
// expired cooldown is cleared and its attempt counter reset without waiting
// for the next submission attempt.
func (s *Service) StartSweeper(ctx context.Context) {
	interval := s.cfg.Guard.SweepInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Service) sweep() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		sess.guard.Sweep()
		sess.mu.Unlock()
	}
}

// session returns the per-session state, creating and loading it on first use
func (s *Service) session(ctx context.Context, sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{
			cart:  cart.NewStore(s.mirrors.CartMirror(sessionID), s.clock, s.cfg.Guard.AddDebounce),
			guard: order.NewGuard(s.prints.FingerprintStore(sessionID), s.clock, s.cfg.Guard),
		}
		s.sessions[sessionID] = sess
	}
	s.mu.Unlock()

	if err := sess.cart.Load(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) submitContext(req SubmitRequest) order.SubmitContext {
	return order.SubmitContext{
		RestaurantID:  s.cfg.Store.RestaurantID,
		BranchID:      s.cfg.Store.BranchID,
		TableID:       req.TableID,
		OrderType:     req.OrderType,
		PaymentMethod: req.PaymentMethod,
		Customer:      req.Customer,
		Notes:         req.Notes,
		Tax: order.TaxContext{
			Rate: s.cfg.Tax.Rate,
			Details: order.TaxDetails{
				TaxName:     s.cfg.Tax.Name,
				Percentage:  s.cfg.Tax.Rate,
				CountryCode: s.cfg.Tax.CountryCode,
				IsCompound:  s.cfg.Tax.IsCompound,
			},
		},
	}
}

func (s *Service) view(sessionID string, sess *session) *View {
	totals := sess.cart.Totals()
	taxAmount := int64(float64(totals.SubTotal) * s.cfg.Tax.Rate / 100)
	return &View{
		SessionID: sessionID,
		Items:     sess.cart.Lines(),
		Totals: ViewTotals{
			ItemCount:     totals.ItemCount,
			TotalQuantity: totals.TotalQuantity,
			SubTotal:      totals.SubTotal,
			TaxAmount:     taxAmount,
			TotalAmount:   totals.SubTotal + taxAmount,
		},
	}
}
