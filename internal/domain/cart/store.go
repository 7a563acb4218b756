// internal/domain/cart/store.go
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/your-org/tableorder-backend/internal/domain/menu"
	"github.com/your-org/tableorder-backend/internal/domain/pricing"
	"github.com/your-org/tableorder-backend/internal/pkg/clock"
)

// DefaultAddDebounce drops a repeated add of the same item arriving within
// this window, guarding against duplicate UI events.
const DefaultAddDebounce = 300 * time.Millisecond

// Store owns one session's cart lines and mirrors every mutation to durable
// storage once the initial load has completed.
type Store struct {
	mu       sync.Mutex
	mirror   Mirror
	clock    clock.Clock
	debounce time.Duration

	lines []Line
	// loaded gates write-through: an empty in-memory cart during the load
	// window must never be written back as a user-initiated clear.
	loaded  bool
	lastAdd map[uint]time.Time
}

// NewStore creates a cart store backed by the given mirror.
func NewStore(mirror Mirror, clk clock.Clock, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = DefaultAddDebounce
	}
	return &Store{
		mirror:   mirror,
		clock:    clk,
		debounce: debounce,
		lastAdd:  make(map[uint]time.Time),
	}
}

// Load reads the persisted cart once. Further calls are no-ops. Mutations made
// before Load completes stay in memory and are not written through.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	lines, err := s.mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted cart: %w", err)
	}
	if len(lines) > 0 {
		// In-memory state wins on conflict; only adopt the persisted cart
		// when nothing has been added during the load window.
		if len(s.lines) == 0 {
			s.lines = lines
		}
	}
	s.loaded = true
	return nil
}

// AddLine resolves the unit price for the selection and merges the result
// into the cart. A second add of the same item within the debounce window is
// dropped and reported via the returned bool.
func (s *Store) AddLine(ctx context.Context, item *menu.MenuItem, quantity int, options []menu.SelectedOption) (bool, error) {
	if item == nil {
		return false, fmt.Errorf("menu item is required")
	}
	if quantity < 1 {
		return false, fmt.Errorf("quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if last, ok := s.lastAdd[item.ID]; ok && now.Sub(last) < s.debounce {
		return false, nil
	}
	s.lastAdd[item.ID] = now

	unitPrice := pricing.ResolveUnitPrice(item, options)

	merged := false
	for i := range s.lines {
		if s.lines[i].Matches(item.ID, options) {
			s.lines[i].Quantity += quantity
			s.lines[i].UnitPrice = unitPrice // Price basis set at this merge
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, Line{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
			Options:   options,
			AddedAt:   now,
		})
	}

	return true, s.persist(ctx)
}

// RemoveLine removes the line matching the identity rule.
func (s *Store) RemoveLine(ctx context.Context, itemID uint, options []menu.SelectedOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Matches(itemID, options) {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persist(ctx)
		}
	}
	return fmt.Errorf("line not found in cart")
}

// UpdateQuantity sets the quantity of the identity-matched line. Quantities
// below 1 are the caller's responsibility to reject; the store never
// auto-deletes on zero.
func (s *Store) UpdateQuantity(ctx context.Context, itemID uint, quantity int, options []menu.SelectedOption) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Matches(itemID, options) {
			s.lines[i].Quantity = quantity
			return s.persist(ctx)
		}
	}
	return fmt.Errorf("line not found in cart")
}

// Clear empties the cart and purges the persisted mirror.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if !s.loaded {
		return nil
	}
	if err := s.mirror.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge persisted cart: %w", err)
	}
	return nil
}

// Lines returns a snapshot copy of the cart lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Totals calculates the aggregate totals over the current lines.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totals Totals
	totals.ItemCount = len(s.lines)
	for _, line := range s.lines {
		totals.TotalQuantity += line.Quantity
		totals.SubTotal += line.Subtotal()
	}
	return totals
}

// persist writes the full cart through to the mirror. Callers must hold the
// lock. Writes are suppressed until Load has run.
func (s *Store) persist(ctx context.Context) error {
	if !s.loaded {
		return nil
	}
	if err := s.mirror.Save(ctx, s.lines); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
