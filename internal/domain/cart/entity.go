// internal/domain/cart/entity.go
package cart

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/your-org/tableorder-backend/internal/domain/menu"
)

// Line is one distinct purchasable configuration (item + option set) with a
// quantity. UnitPrice is fixed at the merge that set the line's price basis;
// it is never recomputed from a mutated catalog afterwards.
type Line struct {
	ItemID    uint                  `json:"item_id"`
	Name      string                `json:"name"`
	UnitPrice int64                 `json:"unit_price"` // In cents
	Quantity  int                   `json:"quantity"`
	Options   []menu.SelectedOption `json:"options,omitempty"`
	AddedAt   time.Time             `json:"added_at"`
}

// Subtotal returns UnitPrice * Quantity
func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Matches reports whether the line has the given identity: same item and the
// option sets are equal as unordered collections of (name, value) pairs. An
// empty option set only matches a line that itself has no options.
func (l Line) Matches(itemID uint, options []menu.SelectedOption) bool {
	return l.ItemID == itemID && selectionKey(l.Options) == selectionKey(options)
}

// selectionKey builds an order-insensitive digest of an option set.
func selectionKey(options []menu.SelectedOption) string {
	if len(options) == 0 {
		return ""
	}
	pairs := make([]string, len(options))
	for i, opt := range options {
		pairs[i] = opt.Name + "\x00" + opt.Value
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x01")
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int   `json:"item_count"`     // Number of distinct lines
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	SubTotal      int64 `json:"sub_total"`      // Total before tax
}

// Mirror is the durable write-through copy of a session's cart. The in-memory
// store is the source of truth; the mirror is only ever read once, at load.
type Mirror interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
	Purge(ctx context.Context) error
}
