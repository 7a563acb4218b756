// internal/domain/order/fingerprint.go
package order

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fingerprint computes a deterministic digest over the content of a draft:
// restaurant/branch/table identity, the sorted line tuples, the customer
// phone and the subtotal. Equal carts produce equal fingerprints regardless
// of line order.
func Fingerprint(d *Draft) string {
	lines := make([]string, len(d.Items))
	for i, item := range d.Items {
		lines[i] = fmt.Sprintf("%d:%d:%d", item.MenuItemID, item.Quantity, item.Price)
	}
	sort.Strings(lines)

	tableID := ""
	if d.TableID != nil {
		tableID = *d.TableID
	}

	payload := strings.Join([]string{
		d.RestaurantID,
		d.BranchID,
		tableID,
		strings.Join(lines, ","),
		d.CustomerInfo.Phone,
		fmt.Sprintf("%d", d.Subtotal),
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FingerprintStore holds the most recent submission fingerprint for one
// session. Records are never deleted, only superseded; staleness is decided
// by timestamp comparison in the guard.
type FingerprintStore interface {
	// Last returns the most recently recorded fingerprint and its timestamp.
	// A zero fingerprint means nothing has been recorded yet.
	Last(ctx context.Context) (string, time.Time, error)
	Record(ctx context.Context, fingerprint string, at time.Time) error
}
