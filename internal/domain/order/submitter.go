// internal/domain/order/submitter.go
package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/your-org/tableorder-backend/internal/domain/cart"
)

// SubmitContext is the read-only snapshot consumed at submission build time:
// store identity, fulfillment choices and the tax context. The submitter does
// not fetch or cache any of it.
type SubmitContext struct {
	RestaurantID  string
	BranchID      string
	TableID       *string
	OrderType     OrderType
	PaymentMethod string
	Customer      CustomerInfo
	Notes         string
	Tax           TaxContext
}

// Submitter builds the wire-format order payload from cart lines and sends
// it to the remote order service.
type Submitter struct {
	service Service
}

// NewSubmitter creates an order submitter backed by the given remote service.
func NewSubmitter(service Service) *Submitter {
	return &Submitter{service: service}
}

// BuildDraft maps cart lines to the flat wire shape and validates every line
// locally. Any violation aborts the whole submission with a ValidationError
// naming the offending line; there is no partial submission.
func (s *Submitter) BuildDraft(lines []cart.Line, sctx SubmitContext) (*Draft, error) {
	items := make([]DraftLine, 0, len(lines))
	var subtotal int64

	for _, line := range lines {
		desc := line.Name
		if desc == "" {
			desc = fmt.Sprintf("item %d", line.ItemID)
		}
		if line.ItemID == 0 {
			return nil, &ValidationError{Line: desc, Reason: "missing menu item id"}
		}
		if line.Quantity <= 0 {
			return nil, &ValidationError{Line: desc, Reason: fmt.Sprintf("quantity must be positive, got %d", line.Quantity)}
		}
		if line.UnitPrice < 0 {
			return nil, &ValidationError{Line: desc, Reason: fmt.Sprintf("price cannot be negative, got %d", line.UnitPrice)}
		}

		items = append(items, DraftLine{
			MenuItemID: line.ItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			Price:      line.UnitPrice,
			Notes:      optionNotes(line),
			Subtotal:   line.Subtotal(),
		})
		subtotal += line.Subtotal()
	}

	taxAmount := int64(float64(subtotal) * sctx.Tax.Rate / 100)

	orderType := sctx.OrderType
	if orderType == "" {
		orderType = OrderTypeDineIn
	}

	return &Draft{
		RestaurantID:  sctx.RestaurantID,
		BranchID:      sctx.BranchID,
		TableID:       sctx.TableID,
		Items:         items,
		CustomerInfo:  sctx.Customer,
		OrderType:     orderType,
		PaymentMethod: sctx.PaymentMethod,
		Status:        StatusPending,
		Notes:         sctx.Notes,
		TaxAmount:     taxAmount,
		TaxDetails:    sctx.Tax.Details,
		Subtotal:      subtotal,
		Total:         subtotal + taxAmount,
	}, nil
}

// Submit sends the draft once. A missing response body is a failure even
// when the transport reported no error.
func (s *Submitter) Submit(ctx context.Context, draft *Draft) (*Order, error) {
	created, err := s.service.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, &TransportError{Err: fmt.Errorf("empty response from order service")}
	}
	return created, nil
}

// optionNotes renders the selection as a human-readable "category: value"
// list; raw structured data never reaches the kitchen ticket.
func optionNotes(line cart.Line) string {
	if len(line.Options) == 0 {
		return ""
	}
	parts := make([]string, 0, len(line.Options))
	for _, opt := range line.Options {
		value := opt.Value
		if value == "" {
			value = opt.Name
		}
		parts = append(parts, fmt.Sprintf("%s: %s", opt.Category, value))
	}
	return strings.Join(parts, ", ")
}
