// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/domain/checkout"
	"github.com/your-org/tableorder-backend/internal/domain/order"
	"github.com/your-org/tableorder-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles order submission endpoints
type CheckoutHandler struct {
	checkout *checkout.Service
	config   *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutService,
		config:   cfg,
	}
}

// SubmitOrder handles POST /checkout
func (h *CheckoutHandler) SubmitOrder(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var req checkout.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// An identified customer prefills contact details the payload omits.
	if name, email, phone, ok := middleware.GetCustomerFromContext(c); ok {
		if req.Customer.Name == "" {
			req.Customer.Name = name
		}
		if req.Customer.Email == "" {
			req.Customer.Email = email
		}
		if req.Customer.Phone == "" {
			req.Customer.Phone = phone
		}
	}

	created, err := h.checkout.Submit(c.Request.Context(), sessionID, req)
	if err != nil {
		h.writeSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    created,
	})
}

// EndSession handles DELETE /checkout/session
func (h *CheckoutHandler) EndSession(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	h.checkout.EndSession(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Session ended",
	})
}

// writeSubmissionError maps submission failures onto HTTP statuses. Guard
// rejections are client errors; remote failures surface as bad gateway so the
// storefront can tell "fix your request" from "try again later".
func (h *CheckoutHandler) writeSubmissionError(c *gin.Context, err error) {
	var (
		rateLimited *order.RateLimitedError
		validation  *order.ValidationError
		transport   *order.TransportError
		server      *order.ServerError
	)

	switch {
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrAlreadyInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrTooSoon):
		h.tooManyRequests(c, err, h.config.Guard.MinInterval.Seconds())

	case errors.Is(err, order.ErrDuplicateContent):
		h.tooManyRequests(c, err, h.config.Guard.DuplicateWindow.Seconds())

	case errors.As(err, &rateLimited):
		h.tooManyRequests(c, err, rateLimited.RetryAfter.Seconds())

	case errors.As(err, &transport):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Order service is unreachable, please try again"})

	case errors.As(err, &server):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit order"})
	}
}

func (h *CheckoutHandler) tooManyRequests(c *gin.Context, err error, retryAfterSeconds float64) {
	seconds := int(retryAfterSeconds + 0.5)
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       err.Error(),
		"retry_after": seconds,
	})
}
