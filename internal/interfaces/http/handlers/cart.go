// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/tableorder-backend/internal/domain/checkout"
	"github.com/your-org/tableorder-backend/internal/domain/menu"
	"github.com/your-org/tableorder-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	checkout *checkout.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(checkoutService *checkout.Service) *CartHandler {
	return &CartHandler{checkout: checkoutService}
}

// AddItemRequest is the add-to-cart payload
type AddItemRequest struct {
	ItemID   uint                  `json:"item_id" binding:"required"`
	Quantity int                   `json:"quantity"`
	Options  []menu.SelectedOption `json:"options"`
}

// UpdateItemRequest is the update-quantity payload. Options identify which
// line to touch; two lines for the same item differ by their selections.
type UpdateItemRequest struct {
	Quantity int                   `json:"quantity" binding:"required"`
	Options  []menu.SelectedOption `json:"options"`
}

// RemoveItemRequest identifies the line to remove
type RemoveItemRequest struct {
	Options []menu.SelectedOption `json:"options"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	view, err := h.checkout.Cart(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    view,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.checkout.AddItem(c.Request.Context(), sessionID, req.ItemID, req.Quantity, req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    view,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	itemID, ok := h.parseItemID(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	view, err := h.checkout.UpdateItem(c.Request.Context(), sessionID, itemID, req.Quantity, req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    view,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	itemID, ok := h.parseItemID(c)
	if !ok {
		return
	}

	// The body is optional; an absent body removes the optionless line.
	var req RemoveItemRequest
	_ = c.ShouldBindJSON(&req)

	view, err := h.checkout.RemoveItem(c.Request.Context(), sessionID, itemID, req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    view,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionIDFromContext(c)

	if err := h.checkout.ClearCart(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

func (h *CartHandler) parseItemID(c *gin.Context) (uint, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid menu item ID",
		})
		return 0, false
	}
	return uint(id), true
}
