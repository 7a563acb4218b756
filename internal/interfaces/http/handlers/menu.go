// internal/interfaces/http/handlers/menu.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/tableorder-backend/internal/domain/menu"
)

// MenuHandler handles menu endpoints
type MenuHandler struct {
	repo *menu.Repository
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(repo *menu.Repository) *MenuHandler {
	return &MenuHandler{repo: repo}
}

// GetMenu handles GET /menu
func (h *MenuHandler) GetMenu(c *gin.Context) {
	category := c.Query("category")

	items, err := h.repo.List(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve menu",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu retrieved successfully",
		"data":    items,
	})
}

// GetMenuItem handles GET /menu/:id
func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	idParam := c.Param("id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid menu item ID",
		})
		return
	}

	item, err := h.repo.ItemByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu item retrieved successfully",
		"data":    item,
	})
}
