// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/domain/checkout"
	"github.com/your-org/tableorder-backend/internal/domain/menu"
	"github.com/your-org/tableorder-backend/internal/interfaces/http/handlers"
	"github.com/your-org/tableorder-backend/internal/interfaces/http/middleware"
)

// SetupRoutes wires all API v1 routes
func SetupRoutes(rg *gin.RouterGroup, menuRepo *menu.Repository, checkoutService *checkout.Service, cfg *config.Config) {
	SetupMenuRoutes(rg, menuRepo)
	SetupCartRoutes(rg, checkoutService)
	SetupCheckoutRoutes(rg, checkoutService, cfg)
}

// SetupMenuRoutes sets up menu browsing routes
func SetupMenuRoutes(rg *gin.RouterGroup, menuRepo *menu.Repository) {
	menuHandler := handlers.NewMenuHandler(menuRepo)

	menuGroup := rg.Group("/menu")
	{
		menuGroup.GET("", menuHandler.GetMenu)
		menuGroup.GET("/:id", menuHandler.GetMenuItem)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, checkoutService *checkout.Service) {
	cartHandler := handlers.NewCartHandler(checkoutService)

	cart := rg.Group("/cart")
	cart.Use(middleware.SessionID())
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

// SetupCheckoutRoutes sets up order submission routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, checkoutService *checkout.Service, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, cfg)

	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.SessionID())
	checkoutGroup.Use(middleware.OptionalCustomer(cfg))
	{
		checkoutGroup.POST("", checkoutHandler.SubmitOrder)
		checkoutGroup.DELETE("/session", checkoutHandler.EndSession)
	}
}
