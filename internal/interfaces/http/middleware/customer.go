// internal/interfaces/http/middleware/customer.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/pkg/auth"
)

// OptionalCustomer provides optional customer identification. Ordering never
// requires an account; a valid token just prefills checkout contact details.
func OptionalCustomer(cfg *config.Config) gin.HandlerFunc {
	validator := auth.NewTokenValidator(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			// Anonymous ordering is always allowed; a bad token is ignored.
			c.Next()
			return
		}

		c.Set("customer_name", claims.Name)
		c.Set("customer_email", claims.Email)
		c.Set("customer_phone", claims.Phone)

		c.Next()
	}
}

// GetCustomerFromContext extracts the identified customer, if any
func GetCustomerFromContext(c *gin.Context) (name, email, phone string, ok bool) {
	n, exists := c.Get("customer_name")
	if !exists {
		return "", "", "", false
	}
	name = n.(string)
	if e, exists := c.Get("customer_email"); exists {
		email = e.(string)
	}
	if p, exists := c.Get("customer_phone"); exists {
		phone = p.(string)
	}
	return name, email, phone, true
}
