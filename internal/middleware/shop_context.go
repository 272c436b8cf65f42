package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/internal/service"
	appErrors "github.com/qrshelf/qrshelf-api/pkg/errors"
	"github.com/qrshelf/qrshelf-api/pkg/response"
)

// Context keys populated by ShopContext.
const (
	ContextShopKey = "currentShop"
	ContextRoleKey = "currentRole"
)

// ShopContext resolves the :slug route parameter into a shop and the
// caller's role in it. Requests from non-members are rejected before any
// handler runs. Must sit behind JWT.
func ShopContext(shopService *service.ShopService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		shop, err := shopService.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		role, err := shopService.Role(c.Request.Context(), claims.UserID, shop.ID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextShopKey, shop)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}
