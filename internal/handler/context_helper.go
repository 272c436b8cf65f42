package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qrshelf/qrshelf-api/internal/middleware"
	"github.com/qrshelf/qrshelf-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func shopFromContext(c *gin.Context) *models.Shop {
	value, exists := c.Get(middleware.ContextShopKey)
	if !exists {
		return nil
	}
	shop, ok := value.(*models.Shop)
	if !ok {
		return nil
	}
	return shop
}

func roleFromContext(c *gin.Context) models.ShopRole {
	value, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return ""
	}
	role, ok := value.(models.ShopRole)
	if !ok {
		return ""
	}
	return role
}
