package handler

import (
	"github.com/gin-gonic/gin"

	internalmiddleware "github.com/noah-isme/study-planner/internal/middleware"
	"github.com/noah-isme/study-planner/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return internalmiddleware.ClaimsFromContext(c)
}
