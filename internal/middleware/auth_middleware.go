package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by JWTAuthMiddleware
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
)

// TokenParser validates bearer tokens
type TokenParser interface {
	ParseToken(tokenString string) (*services.Claims, error)
}

// JWTAuthMiddleware creates a gin middleware for JWT authentication.
func JWTAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		const bearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "code": "UNAUTHORIZED"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer ", "code": "UNAUTHORIZED"})
			return
		}

		claims, err := parser.ParseToken(strings.TrimSpace(authHeader[len(bearerSchema):]))
		if err != nil {
			slog.Warn("Token validation failed", "path", c.FullPath(), "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": services.ErrInvalidToken.Message, "code": services.ErrInvalidToken.Code})
			return
		}

		userID, _ := primitive.ObjectIDFromHex(claims.Subject)
		c.Set(ContextUserID, userID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// AdminOnly rejects authenticated users without the admin role
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != models.RoleAdmin {
			slog.Warn("Admin route denied", "path", c.FullPath(), "userId", UserID(c).Hex())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required", "code": "FORBIDDEN"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID, or the zero ID on public routes
func UserID(c *gin.Context) primitive.ObjectID {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return primitive.NilObjectID
	}
	id, _ := v.(primitive.ObjectID)
	return id
}
