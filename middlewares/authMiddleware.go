package middlewares

import (
	"net/http"
	"strings"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-Id"

// CorrelationMiddleware tags every request with a correlation id that flows into logs and outbox rows.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := strings.TrimSpace(c.GetHeader(correlationHeader))
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header(correlationHeader, cid)
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), cid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthMiddleware resolves the bearer token into either an employee or a customer identity.
// Requests without a token pass through; route groups decide whether they need one.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || token == "" {
			abortUnauthorized(c)
			return
		}

		validate, err := utils.JwtValidate(token)
		if err != nil || !validate.Valid {
			abortUnauthorized(c)
			return
		}
		revoked, err := models.IsTokenRevoked(token)
		if err != nil {
			config.LogError(config.GetLogger(), "middlewares", "AuthMiddleware", "redis", nil, err)
		} else if revoked {
			abortUnauthorized(c)
			return
		}

		claim, _ := validate.Claims.(*utils.JwtCustomClaim)
		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		if claim.Role == models.CustomerRole {
			ctx = utils.SetCustomerIdInContext(ctx, claim.ID)
		} else {
			ctx = utils.SetEmployeeIdInContext(ctx, claim.ID)
			ctx = utils.SetEmployeeRoleInContext(ctx, claim.Role)
			ctx = utils.SetEmployeeEmailInContext(ctx, claim.Email)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRoles admits employees holding one of roles. Admin is always admitted.
func RequireRoles(roles ...models.EmployeeRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetEmployeeRoleFromContext(c.Request.Context())
		if !ok {
			abortUnauthorized(c)
			return
		}
		if role == string(models.EmployeeRoleAdmin) {
			c.Next()
			return
		}
		for _, r := range roles {
			if string(r) == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
	}
}

func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetCustomerIdFromContext(c.Request.Context()); !ok {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	c.Abort()
}
