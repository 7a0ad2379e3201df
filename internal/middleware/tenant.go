package middleware

import (
	"errors"
	"net/http"

	"github.com/dSumitabha/multi-tenant/internal/apierror"
	"github.com/dSumitabha/multi-tenant/internal/service"
	"github.com/dSumitabha/multi-tenant/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const TenantHandleKey = "tenant_handle"

// TenantResolver maps the authenticated tenant ID to a live backend handle.
// Must run after JWTAuth: the tenant ID comes from the verified claims, never
// from a client-controlled header.
func TenantResolver(m *tenant.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		h, err := m.Resolve(c.Request.Context(), tenantID)
		if err != nil {
			var notFound *service.NotFoundError
			var inactive *service.InactiveEntityError
			switch {
			case errors.As(err, &notFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("unknown tenant"))
			case errors.As(err, &inactive):
				c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("tenant is suspended"))
			default:
				log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).
					Str("tenant_id", claims.TenantID).Msg("tenant resolution failed")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New("tenant backend unavailable"))
			}
			return
		}

		c.Set(TenantHandleKey, h)
		c.Next()
	}
}

// GetTenant retrieves the resolved tenant handle from the Gin context.
func GetTenant(c *gin.Context) *tenant.Handle {
	h, _ := c.MustGet(TenantHandleKey).(*tenant.Handle)
	return h
}
