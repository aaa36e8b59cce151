package middleware

import (
	"strings"

	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/gin-gonic/gin"
)

const (
	UserIDHeader  = "X-User-ID"
	UserIDContext = "user_id"
)

func abortWithError(c *gin.Context, err *appErrors.AppError) {
	payload := gin.H{
		"error":   err.Code,
		"message": err.Message,
	}
	if len(err.Details) > 0 {
		payload["details"] = err.Details
	}
	c.AbortWithStatusJSON(err.StatusCode, payload)
}

// Identity confia no id de usuario ja autenticado pelo gateway. Cabecalho
// ausente segue anonimo; cabecalho invalido e rejeitado.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if raw == "" {
			c.Next()
			return
		}

		id, err := pkg.ParseULID(raw)
		if err != nil {
			abortWithError(c, appErrors.ErrUnauthorized.WithDetails(map[string]interface{}{
				"header": UserIDHeader,
			}))
			return
		}

		c.Set(UserIDContext, id.String())
		c.Next()
	}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(UserIDContext); !exists {
			abortWithError(c, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
