package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/answerlens/internal/apperrors"
)

// SharedSecretConfig configures the shared-secret authentication middleware.
type SharedSecretConfig struct {
	// Header is the request header carrying the secret.
	Header string
	// Secret is the expected value. An empty secret rejects every request.
	Secret string
}

// SharedSecret returns a Gin middleware that requires the configured header
// to equal the shared secret. On mismatch or absence it responds 401 with no
// body. The comparison is constant-time.
func SharedSecret(cfg SharedSecretConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(cfg.Header)
		if cfg.Secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(cfg.Secret)) != 1 {
			c.AbortWithStatus(apperrors.Unauthorized().HTTPStatus)
			return
		}
		c.Next()
	}
}
