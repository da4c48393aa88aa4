package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/saas-webapp/web/internal/model"
)

const sessionKey = "session"

type sessionLoader interface {
	Get(ctx context.Context, key string) (*model.Session, error)
}

type cookieDecoder interface {
	Decode(value string) (string, error)
}

// SessionMiddleware resolves the session cookie into a per-request session.
// Requests without a valid session pass through; handlers decide whether one is required.
func SessionMiddleware(cookieName string, codec cookieDecoder, sessions sessionLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(cookieName)
		if err != nil || value == "" {
			c.Next()
			return
		}

		key, err := codec.Decode(value)
		if err != nil {
			c.Next()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), key)
		if err == nil && sess != nil {
			c.Set(sessionKey, sess)
		}
		c.Next()
	}
}

func GetSession(c *gin.Context) *model.Session {
	if value, ok := c.Get(sessionKey); ok {
		if sess, ok := value.(*model.Session); ok {
			return sess
		}
	}
	return nil
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
