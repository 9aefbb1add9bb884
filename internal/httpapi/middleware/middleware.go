package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chatforge/chatforge/internal/common"
	"github.com/chatforge/chatforge/internal/store/redisstore"
)

const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	AdminKey     = "admin_subject"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			generated, err := common.NewULID()
			if err == nil {
				id = generated
			}
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v\n%s", r, debug.Stack())
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Identity reads an optional JWT from the Authorization header and
// stashes the caller's id/email claims. Chat endpoints are public;
// identity only enriches webhook payloads, so a missing or invalid
// token is not an error.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if secret == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.Next()
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if v, ok := claims["user_id"].(string); ok {
				c.Set(UserIDKey, v)
			}
			if v, ok := claims["email"].(string); ok {
				c.Set(UserEmailKey, v)
			}
		}
		c.Next()
	}
}

// AdminRequired gates management endpoints on a redis-backed session
// token minted by the login endpoint.
func AdminRequired(sessions *redisstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Admin-Token")
		if token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			common.Fail(c, http.StatusUnauthorized, 40100, "missing admin token")
			c.Abort()
			return
		}
		subject, err := sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			common.Fail(c, http.StatusInternalServerError, 50002, "session lookup failed")
			c.Abort()
			return
		}
		if subject == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(AdminKey, subject)
		c.Next()
	}
}
