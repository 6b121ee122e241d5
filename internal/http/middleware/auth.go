// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. Identity is issued by an
// external provider; this service only verifies the HMAC signature and lifts
// the claims into a domain.Actor so that handlers and services receive the
// caller explicitly instead of reading ambient auth state.
//
// Claims:
//   - sub:           user id (required)
//   - role:          "citizen" or "official" (defaults to citizen)
//   - office_id:     office scope for officials
//   - department_id: optional department scope for officials
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/janseva/go-queue-backend/internal/domain"
)

// ctxKeyActor is the Gin context key under which the decoded actor is stored.
const ctxKeyActor = "actor"

// Auth verifies the Authorization bearer token and stores the decoded actor
// in the Gin context. WebSocket clients cannot set headers from the browser,
// so an access_token query parameter is accepted as a fallback.
//
// Responses on failure are the standard JSON error shape with a 401 status.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !tok.Valid {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "unreadable token claims")
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		actor := domain.Actor{
			ID:           sub,
			Role:         claimString(claims, "role", domain.RoleCitizen),
			OfficeID:     claimString(claims, "office_id", ""),
			DepartmentID: claimString(claims, "department_id", ""),
		}
		c.Set(ctxKeyActor, actor)
		// Keep the plain user id available for logging and rate limiting.
		c.Set("userID", actor.ID)
		c.Next()
	}
}

// RequireOfficial rejects requests whose actor is not an official. Place it
// after Auth on counter and queue routes.
func RequireOfficial() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || !actor.IsOfficial() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "forbidden",
				"message":    "official role required",
			})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the decoded actor stored by Auth.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(ctxKeyActor)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

// bearerToken extracts the raw token from the Authorization header or the
// access_token query parameter.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}

// claimString reads a string claim with a default.
func claimString(claims jwt.MapClaims, key, def string) string {
	if s, ok := claims[key].(string); ok && s != "" {
		return s
	}
	return def
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
