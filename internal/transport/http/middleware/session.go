package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docuchat/internal/config"
	"docuchat/internal/pkg/sessiontoken"
)

const (
	ContextSessionIDKey  = "session_id"
	ContextSessionNewKey = "session_new"
)

// Session ensures every request carries a stable session id. A missing or
// invalid cookie gets a fresh signed token; the new session reports
// no_session until its first upload.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(cfg.CookieName); err == nil {
			if claims, parseErr := sessiontoken.ParseToken(cfg.Secret, raw); parseErr == nil {
				c.Set(ContextSessionIDKey, claims.SessionID)
				c.Next()
				return
			}
		}

		sid := uuid.NewString()
		token, err := sessiontoken.NewToken(cfg.Secret, sid, time.Duration(cfg.CookieMaxAge)*time.Second)
		if err == nil {
			c.SetCookie(cfg.CookieName, token, cfg.CookieMaxAge, "/", "", cfg.CookieSecure, true)
		}
		c.Set(ContextSessionIDKey, sid)
		c.Set(ContextSessionNewKey, true)
		c.Next()
	}
}

// ClearSessionCookie drops the session cookie so the next request starts a
// fresh session.
func ClearSessionCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.CookieSecure, true)
}

// SessionID returns the request's session id set by the Session middleware.
func SessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextSessionIDKey)
	if !exists {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok && sid != ""
}

// IsNewSession reports whether the session id was minted for this request.
func IsNewSession(c *gin.Context) bool {
	v, exists := c.Get(ContextSessionNewKey)
	if !exists {
		return false
	}
	isNew, ok := v.(bool)
	return ok && isNew
}
