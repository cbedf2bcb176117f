package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"ctchen222/tictactoe-history/internal/session"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const sessionIDKey = "ttt_session_id"

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	Secure     bool
}

// Session resolves the session id from the signed cookie. A missing, forged
// or expired cookie starts a new session. The cookie is reissued on every
// request so it expires together with the stored game.
func Session(tokens *session.Tokens, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var id string
		if raw, err := c.Cookie(opts.CookieName); err == nil {
			id, err = tokens.Parse(raw)
			if err != nil {
				slog.DebugContext(ctx, "discarding session cookie", "error", err)
			}
		}
		if id == "" {
			id = session.NewID()
			slog.InfoContext(ctx, "new session", "session.id", id)
		}

		token, expires, err := tokens.Issue(id)
		if err != nil {
			slog.ErrorContext(ctx, "failed to issue session token", "session.id", id, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, token, int(time.Until(expires).Seconds()), "/", "", opts.Secure, true)

		trace.SpanFromContext(ctx).SetAttributes(attribute.String("session.id", id))
		SetSessionID(c, id)
		c.Next()
	}
}

// SetSessionID stores the session id in the gin context.
func SetSessionID(c *gin.Context, id string) {
	c.Set(sessionIDKey, id)
}

// GetSessionID returns the session id set by Session, or "".
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
