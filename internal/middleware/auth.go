package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamflow/teamflow-api/internal/services"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"

	// SessionCookieName carries the locally-issued session credential for
	// clients that cannot hold a bearer token.
	SessionCookieName = "teamflow_session"
)

// IdentityResolver is the credential side of IdentityService.
type IdentityResolver interface {
	ResolveBearer(token string) (*services.Identity, error)
	ResolveSession(ctx context.Context, token string) (*services.Identity, error)
}

// Auth resolves the caller from a bearer token or, failing that, the session
// cookie. When the resolver repairs a stale session it hands back a corrected
// token; the middleware re-sets the cookie so the repair happens once.
func Auth(resolver IdentityResolver) drift.HandlerFunc {
	return func(c *drift.Context) {
		identity, err := resolve(c, resolver)
		if err != nil {
			c.Unauthorized("invalid or missing credentials")
			return
		}

		if identity.ReissuedSession != "" {
			cookie := &http.Cookie{
				Name:     SessionCookieName,
				Value:    identity.ReissuedSession,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			}
			c.Header("Set-Cookie", cookie.String())
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(UserEmailKey, identity.Email)

		c.Next()
	}
}

func resolve(c *drift.Context, resolver IdentityResolver) (*services.Identity, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return nil, services.ErrUnauthenticated
		}
		return resolver.ResolveBearer(parts[1])
	}

	cookie, err := c.Request.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, services.ErrUnauthenticated
	}
	return resolver.ResolveSession(c.Request.Context(), cookie.Value)
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
