package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/auth"
)

// SessionAdminKey is the session value holding the signed-in admin id.
const SessionAdminKey = "admin_id"

const principalKey = "principal"

type PrincipalLookup interface {
	Lookup(id int64) (auth.Principal, bool)
}

type TokenParser interface {
	Parse(raw string) (int64, error)
}

// RequireAdmin attaches the admin principal from the session cookie or an
// "Authorization: Bearer" token. Requests carrying neither are rejected with
// 401 before reaching the handler.
func RequireAdmin(lookup PrincipalLookup, tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := resolvePrincipal(c, lookup, tokens); ok {
			c.Set(principalKey, p)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

// Principal returns the admin attached by RequireAdmin.
func Principal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func resolvePrincipal(c *gin.Context, lookup PrincipalLookup, tokens TokenParser) (auth.Principal, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokens == nil {
			return auth.Principal{}, false
		}
		id, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			return auth.Principal{}, false
		}
		return lookup.Lookup(id)
	}

	id, ok := sessions.Default(c).Get(SessionAdminKey).(int64)
	if !ok {
		return auth.Principal{}, false
	}
	return lookup.Lookup(id)
}
