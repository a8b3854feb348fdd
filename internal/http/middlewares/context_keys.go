package middlewares

import (
	"github.com/gin-gonic/gin"

	"cafeblog/internal/domain/account"
)

const (
	CtxRequestID = "request_id"

	ctxPrincipalKey = "auth.principal"
)

// PrincipalFromContext returns the authenticated subject stashed by
// RequireAuth. Handlers on public routes get ok=false and treat the caller
// as anonymous.
func PrincipalFromContext(c *gin.Context) (account.Principal, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return account.Principal{}, false
	}

	p, ok := v.(account.Principal)
	return p, ok && !p.IsAnonymous()
}

func setPrincipal(c *gin.Context, p account.Principal) {
	c.Set(ctxPrincipalKey, p)
}
