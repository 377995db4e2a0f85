package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/linkedcraft/internal/common"
	"github.com/suPer8Hu/linkedcraft/internal/session"
)

const IdentityKey = "identity"

// StateReader is the read side of the session store.
type StateReader interface {
	State() session.State
}

// RequireSession guards protected routes. While the session is not known yet
// the client is asked to retry; signed-out clients are sent to signInPath.
func RequireSession(store StateReader, signInPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := store.State()
		switch session.Decide(st) {
		case session.DecisionWait:
			c.Header("Retry-After", "1")
			common.AbortFail(c, http.StatusServiceUnavailable, 50301, "session not ready")
		case session.DecisionRedirect:
			c.Redirect(http.StatusFound, signInPath)
			c.Abort()
		default:
			c.Set(IdentityKey, *st.Identity)
			c.Next()
		}
	}
}

func IdentityFromContext(c *gin.Context) (session.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return session.Identity{}, false
	}
	id, ok := v.(session.Identity)
	return id, ok
}
