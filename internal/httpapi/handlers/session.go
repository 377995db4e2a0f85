package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/linkedcraft/internal/common"
	"github.com/suPer8Hu/linkedcraft/internal/httpapi/middleware"
	"github.com/suPer8Hu/linkedcraft/internal/profile"
	"github.com/suPer8Hu/linkedcraft/internal/session"
)

type sessionView struct {
	Ready         bool              `json:"ready"`
	Authenticated bool              `json:"authenticated"`
	User          *session.Identity `json:"user"`
}

func viewOf(st session.State) sessionView {
	return sessionView{Ready: st.Ready, Authenticated: st.Authenticated(), User: st.Identity}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// SignInEntry is where the gate sends signed-out users. Signing in happens
// with the identity provider; the UI polls /session or listens to
// /session/events to learn about it.
func (h *Handler) SignInEntry(c *gin.Context) {
	common.OK(c, gin.H{
		"sign_in": true,
		"session": viewOf(h.Store.State()),
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	common.OK(c, viewOf(h.Store.State()))
}

// SessionEvents streams the session state, starting with the current one.
// Only the latest state is kept for a slow client.
func (h *Handler) SessionEvents(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		common.Fail(c, http.StatusInternalServerError, 50001, "streaming not supported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	latest := make(chan session.State, 1)
	push := func(st session.State) {
		for {
			select {
			case latest <- st:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	}
	cancel := h.Store.Observe(push)
	defer cancel()
	// an observer delivery is never older than this snapshot
	select {
	case latest <- h.Store.State():
	default:
	}

	writeJSON := func(event string, payload any) {
		b, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"message\":\"json marshal failed\"}\n\n")
			flusher.Flush()
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, b)
		flusher.Flush()
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case st := <-latest:
			writeJSON("session", viewOf(st))
		case <-ticker.C:
			writeJSON("ping", gin.H{"ts": time.Now().Unix()})
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	p, err := h.Profiles.GetProfile(c.Request.Context(), id.ID)
	if err != nil {
		// fall back to identity-only display
		if !errors.Is(err, profile.ErrNotFound) {
			log.Printf("[profile] lookup failed user_id=%s err=%v", id.ID, err)
		}
		p = nil
	}
	common.OK(c, profile.BuildView(id, p))
}
