package handlers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/suPer8Hu/linkedcraft/internal/generate"
	"github.com/suPer8Hu/linkedcraft/internal/history"
	"github.com/suPer8Hu/linkedcraft/internal/profile"
	"github.com/suPer8Hu/linkedcraft/internal/session"
)

// Archiver receives every settled generation.
type Archiver interface {
	Archive(ctx context.Context, ev history.Event) error
}

type Deps struct {
	Store      *session.Store
	Profiles   *profile.Repo
	History    *history.Repo
	Generator  generate.Generator
	Archiver   Archiver // optional
	SignInPath string
}

type Handler struct {
	Store      *session.Store
	Profiles   *profile.Repo
	History    *history.Repo
	Gen        generate.Generator
	Archiver   Archiver
	SignInPath string

	mu        sync.Mutex
	pipelines map[string]*generate.Pipeline

	stopObserve func()
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		Store:      d.Store,
		Profiles:   d.Profiles,
		History:    d.History,
		Gen:        d.Generator,
		Archiver:   d.Archiver,
		SignInPath: d.SignInPath,
		pipelines:  make(map[string]*generate.Pipeline),
	}
	h.stopObserve = d.Store.Observe(h.onSessionChange)
	return h
}

// Close stops observing the store and abandons outstanding generations.
func (h *Handler) Close() {
	h.stopObserve()
	h.onSessionChange(session.State{Ready: true})
}

// onSessionChange drops the pipelines of identities that are no longer
// signed in, so a later sign-in starts from Idle.
func (h *Handler) onSessionChange(st session.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, p := range h.pipelines {
		if st.Identity != nil && st.Identity.ID == id {
			continue
		}
		p.Clear()
		delete(h.pipelines, id)
	}
}

// pipelineFor returns userID's pipeline. It refuses once userID is no longer
// the signed-in identity, so a request racing a sign-out cannot recreate a
// pipeline that onSessionChange already dropped.
func (h *Handler) pipelineFor(userID string) (*generate.Pipeline, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.Store.State()
	if st.Identity == nil || st.Identity.ID != userID {
		return nil, false
	}
	if p, ok := h.pipelines[userID]; ok {
		return p, true
	}
	p := generate.NewPipeline(h.Gen)
	p.OnSettle(func(req generate.Request, out generate.Outcome) {
		h.archive(userID, req, out)
	})
	h.pipelines[userID] = p
	return p, true
}

func (h *Handler) archive(userID string, req generate.Request, out generate.Outcome) {
	if h.Archiver == nil {
		return
	}
	ev := history.Event{
		RequestID: out.RequestID,
		UserID:    userID,
		Topic:     req.Topic,
		State:     string(out.State),
		Content:   out.Content,
		Reason:    out.Reason,
		SettledAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Archiver.Archive(ctx, ev); err != nil {
		log.Printf("[archive] failed request_id=%s user_id=%s err=%v", ev.RequestID, userID, err)
	}
}
