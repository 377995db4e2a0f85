// Package identity adapts identity providers to session.Provider.
package identity

import (
	"context"
	"sync"

	"github.com/suPer8Hu/linkedcraft/internal/session"
)

// Memory is an in-process identity provider for development and tests.
// Notifications are delivered on the caller's goroutine.
type Memory struct {
	mu        sync.Mutex
	current   *session.Session
	lookupErr error
	listeners map[int]func(*session.Session)
	next      int
}

var _ session.Provider = (*Memory)(nil)

func NewMemory(initial *session.Session) *Memory {
	return &Memory{current: initial, listeners: make(map[int]func(*session.Session))}
}

// FailLookups makes FetchCurrentSession return err until called again with nil.
func (m *Memory) FailLookups(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupErr = err
}

func (m *Memory) FetchCurrentSession(ctx context.Context) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return cloneSession(m.current), nil
}

func (m *Memory) OnSessionChange(fn func(*session.Session)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Memory) SignIn(sess session.Session) {
	m.set(&sess)
}

func (m *Memory) SignOut() {
	m.set(nil)
}

func (m *Memory) set(sess *session.Session) {
	m.mu.Lock()
	m.current = cloneSession(sess)
	fns := make([]func(*session.Session), 0, len(m.listeners))
	for i := 0; i < m.next; i++ {
		if fn, ok := m.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(cloneSession(sess))
	}
}

func cloneSession(s *session.Session) *session.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
