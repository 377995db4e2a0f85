// Package session tracks who is signed in to the dashboard and decides whether
// protected views may be entered.
package session

import (
	"context"
	"fmt"
	"time"
)

// Identity is the signed-in user as reported by the identity provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is what the identity provider hands out. AccessToken and ExpiresAt
// may change on token refresh without the identity changing.
type Session struct {
	User        Identity
	AccessToken string
	ExpiresAt   time.Time
}

// State is the observable pair held by the Store.
type State struct {
	Identity *Identity `json:"user"`
	Ready    bool      `json:"ready"`
}

func (s State) Authenticated() bool { return s.Identity != nil }

// Provider is the identity provider as seen by the Store.
type Provider interface {
	// FetchCurrentSession returns the existing session, or nil when signed out.
	FetchCurrentSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers fn for sign-in, sign-out and token refresh
	// notifications. A nil session means signed out. The returned function
	// unregisters fn.
	OnSessionChange(fn func(*Session)) (unsubscribe func())
}

// ProviderLookupError wraps a failed initial session lookup.
type ProviderLookupError struct {
	Err error
}

func (e *ProviderLookupError) Error() string {
	return fmt.Sprintf("session lookup failed: %v", e.Err)
}

func (e *ProviderLookupError) Unwrap() error { return e.Err }
