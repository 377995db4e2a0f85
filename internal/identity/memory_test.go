package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/suPer8Hu/linkedcraft/internal/session"
)

func TestMemory_DrivesStore(t *testing.T) {
	m := NewMemory(nil)
	store := session.NewStore(m)
	store.Subscribe()
	defer store.Close()
	store.Initialize(context.Background())

	if st := store.State(); !st.Ready || st.Identity != nil {
		t.Fatalf("expected ready and signed out, got %+v", st)
	}

	m.SignIn(session.Session{User: session.Identity{ID: "u1", Email: "u1@example.com"}})
	st := store.State()
	if st.Identity == nil || st.Identity.ID != "u1" {
		t.Fatalf("expected u1 signed in, got %+v", st)
	}

	m.SignOut()
	if st := store.State(); st.Identity != nil {
		t.Fatalf("expected signed out, got %+v", st)
	}
}

func TestMemory_LookupFailure(t *testing.T) {
	m := NewMemory(&session.Session{User: session.Identity{ID: "u1"}})
	m.FailLookups(errors.New("boom"))

	if _, err := m.FetchCurrentSession(context.Background()); err == nil {
		t.Fatalf("expected lookup error")
	}

	m.FailLookups(nil)
	sess, err := m.FetchCurrentSession(context.Background())
	if err != nil || sess == nil || sess.User.ID != "u1" {
		t.Fatalf("unexpected lookup result sess=%+v err=%v", sess, err)
	}
}

func TestMemory_Unsubscribe(t *testing.T) {
	m := NewMemory(nil)
	calls := 0
	unsub := m.OnSessionChange(func(*session.Session) { calls++ })

	m.SignIn(session.Session{User: session.Identity{ID: "u1"}})
	unsub()
	unsub()
	m.SignOut()

	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
}
