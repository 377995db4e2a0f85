package session

import (
	"context"
	"log"
	"sort"
	"sync"
)

// Store is the single source of truth for the signed-in identity and for
// whether the provider has answered yet. Consumers read it and observe it;
// only provider events mutate it.
//
// Ready goes false to true exactly once. The first change notification
// cancels the initial lookup, and a lookup result that still arrives after a
// notification is discarded. Among notifications the last delivered wins.
type Store struct {
	provider Provider

	// notifyMu serializes apply+notify so observers see updates in delivery order.
	notifyMu sync.Mutex

	mu           sync.RWMutex
	state        State
	accessToken  string
	notified     bool
	closed       bool
	observers    map[uint64]func(State)
	nextObserver uint64
	cancelLookup context.CancelFunc
	unsubscribe  func()

	ready         chan struct{}
	startOnce     sync.Once
	subscribeOnce sync.Once
	closeOnce     sync.Once
}

func NewStore(p Provider) *Store {
	return &Store{
		provider:  p,
		observers: make(map[uint64]func(State)),
		ready:     make(chan struct{}),
	}
}

// Start subscribes to provider changes and then launches the initial lookup.
// Subscribing first means no notification can slip between the two.
// Calling Start more than once has no effect.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		lookupCtx, cancel := context.WithCancel(ctx)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			cancel()
			return
		}
		s.cancelLookup = cancel
		s.mu.Unlock()

		s.Subscribe()
		go s.Initialize(lookupCtx)
	})
}

// Initialize performs the initial session lookup. A lookup failure is logged
// and treated as signed out; readiness never hangs on it.
func (s *Store) Initialize(ctx context.Context) {
	sess, err := s.provider.FetchCurrentSession(ctx)
	if err != nil {
		if s.superseded() {
			return
		}
		log.Printf("[session] initial lookup failed err=%v", &ProviderLookupError{Err: err})
		sess = nil
	}
	s.apply(sess, false)
}

// Subscribe registers the store with the provider's change stream and returns
// the disposer. After the first call, Subscribe returns the existing disposer.
// Close invokes it; callers normally use Close instead.
func (s *Store) Subscribe() (dispose func()) {
	s.subscribeOnce.Do(func() {
		unsub := s.provider.OnSessionChange(func(sess *Session) {
			s.apply(sess, true)
		})

		s.mu.Lock()
		if s.closed {
			// Closed while subscribing.
			s.mu.Unlock()
			unsub()
			return
		}
		s.unsubscribe = unsub
		s.mu.Unlock()
	})
	return s.Close
}

// Close releases the provider subscription and cancels a pending lookup.
// It is safe to call from any teardown path and more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		unsub := s.unsubscribe
		cancel := s.cancelLookup
		s.unsubscribe = nil
		s.observers = make(map[uint64]func(State))
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if unsub != nil {
			unsub()
		}
	})
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// AccessToken returns the current session's token. It follows token refreshes
// that do not change State.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Ready is closed once the store has its first authoritative answer.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// WaitReady blocks until the store is ready or ctx is done.
func (s *Store) WaitReady(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Observe registers fn to be called synchronously, in delivery order, each time
// the identity or readiness changes. fn must not block.
func (s *Store) Observe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) superseded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notified || s.closed
}

func (s *Store) apply(sess *Session, fromNotification bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !fromNotification && s.notified {
		s.mu.Unlock()
		log.Printf("[session] discarded initial lookup result arriving after a change notification")
		return
	}
	if fromNotification && !s.notified {
		s.notified = true
		if s.cancelLookup != nil {
			s.cancelLookup()
		}
	}

	next := State{Identity: identityOf(sess), Ready: true}
	wasReady := s.state.Ready
	changed := !sameState(s.state, next)
	s.state = next
	s.accessToken = ""
	if sess != nil {
		s.accessToken = sess.AccessToken
	}
	observers := s.sortedObservers()
	s.mu.Unlock()

	if !wasReady {
		close(s.ready)
	}
	if !changed {
		return
	}
	for _, fn := range observers {
		fn(copyState(next))
	}
}

// sortedObservers must be called with mu held.
func (s *Store) sortedObservers() []func(State) {
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]func(State), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.observers[id])
	}
	return out
}

func identityOf(sess *Session) *Identity {
	if sess == nil || sess.User.ID == "" {
		return nil
	}
	id := sess.User
	return &id
}

func copyState(st State) State {
	if st.Identity != nil {
		id := *st.Identity
		st.Identity = &id
	}
	return st
}

func sameState(a, b State) bool {
	if a.Ready != b.Ready {
		return false
	}
	if (a.Identity == nil) != (b.Identity == nil) {
		return false
	}
	return a.Identity == nil || *a.Identity == *b.Identity
}
