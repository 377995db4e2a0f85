package generate

import (
	"context"
	"log"
	"sync"

	"github.com/suPer8Hu/linkedcraft/internal/common"
)

type State string

const (
	StateIdle      State = "idle"
	StateInFlight  State = "in_flight"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Outcome is the pipeline's outcome slot.
type Outcome struct {
	State     State  `json:"state"`
	RequestID string `json:"request_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Err       error  `json:"-"`
}

// SettleFunc observes a submission reaching Succeeded or Failed. It is not
// called for submissions discarded by Clear.
type SettleFunc func(req Request, out Outcome)

// Pipeline owns one outcome slot and allows at most one outstanding call.
// A Submit while a call is InFlight is rejected with ErrInFlight. Clear
// cancels an InFlight call and its late response is discarded.
type Pipeline struct {
	gen   Generator
	newID func() (string, error)

	mu        sync.Mutex
	outcome   Outcome
	seq       uint64
	cancel    context.CancelFunc
	settled   chan struct{}
	listeners []SettleFunc
}

func NewPipeline(gen Generator) *Pipeline {
	return &Pipeline{
		gen:     gen,
		newID:   common.NewULID,
		outcome: Outcome{State: StateIdle},
	}
}

// OnSettle registers fn for every settled submission.
func (p *Pipeline) OnSettle(fn SettleFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Submit validates req and, if no call is outstanding, starts one and returns
// the InFlight outcome. Validation failures return a *ValidationError without
// contacting the service or touching the outcome slot. The call outlives ctx's
// cancellation but keeps its values; use Clear to abandon it.
func (p *Pipeline) Submit(ctx context.Context, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return p.Outcome(), err
	}

	p.mu.Lock()
	if p.outcome.State == StateInFlight {
		out := p.outcome
		p.mu.Unlock()
		return out, ErrInFlight
	}

	id, err := p.newID()
	if err != nil {
		out := p.outcome
		p.mu.Unlock()
		return out, err
	}

	p.seq++
	seq := p.seq
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	p.cancel = cancel
	p.settled = done
	p.outcome = Outcome{State: StateInFlight, RequestID: id}
	out := p.outcome
	p.mu.Unlock()

	go p.run(callCtx, seq, req, done)
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, seq uint64, req Request, done chan struct{}) {
	content, err := p.gen.Generate(ctx, req)

	p.mu.Lock()
	if p.seq != seq || p.outcome.State != StateInFlight {
		p.mu.Unlock()
		log.Printf("[generate] discarded late response seq=%d", seq)
		return
	}

	id := p.outcome.RequestID
	if err != nil {
		p.outcome = Outcome{State: StateFailed, RequestID: id, Reason: Reason(err), Err: err}
		log.Printf("[generate] failed request_id=%s err=%v", id, err)
	} else {
		p.outcome = Outcome{State: StateSucceeded, RequestID: id, Content: content}
	}
	p.cancel()
	p.cancel = nil
	close(done)
	out := p.outcome
	listeners := append([]SettleFunc(nil), p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(req, out)
	}
}

// Clear resets the slot to Idle from any state.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.outcome.State == StateInFlight {
		p.seq++
		p.cancel()
		p.cancel = nil
		close(p.settled)
	}
	p.outcome = Outcome{State: StateIdle}
}

// Outcome returns the current slot.
func (p *Pipeline) Outcome() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome
}

// Wait blocks while InFlight and returns the outcome once the call settles,
// is cleared, or ctx is done.
func (p *Pipeline) Wait(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	if p.outcome.State != StateInFlight {
		out := p.outcome
		p.mu.Unlock()
		return out, nil
	}
	done := p.settled
	p.mu.Unlock()

	select {
	case <-done:
		return p.Outcome(), nil
	case <-ctx.Done():
		return p.Outcome(), ctx.Err()
	}
}

// Content returns generated content for the copy sink.
func (p *Pipeline) Content() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.outcome.State != StateSucceeded {
		return "", false
	}
	return p.outcome.Content, true
}
