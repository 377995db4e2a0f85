package generate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator answers each call with the reply scripted for its topic. A
// reply with a non-nil gate waits for it to close first.
type stubGenerator struct {
	replies map[string]stubReply
	calls   atomic.Int32
}

type stubReply struct {
	content string
	err     error
	gate    chan struct{}
}

func (g *stubGenerator) Generate(ctx context.Context, req Request) (string, error) {
	g.calls.Add(1)
	r := g.replies[req.Topic]
	if r.gate != nil {
		<-r.gate
	}
	return r.content, r.err
}

func waitSettled(t *testing.T, p *Pipeline) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := p.Wait(ctx)
	require.NoError(t, err)
	return out
}

func TestPipeline_Success(t *testing.T) {
	gen := &stubGenerator{replies: map[string]stubReply{"AI in healthcare": {content: "Hello world"}}}
	p := NewPipeline(gen)
	assert.Equal(t, StateIdle, p.Outcome().State)

	out, err := p.Submit(context.Background(), Request{Topic: "AI in healthcare"})
	require.NoError(t, err)
	assert.Equal(t, StateInFlight, out.State)
	assert.NotEmpty(t, out.RequestID)

	out = waitSettled(t, p)
	assert.Equal(t, StateSucceeded, out.State)
	assert.Equal(t, "Hello world", out.Content)
	assert.Empty(t, out.Reason)

	content, ok := p.Content()
	assert.True(t, ok)
	assert.Equal(t, "Hello world", content)

	// Stays succeeded until cleared.
	assert.Equal(t, StateSucceeded, p.Outcome().State)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestPipeline_ServiceFailure(t *testing.T) {
	gen := &stubGenerator{replies: map[string]stubReply{"x": {err: &ServiceError{Status: 429, Message: "rate limited"}}}}
	p := NewPipeline(gen)

	_, err := p.Submit(context.Background(), Request{Topic: "x"})
	require.NoError(t, err)

	out := waitSettled(t, p)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, "rate limited", out.Reason)
	assert.Empty(t, out.Content)

	_, ok := p.Content()
	assert.False(t, ok)
}

func TestPipeline_TransportFailure(t *testing.T) {
	gen := &stubGenerator{replies: map[string]stubReply{"x": {err: &TransportError{Err: errors.New("dial tcp: refused")}}}}
	p := NewPipeline(gen)

	_, err := p.Submit(context.Background(), Request{Topic: "x"})
	require.NoError(t, err)

	out := waitSettled(t, p)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, transportReason, out.Reason)
}

func TestPipeline_ValidationNeverCallsService(t *testing.T) {
	for _, topic := range []string{"", "   "} {
		gen := &stubGenerator{}
		p := NewPipeline(gen)

		out, err := p.Submit(context.Background(), Request{Topic: topic})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "topic", verr.Field)
		assert.Equal(t, StateIdle, out.State)
		assert.EqualValues(t, 0, gen.calls.Load())
	}
}

func TestPipeline_RejectsSubmitWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	gen := &stubGenerator{replies: map[string]stubReply{"one": {content: "first", gate: gate}, "two": {content: "second"}}}
	p := NewPipeline(gen)

	first, err := p.Submit(context.Background(), Request{Topic: "one"})
	require.NoError(t, err)

	second, err := p.Submit(context.Background(), Request{Topic: "two"})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, first.RequestID, second.RequestID)

	close(gate)
	out := waitSettled(t, p)
	assert.Equal(t, StateSucceeded, out.State)
	assert.Equal(t, "first", out.Content)
	assert.Equal(t, first.RequestID, out.RequestID)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestPipeline_ClearDiscardsLateResponse(t *testing.T) {
	gate := make(chan struct{})
	gen := &stubGenerator{replies: map[string]stubReply{"one": {content: "late", gate: gate}, "two": {content: "fresh"}}}
	p := NewPipeline(gen)

	var settled atomic.Int32
	p.OnSettle(func(Request, Outcome) { settled.Add(1) })

	_, err := p.Submit(context.Background(), Request{Topic: "one"})
	require.NoError(t, err)

	p.Clear()
	assert.Equal(t, Outcome{State: StateIdle}, p.Outcome())

	// Waiters are released by Clear.
	out := waitSettled(t, p)
	assert.Equal(t, StateIdle, out.State)

	_, err = p.Submit(context.Background(), Request{Topic: "two"})
	require.NoError(t, err)
	out = waitSettled(t, p)
	assert.Equal(t, "fresh", out.Content)

	// The superseded call now answers; it must not touch the slot.
	close(gate)
	time.Sleep(20 * time.Millisecond)
	out = p.Outcome()
	assert.Equal(t, StateSucceeded, out.State)
	assert.Equal(t, "fresh", out.Content)
	assert.EqualValues(t, 1, settled.Load())
}

func TestPipeline_ClearFromAnyState(t *testing.T) {
	gen := &stubGenerator{replies: map[string]stubReply{"ok": {content: "a"}, "bad": {err: &ServiceError{Status: 500}}}}
	p := NewPipeline(gen)

	p.Clear()
	assert.Equal(t, Outcome{State: StateIdle}, p.Outcome())

	_, _ = p.Submit(context.Background(), Request{Topic: "ok"})
	waitSettled(t, p)
	p.Clear()
	assert.Equal(t, Outcome{State: StateIdle}, p.Outcome())

	_, _ = p.Submit(context.Background(), Request{Topic: "bad"})
	out := waitSettled(t, p)
	assert.Equal(t, StateFailed, out.State)
	p.Clear()
	assert.Equal(t, Outcome{State: StateIdle}, p.Outcome())
}

func TestPipeline_SubmitAfterSettleReplacesResult(t *testing.T) {
	gate := make(chan struct{})
	gen := &stubGenerator{replies: map[string]stubReply{"x": {content: "a"}, "y": {content: "b", gate: gate}}}
	p := NewPipeline(gen)

	_, _ = p.Submit(context.Background(), Request{Topic: "x"})
	waitSettled(t, p)

	out, err := p.Submit(context.Background(), Request{Topic: "y"})
	require.NoError(t, err)
	assert.Equal(t, StateInFlight, out.State)
	assert.Empty(t, p.Outcome().Content, "previous content is cleared on submit")

	close(gate)
	assert.Equal(t, "b", waitSettled(t, p).Content)
}

func TestPipeline_CallOutlivesSubmitContext(t *testing.T) {
	gate := make(chan struct{})
	gen := &stubGenerator{replies: map[string]stubReply{"x": {content: "done", gate: gate}}}
	p := NewPipeline(gen)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := p.Submit(ctx, Request{Topic: "x"})
	require.NoError(t, err)
	cancel()

	close(gate)
	assert.Equal(t, "done", waitSettled(t, p).Content)
}

func TestPipeline_OnSettleReceivesRequest(t *testing.T) {
	gen := &stubGenerator{replies: map[string]stubReply{"topic": {content: "ok"}}}
	p := NewPipeline(gen)

	got := make(chan Request, 1)
	p.OnSettle(func(req Request, out Outcome) {
		assert.Equal(t, StateSucceeded, out.State)
		got <- req
	})

	_, _ = p.Submit(context.Background(), Request{Topic: "topic"})
	select {
	case req := <-got:
		assert.Equal(t, "topic", req.Topic)
	case <-time.After(2 * time.Second):
		t.Fatal("settle listener not called")
	}
}

func TestPipeline_WaitHonorsContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	gen := &stubGenerator{replies: map[string]stubReply{"x": {content: "x", gate: gate}}}
	p := NewPipeline(gen)
	_, _ = p.Submit(context.Background(), Request{Topic: "x"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	out, err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateInFlight, out.State)
}
