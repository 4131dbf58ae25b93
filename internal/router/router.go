// Package router delivers replies to the host's sink and enforces the
// single-in-flight-request rule: starting a new request cancels the prior
// one, and a superseded request never reaches the sink again.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/promptdeck/promptdeck/internal/models"
)

// Sink is the external presentation surface. The router forwards reply text
// without any formatting or interpretation.
type Sink interface {
	OnChunk(text string)
	OnComplete(fullText string)
	OnError(err error)
}

type Router struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func New() *Router {
	return &Router{}
}

// Begin a new request: the prior in-flight request, if any, is cancelled and
// detached. Returns the request context and its generation token.
func (r *Router) Begin(ctx context.Context) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.gen++
	return ctx, r.gen
}

// deliver runs fn while holding the lock, so a concurrent Begin can neither
// interleave with a sink callback nor observe one after it returned. A stale
// generation delivers nothing.
func (r *Router) deliver(gen uint64, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return false
	}
	fn()
	return true
}

// Stream forwards events to the sink in receipt order. Returns the full
// reply text and whether it was delivered. Cancellation and supersession
// resolve silently: no callback fires, delivered is false, err is nil.
func (r *Router) Stream(ctx context.Context, gen uint64, events <-chan models.CompletionEvent, sink Sink) (string, bool, error) {
	var full strings.Builder
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Gracefully closed channel counts as completion
				return r.complete(gen, full.String(), sink)
			}
			switch cast := ev.(type) {
			case string:
				if !r.deliver(gen, func() { sink.OnChunk(cast) }) {
					return "", false, nil
				}
				full.WriteString(cast)
			case models.StopEvent:
				return r.complete(gen, full.String(), sink)
			case models.NoopEvent:
			case error:
				if !r.deliver(gen, func() { sink.OnError(cast) }) {
					return "", false, nil
				}
				return "", false, cast
			default:
				err := fmt.Errorf("unknown completion event: %v", ev)
				r.deliver(gen, func() { sink.OnError(err) })
				return "", false, err
			}
		case <-ctx.Done():
			return "", false, nil
		}
	}
}

func (r *Router) complete(gen uint64, full string, sink Sink) (string, bool, error) {
	if !r.deliver(gen, func() { sink.OnComplete(full) }) {
		return "", false, nil
	}
	return full, true, nil
}

// Batch delivers a whole reply at once
func (r *Router) Batch(gen uint64, text string, sink Sink) bool {
	return r.deliver(gen, func() { sink.OnComplete(text) })
}

// CancelActive cancels the in-flight request, if any, without starting a
// new one. The cancelled request resolves silently.
func (r *Router) CancelActive() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

// Fail reports a request-level error, unless the request was superseded
func (r *Router) Fail(gen uint64, err error, sink Sink) {
	r.deliver(gen, func() { sink.OnError(err) })
}
