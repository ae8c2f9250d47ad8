package audit

import (
	"context"
	"sync"

	"vatwatch/pkg/requestcontext"
)

// Publisher decouples event emission from persistence. In sync mode (the
// default) Emit appends directly; with an async buffer, appends happen on a
// background goroutine and a full buffer drops the event rather than
// blocking the pipeline.
type Publisher struct {
	store Store

	mu     sync.Mutex
	closed bool
	inbox  chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to buffered asynchronous mode.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, stamping timestamp, request id, and operator from
// the context when the caller left them unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Operator == "" {
		event.Operator = requestcontext.Operator(ctx)
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	// The send races Close; holding the lock keeps it off a closed channel.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	select {
	case p.inbox <- event:
	default:
		// Audit must never stall the pipeline; a full buffer drops.
	}
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		// Detached from the request context: the request may already be done.
		_ = p.store.Append(context.Background(), event)
	}
}

// Close drains any buffered events and stops the background goroutine.
// Safe to call multiple times and concurrently with Emit; events emitted
// after Close starts are dropped.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
