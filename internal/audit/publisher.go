package audit

import (
	"context"
	"sync/atomic"
	"time"
)

const defaultInboxSize = 1024

// Publisher accepts events from the request path without blocking it. Events
// are buffered on a channel and drained by a Worker; when the buffer is full
// the event is dropped and counted rather than stalling an evaluation.
type Publisher struct {
	inbox   chan Event
	dropped atomic.Int64
}

func NewPublisher(buffer int) *Publisher {
	if buffer <= 0 {
		buffer = defaultInboxSize
	}
	return &Publisher{inbox: make(chan Event, buffer)}
}

// Emit enqueues an event, stamping the time if unset. Never blocks.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		p.dropped.Add(1)
	}
}

// Inbox exposes the event channel for the Worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Dropped reports how many events were discarded due to a full buffer.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

// Worker consumes events from a publisher inbox and fans them out to sinks.
// A failing sink is skipped for that event; audit is best effort and must
// never take down the service.
type Worker struct {
	inbox <-chan Event
	sinks []Sink
}

func NewWorker(inbox <-chan Event, sinks ...Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks}
}

// Run drains the inbox until the context is cancelled. On shutdown the
// remaining buffered events are flushed.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) flush() {
	// Detached context: the run context is already cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	for _, sink := range w.sinks {
		_ = sink.Append(ctx, event)
	}
}
