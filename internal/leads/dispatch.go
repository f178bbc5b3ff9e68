package leads

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"laura-backend/internal/metrics"
)

// Forwarder pushes a freshly stored lead to an outside collaborator
// (CRM, email, chat, message bus).
type Forwarder interface {
	Name() string
	Forward(ctx context.Context, lead Lead) error
}

// Dispatcher fans a stored lead out to every forwarder in the background.
// Failures are logged and counted, never returned.
type Dispatcher struct {
	forwarders []Forwarder
	timeout    time.Duration
	log        *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, timeout time.Duration, forwarders ...Forwarder) *Dispatcher {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	active := make([]Forwarder, 0, len(forwarders))
	for _, f := range forwarders {
		if f != nil {
			active = append(active, f)
		}
	}
	return &Dispatcher{forwarders: active, timeout: timeout, log: log}
}

func (d *Dispatcher) Forwarders() []string {
	names := make([]string, 0, len(d.forwarders))
	for _, f := range d.forwarders {
		names = append(names, f.Name())
	}
	return names
}

// Dispatch starts one background forward per forwarder. Once Wait has been
// called the lead is only logged: the process is shutting down.
func (d *Dispatcher) Dispatch(lead Lead) {
	if len(d.forwarders) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn("lead forward skipped: shutting down", slog.String("lead_id", lead.ID))
		return
	}
	for _, f := range d.forwarders {
		d.wg.Add(1)
		go func(f Forwarder) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := f.Forward(ctx, lead); err != nil {
				metrics.LeadForwardFailures.WithLabelValues(f.Name()).Inc()
				d.log.Warn("lead forward failed",
					slog.String("forwarder", f.Name()),
					slog.String("lead_id", lead.ID),
					slog.String("error", err.Error()),
				)
				return
			}
			d.log.Info("lead forwarded", slog.String("forwarder", f.Name()), slog.String("lead_id", lead.ID))
		}(f)
	}
}

// Wait stops new dispatches and blocks until in-flight forwards finish or
// ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
