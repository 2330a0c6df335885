package hook

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/store"
)

// queueSize bounds intents waiting for a hook run.
const queueSize = 64

// BindingSource looks up the enabled bindings for an intent kind.
type BindingSource interface {
	ForIntent(kind interaction.IntentKind) ([]*store.Binding, error)
}

type job struct {
	intent interaction.Intent
	mode   interaction.Mode
	seq    uint64
}

// Dispatcher is an app.Sink that runs the bound hooks for every emitted
// intent on a background worker. Publish never blocks; intents that arrive
// while the queue is full are dropped.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	bindings BindingSource
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu      sync.RWMutex
	jobs    chan job
	done    chan struct{}
	started bool
	closed  bool
}

// NewDispatcher creates a Dispatcher. Call Start before publishing.
func NewDispatcher(manager *Manager, executor *Executor, bindings BindingSource, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		bindings: bindings,
		metrics:  m,
		logger:   logger,
		jobs:     make(chan job, queueSize),
		done:     make(chan struct{}),
	}
}

// Start runs the worker until ctx is done or Close is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	go func() {
		defer close(d.done)
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-d.jobs:
				if !ok {
					return
				}
				d.run(ctx, j)
			}
		}
	}()
}

// Close stops accepting intents and waits for the worker to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	started := d.started
	d.mu.Unlock()

	if started {
		<-d.done
	}
}

// Publish implements app.Sink.
func (d *Dispatcher) Publish(r app.FrameResult) {
	if len(r.Intents) == 0 {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	for _, in := range r.Intents {
		select {
		case d.jobs <- job{intent: in, mode: r.Mode, seq: r.Sequence}:
		default:
			d.metrics.RecordSinkError("hook")
			d.logger.Warn("hook queue full, dropping intent", "intent", in.String())
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, j job) {
	bindings, err := d.bindings.ForIntent(j.intent.Kind)
	if err != nil {
		d.metrics.RecordSinkError("hook")
		d.logger.Error("loading hook bindings", "intent", j.intent.Kind, "error", err)
		return
	}

	for _, b := range bindings {
		h, err := d.manager.Get(b.HookName)
		if errors.Is(err, ErrHookNotFound) {
			d.metrics.RecordSinkError("hook")
			d.logger.Warn("bound hook not installed", "hook", b.HookName, "binding", b.ID)
			continue
		}
		if !h.Accepts(j.intent.Kind) {
			d.logger.Warn("hook does not accept intent", "hook", b.HookName, "intent", j.intent.Kind)
			continue
		}

		resp, err := d.executor.Execute(ctx, h, &Request{
			Action:   b.ActionName,
			Intent:   j.intent,
			Mode:     j.mode,
			Sequence: j.seq,
			Config:   b.Config,
		})
		switch {
		case err != nil:
			d.metrics.RecordSinkError("hook")
			d.logger.Error("hook failed", "hook", b.HookName, "action", b.ActionName, "error", err)
		case !resp.Success:
			d.metrics.RecordSinkError("hook")
			d.logger.Warn("hook reported failure", "hook", b.HookName, "action", b.ActionName, "error", resp.Error)
		default:
			d.logger.Debug("hook ran", "hook", b.HookName, "action", b.ActionName, "intent", j.intent.String())
		}
	}
}
