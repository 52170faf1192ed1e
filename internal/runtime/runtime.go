// Package runtime implements the single-writer message-driven update loop
// (spec.md §4.1, §5): Dispatch acquires exclusive access to the model,
// applies a message, recurses depth-first into every immediate effect,
// schedules every future effect on the platform executor, and publishes
// NewModel/Event notifications to subscribers.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/addonify/core/internal/corelog"
	"github.com/addonify/core/internal/coremetrics"
	"github.com/addonify/core/internal/msg"
)

var rtLog = corelog.New("runtime")

type traceIDKey struct{}

// TraceID returns the dispatch trace id attached to ctx by Dispatch, or ""
// if ctx did not come from a Dispatch call (e.g. a test calling process
// directly). Every log line emitted while handling one external Action
// can be correlated against this id.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// Notification is one item published to a Runtime's event stream: either
// a NewModel signal (the model changed) or an outbound Event.
type Notification struct {
	// NewModel is true when this notification announces a model change
	// (§4.1 step 4). Event is non-nil when msg was an Event variant
	// (§4.1 step 5). Both may be set for the same dispatch step.
	NewModel bool
	Event    msg.Event
}

// Runtime holds a Model behind a reader-writer lock and an outbound
// notification channel, the Go shape of "Runtime⟨M⟩" (§3).
type Runtime struct {
	mu    sync.RWMutex
	model Model
	env   Environment

	notifications chan Notification
}

// New constructs a Runtime around initial, with an outbound notification
// channel buffered to channelCapacity (§4.1 "new(initial_model,
// channel_capacity) -> (handle, event_stream)"). Subscribers read from
// Notifications(); a full channel drops the oldest pending notification
// rather than blocking dispatch, since dispatch must never suspend (§5).
func New(initial Model, env Environment, channelCapacity int) *Runtime {
	if channelCapacity < 1 {
		channelCapacity = 1
	}
	return &Runtime{
		model:         initial,
		env:           env,
		notifications: make(chan Notification, channelCapacity),
	}
}

// Notifications returns the outbound event stream.
func (r *Runtime) Notifications() <-chan Notification { return r.notifications }

// Model returns a read-only snapshot of the current model (§4.1
// "model() -> snapshot read-guard"), taken under the reader lock.
func (r *Runtime) Model() Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model.Snapshot()
}

// Dispatch submits an Action for processing and returns once the
// resulting depth-first chain of immediate messages has fully drained
// (§4.1 "dispatch(Action) -> completion future"); any futures it
// scheduled continue to run and re-enter dispatch asynchronously on
// resolution.
func (r *Runtime) Dispatch(ctx context.Context, a msg.Action) {
	ctx = context.WithValue(ctx, traceIDKey{}, uuid.NewString())
	rtLog.Info("[%s] dispatch %T", TraceID(ctx), a)
	start := time.Now()
	r.process(ctx, a)
	coremetrics.DispatchDuration.Observe(time.Since(start).Seconds())
}

// process runs one message through the dispatch algorithm (§4.1 steps
// 1-6): exclusive model access, publish notifications, then recurse
// depth-first into immediate effects and schedule futures.
func (r *Runtime) process(ctx context.Context, m msg.Msg) {
	coremetrics.DispatchTotal.WithLabelValues(fmt.Sprintf("%T", m)).Inc()

	r.mu.Lock()
	effects := r.model.Update(ctx, r.env, m)
	r.mu.Unlock()

	r.publish(m, effects.Changed)

	for _, eff := range effects.Items {
		if eff.isFuture() {
			coremetrics.EffectsScheduled.WithLabelValues("future").Inc()
			r.scheduleFuture(ctx, eff.future)
			continue
		}
		coremetrics.EffectsScheduled.WithLabelValues("immediate").Inc()
		r.process(ctx, eff.immediate)
	}
}

// scheduleFuture runs f on the environment's executor; its result (if
// non-nil) re-enters dispatch as a fresh top-level message (§4.1 step 6,
// "on resolution it yields exactly one follow-up message").
func (r *Runtime) scheduleFuture(ctx context.Context, f Future) {
	coremetrics.EffectQueueDepth.Inc()
	r.env.Exec(func(ctx context.Context) {
		defer coremetrics.EffectQueueDepth.Dec()
		result := f(ctx)
		if result == nil {
			return
		}
		r.process(ctx, result)
	})
}

// publish emits a NewModel notification when changed, and an Event
// notification when m is an outbound Event variant (§4.1 steps 4-5).
// Both conditions independently gate on the same underlying channel.
func (r *Runtime) publish(m msg.Msg, changed bool) {
	ev, isEvent := m.(msg.Event)
	if !changed && !isEvent {
		return
	}
	n := Notification{NewModel: changed}
	if isEvent {
		n.Event = ev
	}
	defer func() { coremetrics.EventBacklog.Set(float64(len(r.notifications))) }()
	select {
	case r.notifications <- n:
	default:
		// Buffer full: drop the oldest pending notification to make
		// room rather than block the single-writer dispatch loop.
		select {
		case <-r.notifications:
		default:
		}
		select {
		case r.notifications <- n:
		default:
			rtLog.Warn("notification channel full, dropping %T", m)
		}
	}
}
