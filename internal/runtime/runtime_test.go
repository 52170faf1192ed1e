package runtime

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/transport"
	"github.com/addonify/core/internal/types"
)

// syncEnv runs Exec synchronously so tests stay deterministic without
// sleeping on a background goroutine.
type syncEnv struct{}

func (syncEnv) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	return FetchResult{}, nil
}
func (syncEnv) GetStorage(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}
func (syncEnv) SetStorage(ctx context.Context, key string, value []byte) error { return nil }
func (syncEnv) Now() types.Timestamp                                          { return types.FromTime(time.Unix(0, 0)) }
func (syncEnv) Exec(f func(ctx context.Context))                              { f(context.Background()) }
func (syncEnv) APIURL() string                                                { return "https://api.test" }
func (syncEnv) AddonTransport(baseURL string) transport.Transport             { return transport.New(baseURL, &http.Client{}) }

// recordingModel counts Update calls: on ActionLogout it emits an
// immediate ActionPushUserToAPI follow-up, and leaves everything else
// Unchanged. This exercises depth-first recursion and NewModel gating
// without a real composite model. msg.Msg and its families are a sealed
// set (isMsg/isAction are unexported), so tests compose real msg variants
// as stand-ins rather than fabricating new ones.
type recordingModel struct {
	calls []msg.Msg
}

func (m *recordingModel) Update(ctx context.Context, env Environment, message msg.Msg) Effects {
	m.calls = append(m.calls, message)
	switch message.(type) {
	case msg.ActionLogout:
		return WithEffects(Immediate(msg.ActionPushUserToAPI{}))
	case msg.ActionPushUserToAPI:
		return NoEffects()
	default:
		return Unchanged()
	}
}

func (m *recordingModel) Snapshot() Model {
	cp := *m
	return &cp
}

func TestDispatchRecursesDepthFirstAndEmitsNewModel(t *testing.T) {
	model := &recordingModel{}
	rt := New(model, syncEnv{}, 4)

	rt.Dispatch(context.Background(), msg.ActionLogout{})

	if len(model.calls) != 2 {
		t.Fatalf("expected 2 Update calls (Logout then PushUserToAPI), got %d: %+v", len(model.calls), model.calls)
	}
	if _, ok := model.calls[0].(msg.ActionLogout); !ok {
		t.Fatalf("expected first call to be ActionLogout, got %T", model.calls[0])
	}
	if _, ok := model.calls[1].(msg.ActionPushUserToAPI); !ok {
		t.Fatalf("expected second call to be the recursed immediate effect, got %T", model.calls[1])
	}

	select {
	case n := <-rt.Notifications():
		if !n.NewModel {
			t.Fatal("expected first notification to report NewModel")
		}
	default:
		t.Fatal("expected a notification for ActionLogout's Changed=true")
	}
}

func TestDispatchSchedulesFutureAndReentersDispatch(t *testing.T) {
	model := &futureModel{}
	rt := New(model, syncEnv{}, 4)

	rt.Dispatch(context.Background(), msg.ActionLogout{})

	if model.sawFutureResult != 1 {
		t.Fatalf("expected future's follow-up message to re-enter dispatch exactly once, got %d", model.sawFutureResult)
	}
}

type futureModel struct {
	sawFutureResult int
}

func (m *futureModel) Update(ctx context.Context, env Environment, message msg.Msg) Effects {
	switch message.(type) {
	case msg.ActionLogout:
		return WithEffects(FromFuture(func(ctx context.Context) msg.Msg {
			return msg.ActionPushUserToAPI{}
		}))
	case msg.ActionPushUserToAPI:
		m.sawFutureResult++
		return NoEffects()
	default:
		return Unchanged()
	}
}

func (m *futureModel) Snapshot() Model { cp := *m; return &cp }

func TestUnchangedUpdateProducesNoNotification(t *testing.T) {
	model := &recordingModel{}
	rt := New(model, syncEnv{}, 4)

	rt.Dispatch(context.Background(), msg.ActionLoadNotifications{})

	select {
	case n := <-rt.Notifications():
		t.Fatalf("expected no notification for an unmatched/unchanged message, got %+v", n)
	default:
	}
}
