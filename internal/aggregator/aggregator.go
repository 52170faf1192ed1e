// Package aggregator executes an AggrRequest's plan concurrently against
// every planned add-on and reports one msg.InternalResourceRequestResult
// per ResourceRequest, the fan-out/fan-in shape spec.md §4.5 requires of
// every Load* action. The concurrency pattern is one goroutine per planned
// request and a WaitGroup, each goroutine writing its own slot of a
// pre-sized result slice; no request is cancelled when another fails.
package aggregator

import (
	"context"
	"sync"

	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/ratelimit"
	"github.com/addonify/core/internal/transport"
	"github.com/addonify/core/internal/types"
)

// hostLimiter paces fan-out against any one add-on host: a single
// slow or rate-limiting add-on must never starve the others sharing this
// batch (§4.5). 8 req/s with a matching burst is generous enough that a
// well-behaved add-on never notices it, while still smoothing a pathological
// one.
var hostLimiter = ratelimit.New(8, 8)

// TransportFor resolves the Transport collaborator for a ResourceRequest's
// add-on base — the shape runtime.Environment.AddonTransport satisfies,
// reproduced here as a narrow interface so this package doesn't need to
// import runtime (which itself imports transport, not aggregator).
type TransportFor interface {
	AddonTransport(baseURL string) transport.Transport
}

// Execute runs every ResourceRequest in requests concurrently, one
// goroutine per request pulling its Transport from env, and returns one
// InternalResourceRequestResult per request, in the order of requests. It
// never returns an error itself: per-request failures are carried inside
// each result's Err field, matching the "one bad add-on never blocks the
// others" requirement of §4.5.
func Execute(ctx context.Context, env TransportFor, requests []types.ResourceRequest) []msg.InternalResourceRequestResult {
	results := make([]msg.InternalResourceRequestResult, len(requests))
	var wg sync.WaitGroup
	wg.Add(len(requests))
	for i, req := range requests {
		go func(i int, req types.ResourceRequest) {
			defer wg.Done()
			results[i] = fetchOne(ctx, env, req)
		}(i, req)
	}
	wg.Wait()
	return results
}

func fetchOne(ctx context.Context, env TransportFor, req types.ResourceRequest) msg.InternalResourceRequestResult {
	if err := hostLimiter.Wait(ctx, ratelimit.HostOf(req.Base)); err != nil {
		ce := asResourceError(err)
		return msg.InternalResourceRequestResult{Request: req, Err: &ce}
	}
	tr := env.AddonTransport(req.Base)
	resp, err := tr.Resource(ctx, req.Path)
	if err != nil {
		ce := asResourceError(err)
		return msg.InternalResourceRequestResult{Request: req, Err: &ce}
	}
	return msg.InternalResourceRequestResult{Request: req, Response: resp}
}

func asResourceError(err error) corerr.ResourceError {
	if ce, ok := err.(corerr.CoreError); ok {
		return ce
	}
	return corerr.Env(err)
}

// ApplyResults folds a batch of Execute's results into a ResourceLoadable
// group (§4.5 "per-model group tracking"), returning the updated group and
// whether any entry actually changed.
func ApplyResults[T any](group []types.ResourceLoadable[T], results []msg.InternalResourceRequestResult, decode func(types.ResourceResponse) T) ([]types.ResourceLoadable[T], bool) {
	changed := false
	for _, r := range results {
		var content types.Loadable[T, corerr.ResourceError]
		if r.Err != nil {
			content = types.Err[T, corerr.ResourceError](*r.Err)
		} else {
			content = types.Ready[T, corerr.ResourceError](decode(r.Response))
		}
		var ok bool
		group, ok = types.UpdateGroup(group, r.Request, content)
		changed = changed || ok
	}
	return group, changed
}
