// Package models implements the reactive Load* models of component F
// (spec.md §4.6-§4.9) plus the Notifications/Player models supplemented
// from original_source (SPEC_FULL.md §C), and the composite Application
// model that satisfies runtime.Model by composing Ctx first, then every
// remaining field in declaration order (§4.1).
package models

import (
	"context"
	"sort"

	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// typePriority orders content types movie > series > channel > tv > other,
// ties broken by natural (lexicographic) order (§4.6, §4.7).
var typePriority = map[string]int{
	"movie":   0,
	"series":  1,
	"channel": 2,
	"tv":      3,
}

func priorityOf(t string) int {
	if p, ok := typePriority[t]; ok {
		return p
	}
	return len(typePriority)
}

// sortTypesByPriority sorts ts in place by the fixed priority table and
// returns it.
func sortTypesByPriority(ts []string) []string {
	sort.SliceStable(ts, func(i, j int) bool {
		pi, pj := priorityOf(ts[i]), priorityOf(ts[j])
		if pi != pj {
			return pi < pj
		}
		return ts[i] < ts[j]
	})
	return ts
}

func dedupStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// resourceFuture builds the Future that fetches one planned add-on call and
// reports its result as an InternalResourceRequestResult (§4.5): every
// Load* model schedules one of these per tracked ResourceRequest rather
// than blocking inside Update, which must stay a pure, non-suspending
// transformation (§5).
func resourceFuture(env runtime.Environment, req types.ResourceRequest) runtime.Future {
	return func(ctx context.Context) msg.Msg {
		tr := env.AddonTransport(req.Base)
		resp, err := tr.Resource(ctx, req.Path)
		if err != nil {
			ce := asResourceError(err)
			return msg.InternalResourceRequestResult{Request: req, Err: &ce}
		}
		return msg.InternalResourceRequestResult{Request: req, Response: resp}
	}
}

// manifestFuture builds the Future that fetches one add-on's manifest and
// reports it as an InternalManifestRequestResult (§4.9).
func manifestFuture(env runtime.Environment, transportURL string) runtime.Future {
	return func(ctx context.Context) msg.Msg {
		tr := env.AddonTransport(transportURL)
		manifest, err := tr.Manifest(ctx)
		if err != nil {
			ce := asResourceError(err)
			return msg.InternalManifestRequestResult{TransportURL: transportURL, Err: &ce}
		}
		return msg.InternalManifestRequestResult{TransportURL: transportURL, Manifest: &manifest}
	}
}

func asResourceError(err error) types.ResourceError {
	if ce, ok := err.(corerr.CoreError); ok {
		return ce
	}
	return corerr.Env(err)
}
