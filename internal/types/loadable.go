package types

import "github.com/addonify/core/internal/corerr"

// ResourceError is the error type carried by a ResourceLoadable's Err
// state; re-exported here so model code that only imports types doesn't
// also need to import corerr directly.
type ResourceError = corerr.ResourceError

// LoadableState discriminates a Loadable's variant.
type LoadableState int

const (
	// LoadableLoading is the default state: a request is in flight and no
	// result has arrived yet.
	LoadableLoading LoadableState = iota
	LoadableReady
	LoadableErr
)

// Loadable is a three-state value: {Loading, Ready(R), Err(E)}. The zero
// value is Loading, matching spec.md §3 ("default is Loading").
type Loadable[R any, E any] struct {
	State LoadableState
	Value R
	Err   E
}

// Ready builds a Loadable in the Ready state.
func Ready[R any, E any](v R) Loadable[R, E] {
	return Loadable[R, E]{State: LoadableReady, Value: v}
}

// Err builds a Loadable in the Err state.
func Err[R any, E any](e E) Loadable[R, E] {
	return Loadable[R, E]{State: LoadableErr, Err: e}
}

// Loading builds a Loadable in the Loading state (equivalent to the zero
// value, provided for readability at call sites).
func Loading[R any, E any]() Loadable[R, E] {
	return Loadable[R, E]{State: LoadableLoading}
}

// IsLoading reports whether l is in the Loading state.
func (l Loadable[R, E]) IsLoading() bool { return l.State == LoadableLoading }

// IsReady reports whether l is in the Ready state.
func (l Loadable[R, E]) IsReady() bool { return l.State == LoadableReady }

// IsErr reports whether l is in the Err state.
func (l Loadable[R, E]) IsErr() bool { return l.State == LoadableErr }

// ResourceLoadable pairs a ResourceRequest (this loadable's identity) with
// its Loadable result. One ResourceLoadable exists per add-on per
// in-flight aggregated query (§3, §4.5).
type ResourceLoadable[T any] struct {
	Request ResourceRequest
	Content Loadable[T, ResourceError]
}

// NewResourceLoadable builds a ResourceLoadable in the Loading state for
// req, the shape every planned request starts in before its result
// arrives.
func NewResourceLoadable[T any](req ResourceRequest) ResourceLoadable[T] {
	return ResourceLoadable[T]{Request: req, Content: Loading[T, ResourceError]()}
}

// UpdateGroup applies result to the single entry in group whose
// ResourceRequest equals req (§4.5 "per-model group tracking"). Responses
// whose req matches no tracked entry are discarded; it reports whether any
// entry was updated (callers use this to decide has_changed).
func UpdateGroup[T any](group []ResourceLoadable[T], req ResourceRequest, content Loadable[T, ResourceError]) ([]ResourceLoadable[T], bool) {
	for i := range group {
		if group[i].Request.Equal(req) {
			group[i].Content = content
			return group, true
		}
	}
	return group, false
}

// PlanGroup builds a fresh []ResourceLoadable[T], one Loading entry per
// planned request, overwriting whatever group previously tracked (§4.6
// step 1, §4.8 "overwrite groups with a fresh Loading entry per request").
func PlanGroup[T any](requests []ResourceRequest) []ResourceLoadable[T] {
	out := make([]ResourceLoadable[T], len(requests))
	for i, req := range requests {
		out[i] = NewResourceLoadable[T](req)
	}
	return out
}
