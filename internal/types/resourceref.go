// Package types holds the data model shared by every component of the
// core: add-on manifests, resource references, library items, profile and
// the tagged unions that flow through the runtime as message payloads.
package types

import (
	"fmt"
	"net/url"
	"strings"
)

// Extra is an ordered sequence of (name, value) pairs. Order matters for
// stringification but not for lookup.
type Extra []ExtraValue

// ExtraValue is one (name, value) pair inside a ResourceRef's extras.
type ExtraValue struct {
	Name  string
	Value string
}

// Get returns the first value for name, and whether it was found.
func (e Extra) Get(name string) (string, bool) {
	for _, v := range e {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Has reports whether name is present anywhere in the extras.
func (e Extra) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// WithSet returns a copy of e with name set to value, replacing the first
// existing occurrence of name or appending if absent.
func (e Extra) WithSet(name, value string) Extra {
	out := make(Extra, 0, len(e)+1)
	replaced := false
	for _, v := range e {
		if v.Name == name && !replaced {
			out = append(out, ExtraValue{Name: name, Value: value})
			replaced = true
			continue
		}
		out = append(out, v)
	}
	if !replaced {
		out = append(out, ExtraValue{Name: name, Value: value})
	}
	return out
}

// ResourceRef identifies one add-on query: a resource name (catalog, meta,
// stream, subtitles, addon_catalog, manifest), a content type, an id, and an
// ordered extras envelope.
type ResourceRef struct {
	Resource string
	Type     string
	ID       string
	Extra    Extra
}

// WithoutExtra builds a ResourceRef with no extras.
func WithoutExtra(resource, typeName, id string) ResourceRef {
	return ResourceRef{Resource: resource, Type: typeName, ID: id}
}

// WithExtra builds a ResourceRef carrying the given extras, preserving order.
func WithExtra(resource, typeName, id string, extra []ExtraValue) ResourceRef {
	e := make(Extra, len(extra))
	copy(e, extra)
	return ResourceRef{Resource: resource, Type: typeName, ID: id, Extra: e}
}

// String renders the ResourceRef as
// /<resource>/<type>/<id>[/<k=v&...>].json with percent-encoding of the
// three path segments and form-urlencoding of the extras envelope.
func (r ResourceRef) String() string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(encodePathSegment(r.Resource))
	b.WriteByte('/')
	b.WriteString(encodePathSegment(r.Type))
	b.WriteByte('/')
	b.WriteString(encodePathSegment(r.ID))
	if len(r.Extra) > 0 {
		b.WriteByte('/')
		b.WriteString(encodeExtra(r.Extra))
	}
	b.WriteString(".json")
	return b.String()
}

// encodePathSegment percent-encodes s the way a URL path segment is
// encoded, additionally escaping '/' so a segment value can never
// reintroduce a path boundary.
func encodePathSegment(s string) string {
	// url.PathEscape leaves a few sub-delims (e.g. '+') unescaped that we
	// want escaped so form-urlencoded extras and path segments round-trip
	// unambiguously; it already encodes spaces as %20 and '/' as %2F.
	escaped := url.PathEscape(s)
	// PathEscape does not escape '+'; escape it explicitly so a literal
	// '+' in resource/type/id never collides with a later %2B produced by
	// re-escaping, keeping String<->ParseResourceRef a true bijection.
	escaped = strings.ReplaceAll(escaped, "+", "%2B")
	return escaped
}

func encodeExtra(extra Extra) string {
	v := url.Values{}
	for _, e := range extra {
		v.Add(e.Name, e.Value)
	}
	// url.Values.Encode sorts by key then preserves multi-value order,
	// which would reorder our extras; encode manually to preserve the
	// caller-supplied order instead (order is part of the contract: two
	// ResourceRefs with the same pairs in different orders are distinct
	// request identities before parsing, matching the add-on wire format).
	var b strings.Builder
	for i, e := range extra {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(e.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(e.Value))
	}
	return b.String()
}

// ParseResourceRef parses the output of ResourceRef.String. It is the
// exact inverse: ParseResourceRef(r.String()) == r for every legal r.
func ParseResourceRef(s string) (ResourceRef, error) {
	if !strings.HasPrefix(s, "/") {
		return ResourceRef{}, fmt.Errorf("resourceref: missing leading /")
	}
	if !strings.HasSuffix(s, ".json") {
		return ResourceRef{}, fmt.Errorf("resourceref: missing .json suffix")
	}
	trimmed := strings.TrimSuffix(s, ".json")
	trimmed = strings.TrimPrefix(trimmed, "/")
	parts := strings.SplitN(trimmed, "/", 4)
	if len(parts) < 3 {
		return ResourceRef{}, fmt.Errorf("resourceref: expected at least 3 path segments, got %d", len(parts))
	}
	resource, err := url.PathUnescape(parts[0])
	if err != nil {
		return ResourceRef{}, fmt.Errorf("resourceref: decode resource: %w", err)
	}
	typeName, err := url.PathUnescape(parts[1])
	if err != nil {
		return ResourceRef{}, fmt.Errorf("resourceref: decode type: %w", err)
	}
	id, err := url.PathUnescape(parts[2])
	if err != nil {
		return ResourceRef{}, fmt.Errorf("resourceref: decode id: %w", err)
	}
	ref := ResourceRef{Resource: resource, Type: typeName, ID: id}
	if len(parts) == 4 && parts[3] != "" {
		extra, err := parseExtra(parts[3])
		if err != nil {
			return ResourceRef{}, fmt.Errorf("resourceref: decode extra: %w", err)
		}
		ref.Extra = extra
	}
	return ref, nil
}

func parseExtra(s string) (Extra, error) {
	pairs := strings.Split(s, "&")
	out := make(Extra, 0, len(pairs))
	for _, p := range pairs {
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		k, err := url.QueryUnescape(kv[0])
		if err != nil {
			return nil, err
		}
		var val string
		if len(kv) == 2 {
			val, err = url.QueryUnescape(kv[1])
			if err != nil {
				return nil, err
			}
		}
		out = append(out, ExtraValue{Name: k, Value: val})
	}
	return out, nil
}

// Equal reports structural equality, including extras order. Identity
// matching throughout the aggregator (§4.5) uses this, not pointer
// equality: ResourceLoadable tracking keys on ResourceRequest equality.
func (r ResourceRef) Equal(o ResourceRef) bool {
	if r.Resource != o.Resource || r.Type != o.Type || r.ID != o.ID {
		return false
	}
	if len(r.Extra) != len(o.Extra) {
		return false
	}
	for i := range r.Extra {
		if r.Extra[i] != o.Extra[i] {
			return false
		}
	}
	return true
}

// ResourceRequest is (base add-on URL, ResourceRef) — the identity of one
// add-on call.
type ResourceRequest struct {
	Base string
	Path ResourceRef
}

// Equal reports whether two ResourceRequests address the same add-on call.
func (r ResourceRequest) Equal(o ResourceRequest) bool {
	return r.Base == o.Base && r.Path.Equal(o.Path)
}

// ManifestURL returns the add-on's manifest endpoint for this request's
// base: it always ends in /manifest.json regardless of the request's own
// path, since a manifest is addressed by add-on identity, not resource.
func (r ResourceRequest) ManifestURL() string {
	base := strings.TrimSuffix(r.Base, "/manifest.json")
	base = strings.TrimSuffix(base, "/")
	return base + "/manifest.json"
}
