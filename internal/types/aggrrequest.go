package types

// AggrRequest is one of the three ways a model can ask the aggregator to
// plan a multi-add-on fan-out (§3, §4.5).
type AggrRequest struct {
	kind aggrRequestKind

	// AllCatalogs
	extras Extra

	// AllOfResource
	ref ResourceRef

	// FromAddon
	req ResourceRequest
}

type aggrRequestKind int

const (
	aggrAllCatalogs aggrRequestKind = iota
	aggrAllOfResource
	aggrFromAddon
)

// AllCatalogs builds an AggrRequest that fans out to every catalog (across
// every installed add-on) whose required extras are satisfied by extras.
func AllCatalogs(extras Extra) AggrRequest {
	return AggrRequest{kind: aggrAllCatalogs, extras: extras}
}

// AllOfResource builds an AggrRequest that fans out to every add-on whose
// manifest supports ref.
func AllOfResource(ref ResourceRef) AggrRequest {
	return AggrRequest{kind: aggrAllOfResource, ref: ref}
}

// FromAddon builds an AggrRequest that resolves to the single given
// request, unconditionally.
func FromAddon(req ResourceRequest) AggrRequest {
	return AggrRequest{kind: aggrFromAddon, req: req}
}

// Plan produces the list of per-add-on ResourceRequests for this
// AggrRequest given the installed add-ons, deduplicated by
// ResourceRequest identity (§4.5).
func (a AggrRequest) Plan(addons []Descriptor) []ResourceRequest {
	switch a.kind {
	case aggrAllCatalogs:
		var out []ResourceRequest
		for _, d := range addons {
			for _, cat := range d.Manifest.Catalogs {
				if !cat.FulfillsRequired(a.extras) {
					continue
				}
				if !cat.SupportsExtra(a.extras) {
					continue
				}
				ref := WithExtra("catalog", cat.Type, cat.ID, a.extras)
				out = dedupAppend(out, ResourceRequest{Base: d.TransportURL, Path: ref})
			}
		}
		return out
	case aggrAllOfResource:
		var out []ResourceRequest
		for _, d := range addons {
			if d.Manifest.IsSupported(a.ref) {
				out = dedupAppend(out, ResourceRequest{Base: d.TransportURL, Path: a.ref})
			}
		}
		return out
	case aggrFromAddon:
		return []ResourceRequest{a.req}
	default:
		return nil
	}
}

func dedupAppend(out []ResourceRequest, req ResourceRequest) []ResourceRequest {
	for _, existing := range out {
		if existing.Equal(req) {
			return out
		}
	}
	return append(out, req)
}
