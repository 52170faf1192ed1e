package models

import (
	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// MetaDetails is the single-item detail model behind
// ActionLoadMetaDetails: one ResourceLoadable group fanned out across
// every add-on that can answer a "meta" resource for the selected ref,
// tracked individually so a slow add-on never blocks another's result
// from rendering (§4.5, referenced by §4.9's descriptor-resolution shape).
type MetaDetails struct {
	Selected *types.ResourceRef
	Results  []types.ResourceLoadable[types.MetaItemDetailed]
}

// NewMetaDetails builds a zero-value MetaDetails with nothing planned.
func NewMetaDetails() MetaDetails { return MetaDetails{} }

// Update applies m to d given the current installed add-on set.
func (d *MetaDetails) Update(env runtime.Environment, addons []types.Descriptor, m msg.Msg) runtime.Effects {
	switch a := m.(type) {
	case msg.ActionLoadMetaDetails:
		d.Selected = &a.Ref
		requests := types.AllOfResource(a.Ref).Plan(addons)
		d.Results = types.PlanGroup[types.MetaItemDetailed](requests)
		if len(requests) == 0 {
			return runtime.NoEffects()
		}
		effects := make([]runtime.Effect, len(requests))
		for i, req := range requests {
			effects[i] = runtime.FromFuture(resourceFuture(env, req))
		}
		return runtime.WithEffects(effects...)

	case msg.InternalResourceRequestResult:
		var content types.Loadable[types.MetaItemDetailed, corerr.ResourceError]
		if a.Err != nil {
			content = types.Err[types.MetaItemDetailed, corerr.ResourceError](*a.Err)
		} else if a.Response.Kind != types.ResponseKindMeta || a.Response.Meta == nil {
			content = types.Err[types.MetaItemDetailed, corerr.ResourceError](corerr.UnexpectedResponse("meta"))
		} else {
			content = types.Ready[types.MetaItemDetailed, corerr.ResourceError](*a.Response.Meta)
		}
		results, ok := types.UpdateGroup(d.Results, a.Request, content)
		d.Results = results
		if !ok {
			return runtime.Unchanged()
		}
		return runtime.NoEffects()

	case msg.ActionUnload:
		if a.Model != "" && a.Model != "MetaDetails" {
			return runtime.Unchanged()
		}
		if d.Selected == nil && d.Results == nil {
			return runtime.Unchanged()
		}
		d.Selected = nil
		d.Results = nil
		return runtime.NoEffects()

	default:
		return runtime.Unchanged()
	}
}
