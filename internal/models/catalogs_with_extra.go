package models

import (
	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// CatalogsWithExtra is the home-grid model (§4.8): one ResourceLoadable
// group fanned out across every installed add-on's catalogs, keyed by the
// extras envelope the caller supplied. The search shelf is the same model
// with Selected containing a "search" extra, not a distinct type.
type CatalogsWithExtra struct {
	Selected types.Extra
	Groups   []types.ResourceLoadable[[]types.MetaPreview]
}

// NewCatalogsWithExtra builds a zero-value CatalogsWithExtra with no
// groups planned yet.
func NewCatalogsWithExtra() CatalogsWithExtra {
	return CatalogsWithExtra{}
}

// Update applies m to c given the current installed add-on set (§4.8).
func (c *CatalogsWithExtra) Update(env runtime.Environment, addons []types.Descriptor, m msg.Msg) runtime.Effects {
	switch a := m.(type) {
	case msg.ActionLoadCatalogsWithExtra:
		return c.load(env, addons, a.Extra)

	case msg.InternalResourceRequestResult:
		changed := false
		for i := range c.Groups {
			if !c.Groups[i].Request.Equal(a.Request) {
				continue
			}
			changed = true
			if a.Err != nil {
				c.Groups[i].Content = types.Err[[]types.MetaPreview, corerr.ResourceError](*a.Err)
			} else if a.Response.Kind != types.ResponseKindMetas {
				c.Groups[i].Content = types.Err[[]types.MetaPreview, corerr.ResourceError](corerr.UnexpectedResponse("catalog"))
			} else {
				c.Groups[i].Content = types.Ready[[]types.MetaPreview, corerr.ResourceError](a.Response.Metas)
			}
			break
		}
		if !changed {
			return runtime.Unchanged()
		}
		return runtime.NoEffects()

	case msg.ActionUnload:
		if a.Model != "" && a.Model != "CatalogsWithExtra" {
			return runtime.Unchanged()
		}
		if c.Selected == nil && c.Groups == nil {
			return runtime.Unchanged()
		}
		c.Selected = nil
		c.Groups = nil
		return runtime.NoEffects()

	default:
		return runtime.Unchanged()
	}
}

func (c *CatalogsWithExtra) load(env runtime.Environment, addons []types.Descriptor, extra types.Extra) runtime.Effects {
	c.Selected = extra
	requests := types.AllCatalogs(extra).Plan(addons)
	c.Groups = types.PlanGroup[[]types.MetaPreview](requests)
	if len(requests) == 0 {
		return runtime.NoEffects()
	}
	effects := make([]runtime.Effect, len(requests))
	for i, req := range requests {
		effects[i] = runtime.FromFuture(resourceFuture(env, req))
	}
	return runtime.WithEffects(effects...)
}
