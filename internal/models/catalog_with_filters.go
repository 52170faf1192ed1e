package models

import (
	"strconv"

	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// CatalogOption is one selectable catalog surfaced in the filter bar: an
// add-on's (base, type, id) triple plus its display name and whether it is
// the currently active selection (§4.6).
type CatalogOption struct {
	Base       string
	Type       string
	ID         string
	Name       string
	IsSelected bool
}

// CatalogWithFilters is the generic catalog-browsing model (§4.6),
// parametrized over the decoded item type T and configured with the
// resource name it queries ("catalog" or "addon_catalog" — §4.9's add-on
// discovery reuses the same shape under a different resource name) and an
// optional page size. Two concrete instances of this type live on
// Application: one for meta catalogs, one for community add-on catalogs.
type CatalogWithFilters[T any] struct {
	resourceName string
	pageSize     int
	decode       func(types.ResourceResponse) []T
	matchLoad    func(msg.Msg) (*types.ResourceRequest, bool)
	name         string // Unload target name (§4.1 ActionUnload.Model)

	Selected           *types.ResourceRequest
	SelectableTypes    []string
	SelectableCatalogs []CatalogOption
	PrevPage           *types.Extra
	NextPage           *types.Extra
	Content            types.Loadable[[]T, corerr.ResourceError]

	tracked *types.ResourceRequest
}

// newCatalogWithFilters builds a zero-value CatalogWithFilters[T] wired to
// its resource name, page size, decoder, and Unload name.
func newCatalogWithFilters[T any](name, resourceName string, pageSize int, decode func(types.ResourceResponse) []T, matchLoad func(msg.Msg) (*types.ResourceRequest, bool)) CatalogWithFilters[T] {
	return CatalogWithFilters[T]{
		resourceName: resourceName,
		pageSize:     pageSize,
		decode:       decode,
		matchLoad:    matchLoad,
		name:         name,
		Content:      types.Loading[[]T, corerr.ResourceError](),
	}
}

// Update applies m to c given the current installed add-on set, returning
// the Effects produced (§4.6, §5).
func (c *CatalogWithFilters[T]) Update(env runtime.Environment, addons []types.Descriptor, m msg.Msg) runtime.Effects {
	if selected, ok := c.matchLoad(m); ok {
		return c.load(env, addons, selected)
	}

	switch a := m.(type) {
	case msg.InternalResourceRequestResult:
		if c.tracked == nil || !c.tracked.Equal(a.Request) {
			return runtime.Unchanged()
		}
		if a.Err != nil {
			c.Content = types.Err[[]T, corerr.ResourceError](*a.Err)
		} else if expected, ok := types.ExpectedKindForResource(c.resourceName); ok && a.Response.Kind != expected {
			c.Content = types.Err[[]T, corerr.ResourceError](corerr.UnexpectedResponse(c.resourceName))
		} else {
			decoded := c.decode(a.Response)
			if c.pageSize > 0 && len(decoded) > c.pageSize {
				decoded = decoded[:c.pageSize]
			}
			c.Content = types.Ready[[]T, corerr.ResourceError](decoded)
		}
		c.recomputePaging()
		return runtime.NoEffects()

	case msg.InternalProfileChanged:
		c.recomputeSelectable(addons)
		return runtime.NoEffects()

	case msg.ActionUnload:
		if a.Model != "" && a.Model != c.name {
			return runtime.Unchanged()
		}
		return c.load(env, addons, nil)

	default:
		return runtime.Unchanged()
	}
}

// load implements §4.6's "On Load(selected)" transition.
func (c *CatalogWithFilters[T]) load(env runtime.Environment, addons []types.Descriptor, selected *types.ResourceRequest) runtime.Effects {
	c.Selected = selected
	c.Content = types.Loading[[]T, corerr.ResourceError]()
	c.recomputeSelectable(addons)

	if selected == nil {
		c.tracked = nil
		c.recomputePaging()
		return runtime.NoEffects()
	}
	req := *selected
	c.tracked = &req
	c.recomputePaging()
	return runtime.WithEffects(runtime.FromFuture(resourceFuture(env, req)))
}

// recomputeSelectable rebuilds SelectableTypes/SelectableCatalogs from
// profile.addons × c.Selected (§4.6 step 2).
func (c *CatalogWithFilters[T]) recomputeSelectable(addons []types.Descriptor) {
	var types_ []string
	var options []CatalogOption
	for _, d := range addons {
		if _, ok := d.Manifest.ResourceByName(c.resourceName); !ok {
			continue
		}
		for _, cat := range d.Manifest.Catalogs {
			types_ = append(types_, cat.Type)
			isSelected := c.Selected != nil &&
				c.Selected.Base == d.TransportURL &&
				c.Selected.Path.Type == cat.Type &&
				c.Selected.Path.ID == cat.ID
			options = append(options, CatalogOption{
				Base:       d.TransportURL,
				Type:       cat.Type,
				ID:         cat.ID,
				Name:       cat.Name,
				IsSelected: isSelected,
			})
		}
	}
	c.SelectableTypes = sortTypesByPriority(dedupStrings(types_))
	c.SelectableCatalogs = options
}

// recomputePaging derives PrevPage/NextPage from the active selection's
// skip extra and the configured page size, quantized down to the nearest
// page boundary (§4.6 step 2).
func (c *CatalogWithFilters[T]) recomputePaging() {
	c.PrevPage, c.NextPage = nil, nil
	if c.Selected == nil || c.pageSize <= 0 {
		return
	}
	skip := 0
	if v, ok := c.Selected.Path.Extra.Get("skip"); ok {
		skip, _ = strconv.Atoi(v)
	}
	quantized := (skip / c.pageSize) * c.pageSize

	if quantized > 0 {
		prevSkip := quantized - c.pageSize
		if prevSkip < 0 {
			prevSkip = 0
		}
		e := c.Selected.Path.Extra.WithSet("skip", strconv.Itoa(prevSkip))
		c.PrevPage = &e
	}
	if c.Content.IsReady() && len(c.Content.Value) >= c.pageSize {
		e := c.Selected.Path.Extra.WithSet("skip", strconv.Itoa(quantized+c.pageSize))
		c.NextPage = &e
	}
}
