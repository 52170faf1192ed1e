package models

import (
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/types"
)

// NewCatalogWithFilters builds the meta-catalog browsing model (§4.6):
// resource "catalog", decoded into MetaPreview, paged 100 items at a time
// by convention.
func NewCatalogWithFilters() CatalogWithFilters[types.MetaPreview] {
	return newCatalogWithFilters("CatalogWithFilters", "catalog", 100,
		func(r types.ResourceResponse) []types.MetaPreview { return r.Metas },
		func(m msg.Msg) (*types.ResourceRequest, bool) {
			a, ok := m.(msg.ActionLoadCatalogWithFilters)
			if !ok {
				return nil, false
			}
			return a.Selected, true
		},
	)
}

// NewAddonCatalogWithFilters builds the community add-on discovery model
// (§4.9): resource "addon_catalog", decoded into AddonCatalogItem, unpaged
// (add-on catalogs are small enough to return in one page).
func NewAddonCatalogWithFilters() CatalogWithFilters[types.AddonCatalogItem] {
	return newCatalogWithFilters("AddonCatalogWithFilters", "addon_catalog", 0,
		func(r types.ResourceResponse) []types.AddonCatalogItem { return r.AddonCatalog },
		func(m msg.Msg) (*types.ResourceRequest, bool) {
			a, ok := m.(msg.ActionLoadAddonCatalogWithFilters)
			if !ok {
				return nil, false
			}
			return a.Selected, true
		},
	)
}
