package types

import "strings"

// ManifestResource describes one resource an add-on serves: a name
// (catalog, meta, stream, subtitles, addon_catalog) plus optional filters
// restricting which (type, id-prefix) combinations it answers.
type ManifestResource struct {
	Name       string
	Types      []string
	IDPrefixes []string
}

// ExtraProp describes one extra-property slot a catalog accepts (e.g.
// "search", "genre", "skip").
type ExtraProp struct {
	Name         string
	IsRequired   bool
	Options      []string // nil means unrestricted
	OptionsLimit int      // 0 means unspecified/unlimited
}

// ManifestCatalog is one catalog entry in a Manifest.
type ManifestCatalog struct {
	Type        string
	ID          string
	Name        string // optional display name
	Extra       []ExtraProp
}

// RequiredExtraNames returns the names of extras this catalog requires.
func (c ManifestCatalog) RequiredExtraNames() []string {
	var out []string
	for _, e := range c.Extra {
		if e.IsRequired {
			out = append(out, e.Name)
		}
	}
	return out
}

// ExtraByName returns the ExtraProp named name, if present.
func (c ManifestCatalog) ExtraByName(name string) (ExtraProp, bool) {
	for _, e := range c.Extra {
		if e.Name == name {
			return e, true
		}
	}
	return ExtraProp{}, false
}

// SupportsExtra reports whether every pair in extra is allowed by this
// catalog's extra-prop schema: the name must exist, and if the prop has a
// closed option set, the value must be a member of it.
func (c ManifestCatalog) SupportsExtra(extra Extra) bool {
	for _, kv := range extra {
		prop, ok := c.ExtraByName(kv.Name)
		if !ok {
			return false
		}
		if len(prop.Options) > 0 && !containsString(prop.Options, kv.Value) {
			return false
		}
	}
	return true
}

// FulfillsRequired reports whether extra supplies every required extra
// name this catalog declares.
func (c ManifestCatalog) FulfillsRequired(extra Extra) bool {
	for _, name := range c.RequiredExtraNames() {
		if !extra.Has(name) {
			return false
		}
	}
	return true
}

// DefaultRequiredExtra builds an Extra satisfying FulfillsRequired with
// empty-string values for every required prop that has no closed option
// set, or the first option when one is declared. Nothing in this module
// calls it; catalog enumeration in internal/models does not use it.
func (c ManifestCatalog) DefaultRequiredExtra() Extra {
	var out Extra
	for _, e := range c.Extra {
		if !e.IsRequired {
			continue
		}
		val := ""
		if len(e.Options) > 0 {
			val = e.Options[0]
		}
		out = append(out, ExtraValue{Name: e.Name, Value: val})
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// Manifest is an add-on's self-description.
type Manifest struct {
	ID          string
	Version     string // semver
	Name        string
	Description string
	Logo        string
	Background  string
	Contact     string
	Resources   []ManifestResource
	Types       []string
	Catalogs    []ManifestCatalog
}

// ResourceByName returns the ManifestResource named name, if declared.
func (m Manifest) ResourceByName(name string) (ManifestResource, bool) {
	for _, r := range m.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ManifestResource{}, false
}

// CatalogByTypeID returns the catalog matching (typeName, id), if any.
func (m Manifest) CatalogByTypeID(typeName, id string) (ManifestCatalog, bool) {
	for _, c := range m.Catalogs {
		if c.Type == typeName && c.ID == id {
			return c, true
		}
	}
	return ManifestCatalog{}, false
}

// IsSupported decides whether this add-on can answer ref. The catalog case
// checks the catalog table plus the extras envelope; every other case
// checks the declared resource against its type/id-prefix filters.
func (m Manifest) IsSupported(ref ResourceRef) bool {
	switch ref.Resource {
	case "catalog", "addon_catalog":
		resourceName := ref.Resource
		if _, ok := m.ResourceByName(resourceName); !ok {
			// Some manifests only list "catalog" in Resources but still
			// serve addon_catalog entries through the Catalogs table;
			// fall through to the catalog-table check regardless.
			if resourceName == "addon_catalog" {
				if _, ok := m.ResourceByName("catalog"); !ok {
					return false
				}
			} else {
				return false
			}
		}
		cat, ok := m.CatalogByTypeID(ref.Type, ref.ID)
		if !ok {
			return false
		}
		return cat.FulfillsRequired(ref.Extra) && cat.SupportsExtra(ref.Extra)
	default:
		res, ok := m.ResourceByName(ref.Resource)
		if !ok {
			return false
		}
		if len(res.Types) > 0 && !containsString(res.Types, ref.Type) {
			return false
		}
		if len(res.IDPrefixes) > 0 {
			matched := false
			for _, p := range res.IDPrefixes {
				if strings.HasPrefix(ref.ID, p) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}
}
