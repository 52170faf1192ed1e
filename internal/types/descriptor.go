package types

// DescriptorFlags carries add-on metadata outside the manifest proper.
type DescriptorFlags struct {
	Official  bool
	Protected bool
	Extra     map[string]string
}

// Descriptor is an installed (or installable) add-on: its manifest, its
// transport URL (= manifest URL, the add-on's identity), and flags.
type Descriptor struct {
	Manifest     Manifest
	TransportURL string
	Flags        DescriptorFlags
}

// OfficialAddon is one entry of the compiled-in official add-on table
// (§9 "Global defaults" — process-wide, no runtime mutation).
type OfficialAddon struct {
	TransportURL string
	Descriptor   Descriptor
}

// officialAddons is seeded at package init and never mutated afterwards.
// A real deployment would populate this from the shipped set of
// known-good add-ons; the core only requires that it is non-empty so
// that invariant I1 (profile.addons is non-empty) holds from process
// start.
var officialAddons = []OfficialAddon{
	{
		TransportURL: "https://v3-cinemeta.strem.io/manifest.json",
		Descriptor: Descriptor{
			TransportURL: "https://v3-cinemeta.strem.io/manifest.json",
			Manifest: Manifest{
				ID:      "com.linvo.cinemeta",
				Version: "1.0.0",
				Name:    "Cinemeta",
				Types:   []string{"movie", "series"},
				Resources: []ManifestResource{
					{Name: "catalog", Types: []string{"movie", "series"}},
					{Name: "meta", Types: []string{"movie", "series"}},
				},
				Catalogs: []ManifestCatalog{
					{Type: "movie", ID: "top", Name: "Popular",
						Extra: []ExtraProp{{Name: "skip"}, {Name: "genre"}, {Name: "search"}}},
					{Type: "series", ID: "top", Name: "Popular",
						Extra: []ExtraProp{{Name: "skip"}, {Name: "genre"}, {Name: "search"}}},
				},
			},
			Flags: DescriptorFlags{Official: true, Protected: true},
		},
	},
	{
		TransportURL: "https://v3-opensubtitles.strem.io/manifest.json",
		Descriptor: Descriptor{
			TransportURL: "https://v3-opensubtitles.strem.io/manifest.json",
			Manifest: Manifest{
				ID:      "org.stremio.opensubtitles",
				Version: "1.0.0",
				Name:    "OpenSubtitles",
				Types:   []string{"movie", "series"},
				Resources: []ManifestResource{
					{Name: "subtitles", Types: []string{"movie", "series"}},
				},
			},
			Flags: DescriptorFlags{Official: true, Protected: true},
		},
	},
}

// OfficialAddons returns the compiled-in official add-on set, used to seed
// a fresh Profile (§3 Profile invariant) and to copy flags onto a
// synthetic Descriptor when an AddonDetails request's URL happens to match
// one (§4.9).
func OfficialAddons() []Descriptor {
	out := make([]Descriptor, len(officialAddons))
	for i, a := range officialAddons {
		out[i] = a.Descriptor
	}
	return out
}

// OfficialFlagsFor returns the DescriptorFlags registered for
// transportURL, and whether an entry was found.
func OfficialFlagsFor(transportURL string) (DescriptorFlags, bool) {
	for _, a := range officialAddons {
		if a.TransportURL == transportURL {
			return a.Descriptor.Flags, true
		}
	}
	return DescriptorFlags{}, false
}
