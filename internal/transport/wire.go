package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/types"
)

// Wire shapes mirror the add-on protocol JSON verbatim (camelCase,
// string timestamps) and are decoded into the core's internal types at
// the transport boundary: decode raw, then convert.

type wireExtraProp struct {
	Name         string   `json:"name"`
	IsRequired   bool     `json:"isRequired"`
	Options      []string `json:"options"`
	OptionsLimit int      `json:"optionsLimit"`
}

type wireCatalog struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Extra []wireExtraProp `json:"extra"`
}

type wireManifest struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Background  string `json:"background"`
	Contact     string `json:"contact"`
	Resources   []struct {
		Name       string   `json:"name"`
		Types      []string `json:"types"`
		IDPrefixes []string `json:"idPrefixes"`
	} `json:"resources"`
	Types    []string      `json:"types"`
	Catalogs []wireCatalog `json:"catalogs"`
}

func (w wireManifest) toManifest() types.Manifest {
	m := types.Manifest{
		ID:          w.ID,
		Version:     w.Version,
		Name:        w.Name,
		Description: w.Description,
		Logo:        w.Logo,
		Background:  w.Background,
		Contact:     w.Contact,
		Types:       w.Types,
	}
	for _, r := range w.Resources {
		m.Resources = append(m.Resources, types.ManifestResource{
			Name: r.Name, Types: r.Types, IDPrefixes: r.IDPrefixes,
		})
	}
	for _, c := range w.Catalogs {
		catalog := types.ManifestCatalog{Type: c.Type, ID: c.ID, Name: c.Name}
		for _, e := range c.Extra {
			catalog.Extra = append(catalog.Extra, types.ExtraProp{
				Name: e.Name, IsRequired: e.IsRequired, Options: e.Options, OptionsLimit: e.OptionsLimit,
			})
		}
		m.Catalogs = append(m.Catalogs, catalog)
	}
	return m
}

type wireMetaPreview struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Poster      string   `json:"poster"`
	PosterShape string   `json:"posterShape"`
	Description string   `json:"description"`
	ReleaseInfo string   `json:"releaseInfo"`
	Released    string   `json:"released"`
	Genres      []string `json:"genres"`
}

func (w wireMetaPreview) toMetaPreview() types.MetaPreview {
	return types.MetaPreview{
		ID:          w.ID,
		Type:        w.Type,
		Name:        w.Name,
		Poster:      w.Poster,
		PosterShape: types.PosterShape(w.PosterShape),
		Description: w.Description,
		ReleaseInfo: w.ReleaseInfo,
		Released:    parseWireTimestamp(w.Released),
		Genres:      w.Genres,
	}
}

type wireVideo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	Released string `json:"released"`
}

type wireMetaDetailed struct {
	wireMetaPreview
	Videos []wireVideo `json:"videos"`
}

func (w wireMetaDetailed) toMetaItemDetailed() types.MetaItemDetailed {
	out := types.MetaItemDetailed{MetaPreview: w.wireMetaPreview.toMetaPreview()}
	for _, v := range w.Videos {
		out.Videos = append(out.Videos, types.Video{
			ID: v.ID, Title: v.Title, Season: v.Season, Episode: v.Episode,
			Released: parseWireTimestamp(v.Released),
		})
	}
	return out
}

type wireStream struct {
	URL         string `json:"url"`
	YoutubeID   string `json:"ytId"`
	InfoHash    string `json:"infoHash"`
	FileIdx     int    `json:"fileIdx"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (w wireStream) toStreamItem() types.StreamItem {
	return types.StreamItem{
		URL: w.URL, YoutubeID: w.YoutubeID, InfoHash: w.InfoHash,
		FileIdx: w.FileIdx, Title: w.Title, Name: w.Name, Description: w.Description,
	}
}

type wireSubtitle struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Lang string `json:"lang"`
}

type wireAddonCatalogItem struct {
	Manifest     wireManifest `json:"manifest"`
	TransportURL string       `json:"transportUrl"`
}

// wireBody is the one-field-meaningful-per-resource response body every
// current-protocol resource call returns.
type wireBody struct {
	Metas         []wireMetaPreview      `json:"metas"`
	MetasDetailed []wireMetaDetailed     `json:"metasDetailed"`
	Meta          *wireMetaDetailed      `json:"meta"`
	Streams       []wireStream           `json:"streams"`
	Subtitles     []wireSubtitle         `json:"subtitles"`
	AddonCatalog  []wireAddonCatalogItem `json:"addons"`
}

// decodeResponse converts raw wire JSON into a ResourceResponse, validating
// the decoded shape against the arm resource is expected to produce
// (§7 "UnexpectedResponse when the decoded body doesn't match the expected
// arm").
func decodeResponse(resource string, raw []byte) (types.ResourceResponse, error) {
	want, ok := types.ExpectedKindForResource(resource)
	if !ok {
		return types.ResourceResponse{}, corerr.UnexpectedResponse(fmt.Sprintf("unknown resource %q", resource))
	}

	var body wireBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return types.ResourceResponse{}, corerr.UnexpectedResponse("invalid JSON: " + err.Error())
	}

	resp := types.ResourceResponse{Kind: want}
	switch want {
	case types.ResponseKindMetas:
		if len(body.Metas) == 0 && len(body.MetasDetailed) > 0 {
			return types.ResourceResponse{}, corerr.UnexpectedResponse("expected metas, got metasDetailed")
		}
		for _, m := range body.Metas {
			resp.Metas = append(resp.Metas, m.toMetaPreview())
		}
	case types.ResponseKindMeta:
		if body.Meta == nil {
			return types.ResourceResponse{}, corerr.UnexpectedResponse("expected meta, got none")
		}
		meta := body.Meta.toMetaItemDetailed()
		resp.Meta = &meta
	case types.ResponseKindStreams:
		for _, s := range body.Streams {
			resp.Streams = append(resp.Streams, s.toStreamItem())
		}
	case types.ResponseKindSubtitles:
		for _, s := range body.Subtitles {
			resp.Subtitles = append(resp.Subtitles, types.SubtitleItem{ID: s.ID, URL: s.URL, Lang: s.Lang})
		}
	case types.ResponseKindAddonCatalog:
		for _, a := range body.AddonCatalog {
			resp.AddonCatalog = append(resp.AddonCatalog, types.AddonCatalogItem{
				Manifest: a.Manifest.toManifest(), TransportURL: a.TransportURL,
			})
		}
	}
	return resp, nil
}

func parseWireTimestamp(s string) *types.Timestamp {
	if s == "" {
		return nil
	}
	t, err := parseFlexibleTime(s)
	if err != nil {
		return nil
	}
	ts := types.FromTime(t)
	return &ts
}

// wireTimeLayouts are the timestamp shapes add-ons are observed to send:
// full RFC3339, a bare date, and a bare year for items that only carry a
// release year.
var wireTimeLayouts = []string{time.RFC3339, "2006-01-02", "2006"}

func parseFlexibleTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
