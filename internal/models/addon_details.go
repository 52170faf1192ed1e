package models

import (
	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// AddonDetails is the descriptor-resolution model behind
// ActionLoadAddonDetails (§4.9): if the selected transport URL matches an
// installed add-on the descriptor resolves immediately; otherwise its
// manifest is fetched and wrapped into a synthetic Descriptor. A second
// request for a transport URL already Loading is a no-op (in-flight dedup).
type AddonDetails struct {
	Selected   string
	Descriptor types.Loadable[types.Descriptor, corerr.ResourceError]

	tracked string // transport URL currently in flight, "" if none
}

// NewAddonDetails builds a zero-value AddonDetails with nothing selected.
func NewAddonDetails() AddonDetails {
	return AddonDetails{Descriptor: types.Loading[types.Descriptor, corerr.ResourceError]()}
}

// Update applies m to d given the current installed add-on set.
func (d *AddonDetails) Update(env runtime.Environment, addons []types.Descriptor, m msg.Msg) runtime.Effects {
	switch a := m.(type) {
	case msg.ActionLoadAddonDetails:
		if d.tracked == a.TransportURL && d.Descriptor.IsLoading() {
			return runtime.Unchanged()
		}
		d.Selected = a.TransportURL
		if installed, ok := descriptorByTransportURL(addons, a.TransportURL); ok {
			d.tracked = ""
			d.Descriptor = types.Ready[types.Descriptor, corerr.ResourceError](installed)
			return runtime.NoEffects()
		}
		d.tracked = a.TransportURL
		d.Descriptor = types.Loading[types.Descriptor, corerr.ResourceError]()
		return runtime.WithEffects(runtime.FromFuture(manifestFuture(env, a.TransportURL)))

	case msg.InternalManifestRequestResult:
		if d.tracked == "" || d.tracked != a.TransportURL {
			return runtime.Unchanged()
		}
		d.tracked = ""
		if a.Err != nil {
			d.Descriptor = types.Err[types.Descriptor, corerr.ResourceError](*a.Err)
			return runtime.NoEffects()
		}
		flags, _ := types.OfficialFlagsFor(a.TransportURL)
		d.Descriptor = types.Ready[types.Descriptor, corerr.ResourceError](types.Descriptor{
			Manifest:     *a.Manifest,
			TransportURL: a.TransportURL,
			Flags:        flags,
		})
		return runtime.NoEffects()

	case msg.ActionUnload:
		if a.Model != "" && a.Model != "AddonDetails" {
			return runtime.Unchanged()
		}
		if d.Selected == "" && d.tracked == "" && d.Descriptor.IsLoading() {
			return runtime.Unchanged()
		}
		d.Selected = ""
		d.tracked = ""
		d.Descriptor = types.Loading[types.Descriptor, corerr.ResourceError]()
		return runtime.NoEffects()

	default:
		return runtime.Unchanged()
	}
}

func descriptorByTransportURL(addons []types.Descriptor, transportURL string) (types.Descriptor, bool) {
	for _, d := range addons {
		if d.TransportURL == transportURL {
			return d, true
		}
	}
	return types.Descriptor{}, false
}
