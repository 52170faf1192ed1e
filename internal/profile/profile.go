// Package profile holds the pure business rules for mutating a
// types.Profile: installing/uninstalling add-ons and updating settings
// (spec.md §3, §8 scenarios 1-3). It has no knowledge of the runtime,
// storage, or HTTP — internal/ctxcore calls into this package and decides
// what effects (persistence, API pushes) follow from the result.
package profile

import (
	"encoding/json"
	"reflect"

	"github.com/addonify/core/internal/types"
)

// InstallAddon appends d to p.Addons unless an add-on with the same
// transport URL is already installed, in which case it replaces it in
// place (re-installing is idempotent, matching official add-ons'
// protected-flag re-seeding on every NewProfile call). Returns the
// updated Profile and whether anything actually changed.
func InstallAddon(p types.Profile, d types.Descriptor) (types.Profile, bool) {
	for i, existing := range p.Addons {
		if existing.TransportURL == d.TransportURL {
			if reflect.DeepEqual(existing, d) {
				return p, false
			}
			out := cloneAddons(p)
			out.Addons[i] = d
			return out, true
		}
	}
	out := cloneAddons(p)
	out.Addons = append(out.Addons, d)
	return out, true
}

// UninstallAddon removes the add-on with the given transport URL, unless
// it is flagged Protected (§8 scenario 3 "uninstall protected"), in which
// case it is a no-op. Returns the updated Profile and whether the add-on
// was actually removed.
func UninstallAddon(p types.Profile, transportURL string) (types.Profile, bool) {
	for i, existing := range p.Addons {
		if existing.TransportURL != transportURL {
			continue
		}
		if existing.Flags.Protected {
			return p, false
		}
		out := cloneAddons(p)
		out.Addons = append(out.Addons[:i:i], out.Addons[i+1:]...)
		return out, true
	}
	return p, false
}

// UpdateSettings replaces p.Settings with s.
func UpdateSettings(p types.Profile, s types.Settings) types.Profile {
	p.Settings = s
	return p
}

// Authenticated sets p.Auth and reports whether that actually changed
// anything (a no-op re-authenticate with the identical Auth is not a
// change).
func Authenticated(p types.Profile, auth types.Auth) (types.Profile, bool) {
	if p.Auth != nil && *p.Auth == auth {
		return p, false
	}
	p.Auth = &auth
	return p, true
}

// LoggedOut clears p.Auth (§4.3 "on logout, the local reset MUST happen
// immediately").
func LoggedOut(p types.Profile) types.Profile {
	p.Auth = nil
	return p
}

func cloneAddons(p types.Profile) types.Profile {
	out := p
	out.Addons = append([]types.Descriptor(nil), p.Addons...)
	return out
}

// Serialize returns the canonical JSON form of p, used both for wire
// persistence and for the before/after equality check that decides
// whether to emit Internal.ProfileChanged (§4.3).
func Serialize(p types.Profile) []byte {
	b, _ := json.Marshal(p)
	return b
}

// Deserialize parses Serialize's output. A nil/empty blob yields a fresh
// anonymous profile with the official add-on set — there is no persisted
// "empty profile" state distinct from "never persisted".
func Deserialize(blob []byte) (types.Profile, error) {
	if len(blob) == 0 {
		return types.NewProfile(), nil
	}
	var p types.Profile
	if err := json.Unmarshal(blob, &p); err != nil {
		return types.Profile{}, err
	}
	return p, nil
}
