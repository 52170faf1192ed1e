package types

// User is the authenticated account bound to a Profile.
type User struct {
	ID    string
	Email string
}

// Auth is the (session key, User) pair stored once authenticated.
type Auth struct {
	Key  string
	User User
}

// AuthRequest identifies one in-flight Authenticate action, used by the
// auth-race policy (§4.3): an incoming CtxAuthResult is ignored unless its
// AuthRequest equals the one embedded in the current Loading(API(_)).
type AuthRequest struct {
	Email    string
	Password string
	Login    bool // true = login, false = register
}

// SubtitleStyling controls subtitle rendering preferences.
type SubtitleStyling struct {
	Size            int
	Color           string
	BackgroundColor string
	Outline         bool
}

// Settings is the user's profile-scoped configuration. Its zero-overlay
// default is fully specified by DefaultSettings (§3 "Settings default is
// fully specified").
type Settings struct {
	StreamingServerURL string
	Language           string
	SubtitlesLanguage  string
	SubtitleStyling    SubtitleStyling
	BingeWatching      bool
	PlayInBackground   bool
	HardwareDecoding   bool
	SubtitlesSize      int
}

// DefaultSettings is the process-wide default Settings value (§9 "Global
// defaults"), used to seed a fresh Profile and as the YAML overlay base
// (SPEC_FULL.md §A.3).
func DefaultSettings() Settings {
	return Settings{
		StreamingServerURL: "http://127.0.0.1:11470",
		Language:           "eng",
		SubtitlesLanguage:  "eng",
		SubtitleStyling: SubtitleStyling{
			Size:  100,
			Color: "#FFFFFFFF",
		},
		BingeWatching:    false,
		PlayInBackground: true,
		HardwareDecoding: true,
		SubtitlesSize:    100,
	}
}

// Profile is auth state + installed add-on list + settings (§3). Invariant
// I1: Addons is always non-empty after any dispatch.
type Profile struct {
	Auth     *Auth
	Addons   []Descriptor
	Settings Settings
}

// NewProfile returns a fresh anonymous Profile seeded with the compiled-in
// official add-on set and default Settings.
func NewProfile() Profile {
	return Profile{
		Addons:   OfficialAddons(),
		Settings: DefaultSettings(),
	}
}

// IsAuthenticated reports whether Auth is set.
func (p Profile) IsAuthenticated() bool {
	return p.Auth != nil
}

// AuthKey returns the session key, or "" if anonymous.
func (p Profile) AuthKey() string {
	if p.Auth == nil {
		return ""
	}
	return p.Auth.Key
}

// AddonByTransportURL returns the installed Descriptor with the given
// transport URL (= identity), if any.
func (p Profile) AddonByTransportURL(transportURL string) (Descriptor, bool) {
	for _, d := range p.Addons {
		if d.TransportURL == transportURL {
			return d, true
		}
	}
	return Descriptor{}, false
}
