// Package config holds process-wide wiring: everything cmd/corehost needs
// to construct a production runtime.Environment and Runtime before the
// first Dispatch, plus the Settings YAML overlay layered on top of the
// compiled-in defaults (SPEC_FULL.md §A.3). Call LoadEnvFile(".env") before
// Load() to source a .env file into the process environment first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v2"

	"github.com/addonify/core/internal/types"
)

// Config holds process wiring: storage location, listen/metrics addresses,
// HTTP client tuning, and the channel capacity the Runtime is constructed
// with.
type Config struct {
	// StoragePath is the sqlite file internal/storage opens. ":memory:"
	// is valid for ephemeral runs.
	StoragePath string
	// ListenAddr is the demo host's HTTP listen address.
	ListenAddr string
	// MetricsAddr is an extra listen address for /metrics; "" (or the same
	// value as ListenAddr) starts no extra listener. cmd/corehost always
	// serves /metrics on ListenAddr's mux as well.
	MetricsAddr string
	// APIURL is the backing API base URL runtime.Environment.APIURL
	// returns, used for Authenticate/PullUserFromAPI/PushUserToAPI calls.
	APIURL string

	// HTTPTimeout is parsed from CORE_HTTP_TIMEOUT. No HTTP client reads
	// it: the API client (httpclient.Default) and the add-on client
	// (transport.NewClient) each use their own fixed timeouts.
	HTTPTimeout time.Duration
	// ChannelCapacity sizes the Runtime's outbound notification buffer
	// (§4.1 "new(initial_model, channel_capacity)").
	ChannelCapacity int

	// SettingsFile optionally overlays compiled-in Settings defaults
	// with a YAML file (§A.3); "" skips the overlay entirely.
	SettingsFile string
}

// Load reads process config from environment variables via the
// getEnv/getEnvInt/getEnvBool/getEnvDuration helper family below, each
// falling back to a compiled-in default when its variable is unset.
func Load() *Config {
	c := &Config{
		StoragePath:     getEnv("CORE_STORAGE_PATH", "./core.db"),
		ListenAddr:      getEnv("CORE_LISTEN_ADDR", ":8080"),
		MetricsAddr:     os.Getenv("CORE_METRICS_ADDR"),
		APIURL:          getEnv("CORE_API_URL", "https://api.strem.io"),
		HTTPTimeout:     getEnvDuration("CORE_HTTP_TIMEOUT", 20*time.Second),
		ChannelCapacity: getEnvInt("CORE_CHANNEL_CAPACITY", 64),
		SettingsFile:    os.Getenv("CORE_SETTINGS_FILE"),
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 20 * time.Second
	}
	if c.ChannelCapacity <= 0 {
		c.ChannelCapacity = 64
	}
	return c
}

// LoadSettings returns the compiled-in Settings defaults (types.
// DefaultSettings), overlaid by c.SettingsFile's YAML contents when set.
// Env vars are not part of the Settings overlay (Settings is a per-user
// domain object, not process wiring); the YAML file is the only override
// layer; every YAML field present simply replaces the corresponding
// default field, and absent fields keep their compiled-in value.
func (c *Config) LoadSettings() (types.Settings, error) {
	s := types.DefaultSettings()
	if c.SettingsFile == "" {
		return s, nil
	}
	raw, err := os.ReadFile(c.SettingsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("config: read settings file: %w", err)
	}
	var overlay settingsOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return s, fmt.Errorf("config: parse settings file: %w", err)
	}
	overlay.applyTo(&s)
	return s, nil
}

// settingsOverlay mirrors types.Settings with every field a pointer, so an
// absent YAML key leaves the compiled-in default untouched instead of
// zeroing it out.
type settingsOverlay struct {
	StreamingServerURL *string `yaml:"streamingServerURL"`
	Language           *string `yaml:"language"`
	SubtitlesLanguage  *string `yaml:"subtitlesLanguage"`
	BingeWatching      *bool   `yaml:"bingeWatching"`
	PlayInBackground   *bool   `yaml:"playInBackground"`
	HardwareDecoding   *bool   `yaml:"hardwareDecoding"`
	SubtitlesSize      *int    `yaml:"subtitlesSize"`
	SubtitleStyling    *struct {
		Size            *int    `yaml:"size"`
		Color           *string `yaml:"color"`
		BackgroundColor *string `yaml:"backgroundColor"`
		Outline         *bool   `yaml:"outline"`
	} `yaml:"subtitleStyling"`
}

func (o settingsOverlay) applyTo(s *types.Settings) {
	if o.StreamingServerURL != nil {
		s.StreamingServerURL = *o.StreamingServerURL
	}
	if o.Language != nil {
		s.Language = *o.Language
	}
	if o.SubtitlesLanguage != nil {
		s.SubtitlesLanguage = *o.SubtitlesLanguage
	}
	if o.BingeWatching != nil {
		s.BingeWatching = *o.BingeWatching
	}
	if o.PlayInBackground != nil {
		s.PlayInBackground = *o.PlayInBackground
	}
	if o.HardwareDecoding != nil {
		s.HardwareDecoding = *o.HardwareDecoding
	}
	if o.SubtitlesSize != nil {
		s.SubtitlesSize = *o.SubtitlesSize
	}
	if o.SubtitleStyling != nil {
		if o.SubtitleStyling.Size != nil {
			s.SubtitleStyling.Size = *o.SubtitleStyling.Size
		}
		if o.SubtitleStyling.Color != nil {
			s.SubtitleStyling.Color = *o.SubtitleStyling.Color
		}
		if o.SubtitleStyling.BackgroundColor != nil {
			s.SubtitleStyling.BackgroundColor = *o.SubtitleStyling.BackgroundColor
		}
		if o.SubtitleStyling.Outline != nil {
			s.SubtitleStyling.Outline = *o.SubtitleStyling.Outline
		}
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
