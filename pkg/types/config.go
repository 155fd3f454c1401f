// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s). It bounds each
	// remote call so one hung item cannot stall a batch.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "capsync/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CapacitiesConfig holds settings for the Capacities API client.
type CapacitiesConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIToken is the bearer token for the Capacities API.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`

	// SpaceID is the target space for weblink and daily-note submissions.
	SpaceID string `json:"space_id,omitempty" yaml:"space_id,omitempty"`

	// BaseURL overrides the API endpoint, e.g. for a proxy or a test
	// server. Empty means the public endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// ZoteroConfig holds settings for reading the Zotero library.
type ZoteroConfig struct {
	// Database is the path to zotero.sqlite. Opened read-only.
	Database string `json:"database" yaml:"database"`

	// LinkScheme is the URI scheme for deep links back into the reader
	// application (default "zotero").
	LinkScheme string `json:"link_scheme" yaml:"link_scheme"`
}

// SyncConfig holds settings for the sync service and batch orchestrator.
type SyncConfig struct {
	// RequestDelay is the pacing delay between consecutive submissions
	// (default 1s). The remote API allows 10 requests per 60 seconds.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// StateFile is the path of the preference/state file holding the
	// processed-item set and other mutable state.
	StateFile string `json:"state_file" yaml:"state_file"`

	// WatchWindow is the coalescing window for watch mode: library change
	// events within one window trigger a single sync pass (default 5s).
	WatchWindow time.Duration `json:"watch_window" yaml:"watch_window"`
}

// FormatConfig holds the markdown rendering toggles. All default to enabled.
type FormatConfig struct {
	// IncludePageNumbers toggles the per-annotation page marker.
	IncludePageNumbers bool `json:"include_page_numbers" yaml:"include_page_numbers"`

	// IncludeTags toggles the per-annotation tag line.
	IncludeTags bool `json:"include_tags" yaml:"include_tags"`

	// UseColorEmoji toggles the color marker prefix on each quote.
	UseColorEmoji bool `json:"use_color_emoji" yaml:"use_color_emoji"`
}

// DefaultFormatConfig returns the rendering defaults: everything enabled.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{
		IncludePageNumbers: true,
		IncludeTags:        true,
		UseColorEmoji:      true,
	}
}

// Config groups all component configurations.
type Config struct {
	Capacities CapacitiesConfig `json:"capacities" yaml:"capacities"`
	Zotero     ZoteroConfig     `json:"zotero" yaml:"zotero"`
	Sync       SyncConfig       `json:"sync" yaml:"sync"`
	Format     FormatConfig     `json:"format" yaml:"format"`
}
