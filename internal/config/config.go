// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Portal    PortalConfig    `mapstructure:"portal"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	State     StateConfig     `mapstructure:"state"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PortalConfig identifies the portal and the authenticated session.
type PortalConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ListingURL string `mapstructure:"listing_url"`
	Cookie     string `mapstructure:"cookie"`
	UserAgent  string `mapstructure:"user_agent"`
}

// FetchConfig governs page retrieval behavior.
type FetchConfig struct {
	// Renderer selects the fetcher: "colly" for static pages, "chromedp"
	// when the portal view needs JavaScript to populate its tables.
	Renderer          string `mapstructure:"renderer"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	NavTimeoutSeconds int    `mapstructure:"nav_timeout_seconds"`
	DelaySeconds      int    `mapstructure:"delay_seconds"`
}

// StateConfig locates the durable traversal-state database.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// RemoteConfig selects and configures the remote record store.
type RemoteConfig struct {
	// Provider is one of "supabase", "postgres", or "noop".
	Provider string         `mapstructure:"provider"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// SupabaseConfig holds PostgREST endpoint credentials.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	JobsTable  string `mapstructure:"jobs_table"`
	ItemsTable string `mapstructure:"items_table"`
}

// PostgresConfig holds the direct database connection string.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// PublisherConfig configures downstream record announcements.
type PublisherConfig struct {
	// Provider is "pubsub" or "noop".
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// ArchiveConfig configures raw-page snapshot retention.
type ArchiveConfig struct {
	// Provider is one of "fs", "gcs", or "noop".
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
}

// ServerConfig controls the operational HTTP endpoint.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MAINTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("portal.user_agent", "maintsync/1.0")
	v.SetDefault("fetch.renderer", "colly")
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.nav_timeout_seconds", 45)
	v.SetDefault("fetch.delay_seconds", 2)
	v.SetDefault("state.path", "maintsync-state.db")
	v.SetDefault("remote.provider", "noop")
	v.SetDefault("remote.supabase.jobs_table", "maintenance_jobs")
	v.SetDefault("remote.supabase.items_table", "maintenance_items")
	v.SetDefault("publisher.provider", "noop")
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.prefix", "snapshots")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Portal.ListingURL == "" {
		return fmt.Errorf("portal.listing_url must be set")
	}
	switch c.Fetch.Renderer {
	case "colly", "chromedp":
	default:
		return fmt.Errorf("fetch.renderer must be colly or chromedp")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.DelaySeconds < 0 {
		return fmt.Errorf("fetch.delay_seconds must be >= 0")
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path must be set")
	}
	switch c.Remote.Provider {
	case "supabase":
		if c.Remote.Supabase.URL == "" || c.Remote.Supabase.APIKey == "" {
			return fmt.Errorf("remote.supabase.url and api_key must be set")
		}
	case "postgres":
		if c.Remote.Postgres.DSN == "" {
			return fmt.Errorf("remote.postgres.dsn must be set")
		}
	case "noop":
	default:
		return fmt.Errorf("remote.provider must be supabase, postgres, or noop")
	}
	switch c.Publisher.Provider {
	case "pubsub":
		if c.Publisher.ProjectID == "" || c.Publisher.TopicID == "" {
			return fmt.Errorf("publisher.project_id and topic_id must be set")
		}
	case "noop":
	default:
		return fmt.Errorf("publisher.provider must be pubsub or noop")
	}
	switch c.Archive.Provider {
	case "fs":
		if c.Archive.Dir == "" {
			return fmt.Errorf("archive.dir must be set")
		}
	case "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket must be set")
		}
	case "noop":
	default:
		return fmt.Errorf("archive.provider must be fs, gcs, or noop")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// FetchTimeout converts the fetch timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// NavTimeout converts the navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Fetch.NavTimeoutSeconds) * time.Second
}

// Pace converts the inter-page delay into a duration.
func (c Config) Pace() time.Duration {
	return time.Duration(c.Fetch.DelaySeconds) * time.Second
}
