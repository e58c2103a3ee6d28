// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	LiveKit       LiveKitConfig      `mapstructure:"livekit"`
	Supabase      SupabaseConfig     `mapstructure:"supabase"`
	Providers     ProvidersConfig    `mapstructure:"providers"`
	Upload        UploadConfig       `mapstructure:"upload"`
	Schedule      ScheduleConfig     `mapstructure:"schedule"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP API listener settings.
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	FrontendURL    string `mapstructure:"frontend_url"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Addr returns the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the outbound request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Millisecond
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// LiveKitConfig holds the real-time platform credentials. All three of URL,
// APIKey and APISecret must be present before any token can be issued; the
// API reports a server configuration error otherwise.
type LiveKitConfig struct {
	URL       string `mapstructure:"url"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	AgentName string `mapstructure:"agent_name"`
	TokenTTL  int    `mapstructure:"token_ttl"` // minutes
}

// Configured reports whether all required platform credentials are set.
func (l LiveKitConfig) Configured() bool {
	return l.URL != "" && l.APIKey != "" && l.APISecret != ""
}

// TTL returns the token lifetime as a duration.
func (l LiveKitConfig) TTL() time.Duration {
	return time.Duration(l.TokenTTL) * time.Minute
}

// SupabaseConfig holds the object storage backend settings.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
	Bucket     string `mapstructure:"bucket"`
}

// ProvidersConfig holds the speech/LLM provider credentials consumed by the
// agent pipeline and validated by the check-credentials tool.
type ProvidersConfig struct {
	Google struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"google"`
	Deepgram struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"deepgram"`
	ElevenLabs struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"elevenlabs"`
	Tavus struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"tavus"`
}

// UploadConfig holds resume upload limits.
type UploadConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// MaxBytes returns the upload size limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxSizeMB) * 1024 * 1024
}

// ScheduleConfig holds the datetime normalization policy. Offset-less
// scheduling input is assumed to be at OffsetMinutes east of UTC
// (IST, +330, unless overridden) and converted to UTC before storage.
// The field is a pointer so an explicit zero (UTC) is distinguishable
// from unset.
type ScheduleConfig struct {
	DefaultUTCOffsetMinutes *int `mapstructure:"default_utc_offset_minutes"`
}

// OffsetMinutes returns the configured offset for offset-less datetimes,
// defaulting to IST (+330) when unset.
func (s ScheduleConfig) OffsetMinutes() int {
	if s.DefaultUTCOffsetMinutes == nil {
		return 330
	}
	return *s.DefaultUTCOffsetMinutes
}

// NotificationConfig holds settings for interview confirmation delivery.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
