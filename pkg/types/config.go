// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ServerConfig holds settings for the HTTP front end.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":4000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes caps the multipart request body.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// CORSOrigins lists the origins allowed to call the API ("*" allows any).
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`

	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// WorkspaceConfig controls where per-request scratch directories are created.
type WorkspaceConfig struct {
	// Root is the parent directory for workspaces (default: os.TempDir()).
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// Prefix is prepended to every workspace directory name.
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// CloudConfig holds settings for the cloud PDF API engine.
type CloudConfig struct {
	// Enabled turns the cloud engine on. Credentials are still required.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Prefer makes the cloud engine the primary candidate when it is ready.
	Prefer bool `json:"prefer" yaml:"prefer" mapstructure:"prefer"`

	// ClientID and ClientSecret are the service-principal credentials.
	ClientID     string `json:"client_id" yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty" mapstructure:"client_secret"`

	// BaseURL is the API root; the token endpoint is BaseURL + "/token".
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PollInterval is the pause between job status requests.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`

	// HTTPTimeout bounds each individual HTTP exchange with the API.
	HTTPTimeout time.Duration `json:"http_timeout" yaml:"http_timeout" mapstructure:"http_timeout"`

	// MaxRetries is the number of 429 retries allowed on a status poll.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// Ready reports whether the cloud engine is enabled and fully credentialed.
func (c CloudConfig) Ready() bool {
	return c.Enabled && c.ClientID != "" && c.ClientSecret != ""
}

// UseFirst reports whether the cloud engine should be attempted before the
// local one.
func (c CloudConfig) UseFirst() bool {
	return c.Prefer && c.Ready()
}

// ToolsConfig overrides the executables used by the local engine. An empty
// value means autodetect from the candidate list.
type ToolsConfig struct {
	Soffice     string `json:"soffice" yaml:"soffice" mapstructure:"soffice"`
	Ghostscript string `json:"ghostscript" yaml:"ghostscript" mapstructure:"ghostscript"`
	Pdftoppm    string `json:"pdftoppm" yaml:"pdftoppm" mapstructure:"pdftoppm"`
	Tesseract   string `json:"tesseract" yaml:"tesseract" mapstructure:"tesseract"`
}

// OCRConfig holds settings for searchable-PDF generation.
type OCRConfig struct {
	// DPI is the rasterization resolution for PDF pages.
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// Workers bounds the number of pages recognized concurrently.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// DefaultLanguage is the UI language code used when a request names none.
	DefaultLanguage string `json:"default_language" yaml:"default_language" mapstructure:"default_language"`
}

// CompressConfig holds settings for PDF compression.
type CompressConfig struct {
	// DefaultQuality is the tier used when a request names none.
	DefaultQuality QualityTier `json:"default_quality" yaml:"default_quality" mapstructure:"default_quality"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every setting of the service. It is built once at startup
// and never mutated afterwards.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace" mapstructure:"workspace"`
	Cloud     CloudConfig     `json:"cloud" yaml:"cloud" mapstructure:"cloud"`
	Tools     ToolsConfig     `json:"tools" yaml:"tools" mapstructure:"tools"`
	OCR       OCRConfig       `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Compress  CompressConfig  `json:"compress" yaml:"compress" mapstructure:"compress"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
