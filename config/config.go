package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Frame source kinds accepted in Config.Source.
const (
	SourceScreen  = "screen"
	SourceDisplay = "display"
	SourceImages  = "images"
	SourceCamera  = "camera"
	SourceGDI     = "gdi"
)

// Environment variables read by ApplyEnv.
const (
	EnvSource     = "PIXELSCAN_SOURCE"
	EnvHTTPAddr   = "PIXELSCAN_HTTP_ADDR"
	EnvDebug      = "PIXELSCAN_DEBUG"
	EnvImageDir   = "PIXELSCAN_IMAGE_DIR"
	EnvDecodeMode = "PIXELSCAN_DECODE_MODE"
)

// Config holds runtime configuration for capture, decoding and the app shells.
// Fields may be loaded from a JSON file and overridden by the environment.
type Config struct {
	Debug bool `json:"debug"`

	// Frame source
	Source       string `json:"source"`
	DisplayIndex int    `json:"display_index"`
	CameraDevice string `json:"camera_device"`
	ImageDir     string `json:"image_dir"`

	// Capture region for the screen source; empty means the whole screen.
	SelectionX int `json:"selection_x"`
	SelectionY int `json:"selection_y"`
	SelectionW int `json:"selection_w"`
	SelectionH int `json:"selection_h"`

	CaptureIntervalMs int `json:"capture_interval_ms"`

	// Decoding
	AnalysisScale float64  `json:"analysis_scale"`
	Formats       []string `json:"formats"`
	TryHarder     bool     `json:"try_harder"`

	// Session lifecycle
	StopTimeoutMs int    `json:"stop_timeout_ms"`
	OpenAttempts  int    `json:"open_attempts"`
	OpenBackoffMs int    `json:"open_backoff_ms"`
	MirrorLayout  bool   `json:"mirror_layout"`
	DecodeMode    string `json:"decode_mode"`

	// Headless shell
	HTTPAddr        string `json:"http_addr"`
	HistorySize     int    `json:"history_size"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:             false,
		Source:            SourceScreen,
		CaptureIntervalMs: 100,
		AnalysisScale:     1.0,
		Formats:           []string{"qr_code", "data_matrix", "code_128", "ean_13"},
		TryHarder:         false,
		StopTimeoutMs:     2000,
		OpenAttempts:      3,
		OpenBackoffMs:     250,
		DecodeMode:        "continuous",
		HTTPAddr:          "",
		HistorySize:       50,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	switch c.Source {
	case SourceScreen, SourceDisplay, SourceImages, SourceCamera, SourceGDI:
	default:
		c.Source = SourceScreen
	}
	if c.DisplayIndex < 0 {
		c.DisplayIndex = 0
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	if c.CaptureIntervalMs <= 0 {
		c.CaptureIntervalMs = 100
	}
	if c.AnalysisScale <= 0 || c.AnalysisScale > 1 {
		c.AnalysisScale = 1.0
	}
	if c.StopTimeoutMs <= 0 {
		c.StopTimeoutMs = 2000
	}
	if c.OpenAttempts <= 0 {
		c.OpenAttempts = 1
	}
	if c.OpenBackoffMs < 0 {
		c.OpenBackoffMs = 0
	}
	c.DecodeMode = strings.ToLower(strings.TrimSpace(c.DecodeMode))
	switch c.DecodeMode {
	case "none", "single", "continuous":
	default:
		c.DecodeMode = "continuous"
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 50
	}
	return nil
}

// HasSelection reports whether a capture region is configured.
func (c *Config) HasSelection() bool { return c.SelectionW > 0 && c.SelectionH > 0 }

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// ApplyEnv loads envPath (if non-empty and present) into the process
// environment without overriding variables already set, then applies the
// PIXELSCAN_* overrides to c.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return err
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSource)); v != "" {
		c.Source = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTPAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvImageDir)); v != "" {
		c.ImageDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDecodeMode)); v != "" {
		c.DecodeMode = v
	}
	return c.Validate()
}
