// Package config loads the service configuration from photobooth.toml, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultPath = "photobooth.toml"

	CameraFeed     = "feed"
	CameraStill    = "still"
	CameraDisabled = "disabled"

	RemBGGemini   = "gemini"
	RemBGBiRefNet = "birefnet"
	RemBGDisabled = "disabled"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Camera   CameraConfig   `toml:"camera"`
	Session  SessionConfig  `toml:"session"`
	RemBG    RemBGConfig    `toml:"rembg"`
	Telegram TelegramConfig `toml:"telegram"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	LogLevel       string   `toml:"log_level"`
	LogFormat      string   `toml:"log_format"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// Requests per second per client IP; 0 disables the limiter.
	RateLimit      float64 `toml:"rate_limit"`
	RateBurst      int     `toml:"rate_burst"`
	MaxUploadBytes int64   `toml:"max_upload_bytes"`
	// Largest accepted video frame, in pixels.
	MaxFramePixels int `toml:"max_frame_pixels"`
}

type CameraConfig struct {
	// feed, still or disabled
	Mode string `toml:"mode"`
	// Path or URL of the still image, for mode "still".
	Still string `toml:"still"`
	// Optional font file used for emoji stickers and the crown.
	GlyphFont string `toml:"glyph_font"`
}

type SessionConfig struct {
	TTL               string `toml:"ttl"`
	ReaperSchedule    string `toml:"reaper_schedule"`
	CountdownInterval string `toml:"countdown_interval"`
}

type RemBGConfig struct {
	// gemini, birefnet or disabled
	Provider      string `toml:"provider"`
	GeminiModel   string `toml:"gemini_model"`
	GeminiBaseURL string `toml:"gemini_base_url"`
	GeminiAPIKey  string `toml:"-"`
	ComfyUIURL    string `toml:"comfyui_url"`
}

// TelegramConfig credentials only ever come from the environment.
type TelegramConfig struct {
	APIURL   string `toml:"api_url"`
	BotToken string `toml:"-"`
	ChatID   string `toml:"-"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			LogLevel:       "info",
			LogFormat:      "text",
			AllowedOrigins: []string{"*"},
			RateLimit:      20,
			RateBurst:      40,
			MaxUploadBytes: 16 << 20,
			MaxFramePixels: 4096 * 4096,
		},
		Camera: CameraConfig{Mode: CameraFeed},
		Session: SessionConfig{
			TTL:               "30m",
			ReaperSchedule:    "@every 1m",
			CountdownInterval: "1s",
		},
		RemBG: RemBGConfig{
			Provider:      RemBGGemini,
			GeminiModel:   "gemini-2.5-flash-image",
			GeminiBaseURL: "https://generativelanguage.googleapis.com",
		},
		Telegram: TelegramConfig{APIURL: "https://api.telegram.org"},
	}
}

// Load reads path (a missing file is fine), then .env, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("PHOTOBOOTH_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("no config file, using defaults", "path", path)
	case err != nil:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "PHOTOBOOTH_ADDR")
	setString(&c.Server.LogLevel, "PHOTOBOOTH_LOG_LEVEL")
	setString(&c.RemBG.Provider, "PHOTOBOOTH_REMBG")
	setString(&c.RemBG.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.RemBG.ComfyUIURL, "COMFYUI_URL")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Telegram.APIURL, "TELEGRAM_API_URL")

	// PHOTOBOOTH_CAMERA is a mode, or the location of a still image.
	if v := os.Getenv("PHOTOBOOTH_CAMERA"); v != "" {
		switch v {
		case CameraFeed, CameraDisabled:
			c.Camera.Mode = v
		default:
			c.Camera.Mode = CameraStill
			c.Camera.Still = v
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.Camera.Mode {
	case CameraFeed, CameraDisabled:
	case CameraStill:
		if c.Camera.Still == "" {
			errs = append(errs, errors.New("camera.still is required in still mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown camera mode %q", c.Camera.Mode))
	}

	switch c.RemBG.Provider {
	case RemBGGemini, RemBGDisabled:
	case RemBGBiRefNet:
		if c.RemBG.ComfyUIURL == "" {
			errs = append(errs, errors.New("rembg.comfyui_url is required for birefnet"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown rembg provider %q", c.RemBG.Provider))
	}

	for name, v := range map[string]string{
		"session.ttl":                c.Session.TTL,
		"session.countdown_interval": c.Session.CountdownInterval,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if _, err := ParseLevel(c.Server.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TTL and CountdownInterval are validated by Load.
func (s SessionConfig) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(s.TTL)
	return d
}

func (s SessionConfig) Countdown() time.Duration {
	d, _ := time.ParseDuration(s.CountdownInterval)
	return d
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
