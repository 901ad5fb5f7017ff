package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend selects the codec implementation.
type Backend string

const (
	BackendStdlib Backend = "stdlib"
	BackendVips   Backend = "vips"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	LogFormatZap     = "zap"
)

// EnvPrefix namespaces environment overrides, e.g. RECIPEBOOK_LOG_LEVEL.
const EnvPrefix = "RECIPEBOOK"

// Config is the top-level configuration struct.  Start from Default() and
// override only what you need.
type Config struct {
	// Codec bounds.
	EncodeMaxSide int   // larger side cap before encoding; 0 disables
	DecodeMaxSide int   // larger side cap after decoding; also the sample-size target
	MaxPixels     int64 // header pixel count above which a blob is rejected; 0 = no limit

	// Encode preferences. Formats is tried in order; the first format with a
	// registered encoder wins.
	Formats     []string
	WebPQuality int
	JPEGQuality int
	Lossless    bool // lossless output where the chosen format supports it

	Backend Backend

	// Streaming / memory limits.
	MaxImageBytes int64 // 0 = no limit
	ChunkSize     int   // streaming chunk size in bytes; default 32 KiB

	// Storage.
	DatabasePath string
	PhotoDir     string

	// HTTP.
	ListenAddr string

	LogLevel  string // "debug", "info", "warn", "error"
	LogFormat string // "console" and "json" log through zerolog, "zap" through zap
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		EncodeMaxSide: 2048,
		DecodeMaxSide: 1024,
		MaxPixels:     100_000_000,
		Formats:       []string{"webp", "jpeg"},
		WebPQuality:   80,
		JPEGQuality:   85,
		Backend:       BackendStdlib,
		MaxImageBytes: 32 * 1024 * 1024,
		ChunkSize:     32 * 1024,
		DatabasePath:  "recipes.db",
		PhotoDir:      ".",
		ListenAddr:    ":8080",
		LogLevel:      "info",
		LogFormat:     LogFormatConsole,
	}
}

var knownFormats = map[string]bool{"webp": true, "jpeg": true, "png": true}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.EncodeMaxSide < 0 {
		return errors.New("config: EncodeMaxSide must not be negative")
	}
	if c.DecodeMaxSide <= 0 {
		return errors.New("config: DecodeMaxSide must be positive")
	}
	if c.WebPQuality < 1 || c.WebPQuality > 100 {
		return errors.New("config: WebPQuality must be between 1 and 100")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.New("config: JPEGQuality must be between 1 and 100")
	}
	if len(c.Formats) == 0 {
		return errors.New("config: Formats must list at least one format")
	}
	for _, f := range c.Formats {
		if !knownFormats[f] {
			return fmt.Errorf("config: unknown format %q", f)
		}
	}
	if c.Backend != BackendStdlib && c.Backend != BackendVips {
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.DatabasePath == "" {
		return errors.New("config: DatabasePath is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON, LogFormatZap:
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// Load builds a Config from defaults, an optional config file, an optional
// .env file and RECIPEBOOK_* environment variables, in increasing order of
// precedence. An empty path skips the config file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	d := Default()
	v.SetDefault("encode_max_side", d.EncodeMaxSide)
	v.SetDefault("decode_max_side", d.DecodeMaxSide)
	v.SetDefault("max_pixels", d.MaxPixels)
	v.SetDefault("formats", d.Formats)
	v.SetDefault("webp_quality", d.WebPQuality)
	v.SetDefault("jpeg_quality", d.JPEGQuality)
	v.SetDefault("lossless", d.Lossless)
	v.SetDefault("backend", string(d.Backend))
	v.SetDefault("max_image_bytes", d.MaxImageBytes)
	v.SetDefault("chunk_size", d.ChunkSize)
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("photo_dir", d.PhotoDir)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := Config{
		EncodeMaxSide: v.GetInt("encode_max_side"),
		DecodeMaxSide: v.GetInt("decode_max_side"),
		MaxPixels:     v.GetInt64("max_pixels"),
		Formats:       normalizeFormats(v.GetStringSlice("formats")),
		WebPQuality:   v.GetInt("webp_quality"),
		JPEGQuality:   v.GetInt("jpeg_quality"),
		Lossless:      v.GetBool("lossless"),
		Backend:       Backend(strings.ToLower(v.GetString("backend"))),
		MaxImageBytes: v.GetInt64("max_image_bytes"),
		ChunkSize:     v.GetInt("chunk_size"),
		DatabasePath:  v.GetString("database_path"),
		PhotoDir:      v.GetString("photo_dir"),
		ListenAddr:    v.GetString("listen_addr"),
		LogLevel:      strings.ToLower(v.GetString("log_level")),
		LogFormat:     strings.ToLower(v.GetString("log_format")),
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalizeFormats accepts both list values and a single comma-separated
// string, which is how environment variables arrive.
func normalizeFormats(in []string) []string {
	var out []string
	for _, item := range in {
		for _, f := range strings.Split(item, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "jpg" {
				f = "jpeg"
			}
			if f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}
