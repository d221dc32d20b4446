package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// ModelDir holds the ONNX weights files; rembg-compatible exports work
	// as-is (u2net.onnx, u2netp.onnx, ...).
	ModelDir string `env:"VIDEOMATTE_MODEL_DIR" envDefault:"~/.videomatte/models"`

	// OrtLibrary overrides the onnxruntime shared library location when it is
	// not on the default loader path.
	OrtLibrary string `env:"VIDEOMATTE_ORT_LIBRARY" envDefault:""`

	FFmpegBin  string `env:"VIDEOMATTE_FFMPEG"  envDefault:"ffmpeg"`
	FFprobeBin string `env:"VIDEOMATTE_FFPROBE" envDefault:"ffprobe"`

	// TempDir hosts per-run workspaces; empty means the OS temp directory.
	TempDir string `env:"VIDEOMATTE_TEMP_DIR" envDefault:""`

	LogLevel string `env:"VIDEOMATTE_LOG_LEVEL" envDefault:"info"`

	// MetricsPort exposes /metrics when nonzero.
	MetricsPort int `env:"VIDEOMATTE_METRICS_PORT" envDefault:"0"`

	// OTLPEndpoint enables tracing when set (e.g. http://localhost:4318/v1/traces).
	OTLPEndpoint string `env:"VIDEOMATTE_OTLP_ENDPOINT" envDefault:""`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	cfg.ModelDir = expandHome(cfg.ModelDir)

	return cfg, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
