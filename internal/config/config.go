package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the interpreter backend.
type Config struct {
	Gemini  GeminiConfig
	Audio   AudioConfig
	Store   StoreConfig
	Session SessionConfig
	Log     LogConfig
}

type GeminiConfig struct {
	APIKey     string
	APIBaseURL string
	LiveModel  string
	TextModel  string
}

type AudioConfig struct {
	RecorderCommand  string
	PlayerCommand    string
	InputFormat      string
	InputDevice      string
	MonitorDevice    string
	SampleRate       int
	Channels         int
	OutputSampleRate int
	OutputEnabled    bool
}

type StoreConfig struct {
	Dir string
}

type SessionConfig struct {
	ChunkSize int
}

type LogConfig struct {
	Level string
}

// Load resolves configuration from a local .env file (if present),
// environment variables, and sensible defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	storeDir := strings.TrimSpace(os.Getenv("TERCUMAN_DATA_DIR"))
	if storeDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, errors.New("could not determine user config directory")
		}
		storeDir = filepath.Join(base, "tercuman")
	}

	cfg := Config{
		Gemini: GeminiConfig{
			APIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			APIBaseURL: envOrDefault("TERCUMAN_API_BASE", "https://generativelanguage.googleapis.com"),
			LiveModel:  envOrDefault("TERCUMAN_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
			TextModel:  envOrDefault("TERCUMAN_TEXT_MODEL", "gemini-3-flash-preview"),
		},
		Audio: AudioConfig{
			RecorderCommand:  envOrDefault("TERCUMAN_FFMPEG_COMMAND", "ffmpeg"),
			PlayerCommand:    envOrDefault("TERCUMAN_FFPLAY_COMMAND", "ffplay"),
			InputFormat:      envOrDefault("TERCUMAN_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:      envOrDefault("TERCUMAN_AUDIO_INPUT_DEVICE", "default"),
			MonitorDevice:    envOrDefault("TERCUMAN_AUDIO_MONITOR_DEVICE", "default.monitor"),
			SampleRate:       envOrDefaultInt("TERCUMAN_SAMPLE_RATE", 16000),
			Channels:         envOrDefaultInt("TERCUMAN_CHANNELS", 1),
			OutputSampleRate: envOrDefaultInt("TERCUMAN_OUTPUT_SAMPLE_RATE", 24000),
			OutputEnabled:    envOrDefaultBool("TERCUMAN_AUDIO_OUTPUT", true),
		},
		Store: StoreConfig{
			Dir: storeDir,
		},
		Session: SessionConfig{
			ChunkSize: envOrDefaultInt("TERCUMAN_AUDIO_CHUNK_SIZE", 4096),
		},
		Log: LogConfig{
			Level: envOrDefault("TERCUMAN_LOG_LEVEL", "info"),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.OutputSampleRate <= 0 {
		cfg.Audio.OutputSampleRate = 24000
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
