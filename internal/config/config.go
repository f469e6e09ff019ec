package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

var (
	SignSrvHost    string
	SignSrvPort    string
	RequestTimeout time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	LogLevel       slog.Leveler
)

// Load reads the .env file (if present) and the process environment.
func Load() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Error loading .env file",
			"error", err.Error())
	}

	SignSrvHost = os.Getenv("SIGN_SRV_HOST")
	if SignSrvHost == "" {
		SignSrvHost = "127.0.0.1"
	}
	SignSrvPort = os.Getenv("SIGN_SRV_PORT")
	if SignSrvPort == "" {
		SignSrvPort = "8989"
	}

	timeoutSec, _ := strconv.Atoi(os.Getenv("REQUEST_TIMEOUT_SECONDS"))
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	RequestTimeout = time.Duration(timeoutSec) * time.Second

	RedisAddr = os.Getenv("REDIS_ADDR")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "INFO"
	}
	LogLevel = parseLogLevel(logLevelStr)
}

// SignSrvEndpoint is the base URL of the signing microservice.
func SignSrvEndpoint() string {
	return fmt.Sprintf("http://%s:%s", SignSrvHost, SignSrvPort)
}

func parseLogLevel(level string) slog.Leveler {
	levels := map[string]slog.Level{
		"ERROR":   slog.LevelError,
		"INFO":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
	}

	l, ok := levels[level]
	if !ok {
		l = slog.LevelInfo
	}

	return l
}

// PlatformTuning overrides per-platform request defaults.
type PlatformTuning struct {
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type Platforms struct {
	Douyin   PlatformTuning `yaml:"douyin"`
	Xhs      PlatformTuning `yaml:"xhs"`
	Bilibili PlatformTuning `yaml:"bilibili"`
	Kuaishou PlatformTuning `yaml:"kuaishou"`
}

// LoadPlatforms parses the optional platforms.yaml tuning file. A
// missing file yields zero-value tuning, so platform defaults apply.
func LoadPlatforms(path string) (*Platforms, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Platforms{}, nil
	}
	if err != nil {
		return nil, err
	}

	var platforms Platforms
	if err := yaml.Unmarshal(data, &platforms); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &platforms, nil
}
