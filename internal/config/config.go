package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

const (
	DefaultPort     = "3000"
	DefaultBasePath = "/gemini-image-studio/"
)

// apiKeyEnvNames は環境のキーを探す順序です。
var apiKeyEnvNames = []string{"GEMINI_API_KEY", "VITE_API_KEY", "API_KEY"}

// Config はプロセス起動時に環境変数から読み込む設定です。
type Config struct {
	APIKey       string // 空でも起動できる（利用者がキーを持ち込む）
	Port         string
	BasePath     string
	DefaultModel domain.GenerationModel
	LogLevel     slog.Level
}

// Load は .env があれば読み込んだうえで環境変数から設定を組み立てます。
// .env が存在しないことはエラーではありません。
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf(".envの読み込みに失敗しました: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv は getenv から設定を組み立てます。
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		APIKey:       lookupAPIKey(getenv),
		Port:         getEnv(getenv, "PORT", DefaultPort),
		BasePath:     normalizeBasePath(getEnv(getenv, "BASE_PATH", DefaultBasePath)),
		DefaultModel: domain.GenerationModel(getEnv(getenv, "DEFAULT_MODEL", string(domain.ModelProImage))),
	}

	if !cfg.DefaultModel.Valid() {
		return nil, fmt.Errorf("DEFAULT_MODEL が不正です: %q", cfg.DefaultModel)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv(getenv, "LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL が不正です: %w", err)
	}

	return cfg, nil
}

// HasAPIKey は環境のキーが設定されているかどうかを返します。
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// Addr は待ち受けアドレスです。
func (c *Config) Addr() string {
	return ":" + c.Port
}

func lookupAPIKey(getenv func(string) string) string {
	for _, name := range apiKeyEnvNames {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func getEnv(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

// normalizeBasePath はベースパスを "/xxx/" の形に揃えます。
func normalizeBasePath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return p
	}
	return p + "/"
}
