package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"cipherkeeper/internal/app/client/profile"
)

const (
	envPath = ".env"

	defaultEnv           = "local"
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultConfigDir     = ".cipherkeeper"
	defaultPageSize      = 50
)

type Config struct {
	Env           string
	ServerAddress string
	EnableTLS     bool
	LogLevel      string
	ProfilePath   string
	Profile       string
	KDF           profile.KDF
	// Passphrase - пароль профиля для неинтерактивного запуска
	Passphrase string
	// RevokeRemovesKey - при отзыве удалять и ключ читателя, а не только политику
	RevokeRemovesKey bool
	PageSize         int
}

// Load читает .env (если он есть) и переменные окружения
func Load() (*Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("PROFILE_PATH", filepath.Join(homeDir, defaultConfigDir, "profiles.db"))
	v.SetDefault("PROFILE", profile.DefaultName)
	v.SetDefault("PROFILE_KDF", string(profile.KDFArgon2id))
	v.SetDefault("REVOKE_REMOVES_KEY", false)
	v.SetDefault("QUERY_PAGE_SIZE", defaultPageSize)

	cfg := &Config{
		Env:              v.GetString("APP_ENV"),
		ServerAddress:    v.GetString("SERVER_ADDRESS"),
		EnableTLS:        v.GetBool("ENABLE_TLS"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		ProfilePath:      v.GetString("PROFILE_PATH"),
		Profile:          v.GetString("PROFILE"),
		KDF:              profile.KDF(v.GetString("PROFILE_KDF")),
		Passphrase:       v.GetString("CIPHERKEEPER_PASSPHRASE"),
		RevokeRemovesKey: v.GetBool("REVOKE_REMOVES_KEY"),
		PageSize:         v.GetInt("QUERY_PAGE_SIZE"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("SERVER_ADDRESS must not be empty")
	}
	if c.ProfilePath == "" {
		return fmt.Errorf("PROFILE_PATH must not be empty")
	}
	switch c.KDF {
	case profile.KDFArgon2id, profile.KDFPBKDF2:
	default:
		return fmt.Errorf("PROFILE_KDF must be %s or %s, got %q", profile.KDFArgon2id, profile.KDFPBKDF2, c.KDF)
	}
	if c.PageSize <= 0 || c.PageSize > 1000 {
		return fmt.Errorf("QUERY_PAGE_SIZE must be in 1..1000, got %d", c.PageSize)
	}
	return nil
}
