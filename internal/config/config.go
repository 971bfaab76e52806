package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr            string
		MaxUploadMemory int64
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
		URLExpiry time.Duration
	}
	AWS struct {
		AccessKeyID     string
		SecretAccessKey string
		Profile         string
	}
	Session struct {
		Secret string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:5000")
	v.SetDefault("server.maxuploadmemory", int64(32<<20))
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.urlexpiry", time.Hour)
	v.SetDefault("aws.accesskeyid", "")
	v.SetDefault("aws.secretaccesskey", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage bucket is required")
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("session secret is required")
	}
	if c.Storage.URLExpiry <= 0 {
		return fmt.Errorf("storage url expiry must be positive, got %s", c.Storage.URLExpiry)
	}
	if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
		return errors.New("aws access key id and secret access key must be set together")
	}
	return nil
}

// loadDotEnv populates the process environment from PORTAL_ENV_FILE (default .env).
// Variables already present in the environment take precedence.
func loadDotEnv() {
	path := os.Getenv("PORTAL_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)
}
