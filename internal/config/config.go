package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for Vitalens
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	AI        AIConfig        `mapstructure:"ai"`
	Security  SecurityConfig  `mapstructure:"security"`
	Reminders RemindersConfig `mapstructure:"reminders"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds record store settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	BadgerPath string `mapstructure:"badger_path"`
	AuditPath  string `mapstructure:"audit_path"`
	InMemory   bool   `mapstructure:"in_memory"`
}

// AIConfig holds generative model settings
type AIConfig struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	TextModel         string `mapstructure:"text_model"`
	ImageModel        string `mapstructure:"image_model"`
	Timeout           int    `mapstructure:"timeout"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// SecurityConfig holds auth settings
type SecurityConfig struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	TokenTTLHours int      `mapstructure:"token_ttl_hours"`
	AllowOrigins  []string `mapstructure:"allow_origins"`
}

// RemindersConfig holds appointment reminder settings
type RemindersConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.SetDefault("storage.badger_path", filepath.Join(dataDir, "records"))
	v.SetDefault("storage.audit_path", filepath.Join(dataDir, "audit.db"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "vitalens.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (VITALENS_SERVER_PORT, VITALENS_AI_API_KEY, etc.)
	v.SetEnvPrefix("VITALENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("storage.in_memory", false)

	v.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.text_model", "gemini-2.0-flash")
	v.SetDefault("ai.image_model", "gemini-2.0-flash-preview-image-generation")
	v.SetDefault("ai.timeout", 60)
	v.SetDefault("ai.requests_per_minute", 0)

	v.SetDefault("security.token_ttl_hours", 24)
	v.SetDefault("security.allow_origins", []string{"*"})

	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 8 * * *")
}

func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vitalens"
	}
	return filepath.Join(home, ".vitalens")
}

// loadEnvOverrides covers keys viper's AutomaticEnv misses on nested structs.
func loadEnvOverrides(cfg *Config) {
	cfg.AI.APIKey = getEnv("VITALENS_AI_API_KEY", cfg.AI.APIKey)
	if cfg.AI.APIKey == "" {
		// Fall back to the conventional provider variables.
		cfg.AI.APIKey = getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", ""))
	}
	cfg.Security.JWTSecret = getEnv("VITALENS_SECURITY_JWT_SECRET", cfg.Security.JWTSecret)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}

	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = generateRandomString(32)
	}

	return nil
}

func generateRandomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}
