package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for CareScan
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Predict     PredictConfig     `mapstructure:"predict"`
	Identity    IdentityConfig    `mapstructure:"identity"`
	Security    SecurityConfig    `mapstructure:"security"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	BadgerPath string `mapstructure:"badger_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// PredictConfig holds the external prediction endpoint settings.
// One endpoint per condition; timeout applies to every outbound call.
type PredictConfig struct {
	SkinURL         string `mapstructure:"skin_url"`
	PneumoniaURL    string `mapstructure:"pneumonia_url"`
	LungCancerURL   string `mapstructure:"lung_cancer_url"`
	DiabetesURL     string `mapstructure:"diabetes_url"`
	HypertensionURL string `mapstructure:"hypertension_url"`
	CKDURL          string `mapstructure:"ckd_url"`
	Timeout         int    `mapstructure:"timeout"`
}

// IdentityConfig holds identity provider settings. The provider is only
// consulted for display identity; every record operation works without it.
type IdentityConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Timeout   int    `mapstructure:"timeout"`
}

// SecurityConfig holds security settings
type SecurityConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// MaintenanceConfig holds background maintenance settings
type MaintenanceConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	GCSchedule  string `mapstructure:"gc_schedule"`
	LogSchedule string `mapstructure:"log_schedule"`
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
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir, "carescan.db"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "carescan.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (CARESCAN_SERVER_PORT, CARESCAN_PREDICT_SKIN_URL, etc.)
	v.SetEnvPrefix("CARESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	// Prediction endpoint defaults match the deployed model spaces
	v.SetDefault("predict.skin_url", "https://walgar-skin-2.hf.space/predict")
	v.SetDefault("predict.pneumonia_url", "https://walgar-pneumonia.hf.space/predict")
	v.SetDefault("predict.lung_cancer_url", "https://walgar-lung.hf.space/predict")
	v.SetDefault("predict.diabetes_url", "https://walgar-diabetes.hf.space/predict")
	v.SetDefault("predict.hypertension_url", "https://walgar-hyper.hf.space/predict")
	v.SetDefault("predict.ckd_url", "https://walgar-ckd.hf.space/predict")
	v.SetDefault("predict.timeout", 60)

	// Identity defaults
	v.SetDefault("identity.timeout", 10)

	// Security defaults
	v.SetDefault("security.allow_origins", []string{"*"})

	// Maintenance defaults
	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.gc_schedule", "@every 1h")
	v.SetDefault("maintenance.log_schedule", "@daily")
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "carescan")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "carescan")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	for name, url := range map[string]string{
		"skin":         cfg.Predict.SkinURL,
		"pneumonia":    cfg.Predict.PneumoniaURL,
		"lung_cancer":  cfg.Predict.LungCancerURL,
		"diabetes":     cfg.Predict.DiabetesURL,
		"hypertension": cfg.Predict.HypertensionURL,
		"ckd":          cfg.Predict.CKDURL,
	} {
		if url == "" {
			return fmt.Errorf("missing %s prediction endpoint", name)
		}
	}
	return nil
}
