package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Identity string        `yaml:"identity" mapstructure:"identity"`
	Storage  StorageConfig `yaml:"storage" mapstructure:"storage"`
	Extract  ExtractConfig `yaml:"extract" mapstructure:"extract"`
	API      APIConfig     `yaml:"api" mapstructure:"api"`
	Cache    CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Upload   UploadConfig  `yaml:"upload" mapstructure:"upload"`
	Server   ServerConfig  `yaml:"server" mapstructure:"server"`
	Log      LogConfig     `yaml:"log" mapstructure:"log"`
}

// StorageConfig configures the object-storage collaborator.
type StorageConfig struct {
	Driver    string `yaml:"driver" mapstructure:"driver"` // "preset" or "gcs"
	UploadURL string `yaml:"upload_url" mapstructure:"upload_url"`
	Preset    string `yaml:"preset" mapstructure:"preset"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Folder    string `yaml:"folder" mapstructure:"folder"`
}

// ExtractConfig configures the location-extraction collaborator.
type ExtractConfig struct {
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// APIConfig configures the plant persistence collaborator.
type APIConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CacheConfig configures the durable local cache.
type CacheConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// UploadConfig configures batch upload behavior.
type UploadConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLANTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one so environment overrides reach Unmarshal.
	v.SetDefault("identity", "")
	v.SetDefault("storage.driver", "preset")
	v.SetDefault("storage.upload_url", "")
	v.SetDefault("storage.preset", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.folder", "farm-crops")
	v.SetDefault("extract.base_url", "")
	v.SetDefault("extract.rps", 10.0)
	v.SetDefault("api.base_url", "")
	v.SetDefault("cache.path", "plantmap.db")
	v.SetDefault("upload.concurrency", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command needs are present.
func (c *Config) Validate(scope string) error {
	var missing []string

	switch scope {
	case "pipeline":
		if c.Identity == "" {
			missing = append(missing, "identity")
		}
		if c.Extract.BaseURL == "" {
			missing = append(missing, "extract.base_url")
		}
		if c.API.BaseURL == "" {
			missing = append(missing, "api.base_url")
		}
		switch c.Storage.Driver {
		case "preset":
			if c.Storage.UploadURL == "" {
				missing = append(missing, "storage.upload_url")
			}
			if c.Storage.Preset == "" {
				missing = append(missing, "storage.preset")
			}
		case "gcs":
			if c.Storage.Bucket == "" {
				missing = append(missing, "storage.bucket")
			}
		default:
			return eris.Errorf("config: unknown storage driver %q", c.Storage.Driver)
		}
	case "fetch":
		if c.Identity == "" {
			missing = append(missing, "identity")
		}
		if c.API.BaseURL == "" {
			missing = append(missing, "api.base_url")
		}
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
