// Package config loads orchidlab settings. ORCHIDLAB_* environment variables
// override orchidlab.yaml, which overrides the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"orchidlab/internal/blob"
	"orchidlab/internal/core"
	"orchidlab/internal/infra/blob/s3"
	"orchidlab/internal/validation"
	"orchidlab/pkg/domain"
)

// EnvPrefix prefixes every environment override, e.g. ORCHIDLAB_STORAGE_DRIVER.
const EnvPrefix = "ORCHIDLAB"

// Config is the full application configuration.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Blob       BlobConfig       `mapstructure:"blob"`
	Log        LogConfig        `mapstructure:"log"`
	Validation ValidationConfig `mapstructure:"validation"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=memory sqlite postgres"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresDSN string `mapstructure:"postgres_dsn" validate:"required_if=Driver postgres"`
}

// BlobConfig selects where report artifacts are written.
type BlobConfig struct {
	Driver string   `mapstructure:"driver" validate:"oneof=fs memory s3"`
	FSRoot string   `mapstructure:"fs_root" validate:"required_if=Driver fs"`
	S3     S3Config `mapstructure:"s3"`
}

// S3Config holds bucket coordinates for the s3 blob driver.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	PathStyle       bool   `mapstructure:"path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required_with=AccessKeyID"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// ValidationConfig tunes business-rule behaviour.
type ValidationConfig struct {
	HybridSameSpecies string `mapstructure:"hybrid_same_species" validate:"oneof=block warn"`
	MaturationDays    int    `mapstructure:"maturation_days" validate:"gt=0"`
}

// MetricsConfig controls the Prometheus recorder.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"required_if=Enabled true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "./orchidlab.db")
	v.SetDefault("storage.postgres_dsn", "")

	v.SetDefault("blob.driver", "fs")
	v.SetDefault("blob.fs_root", blob.DefaultFSRoot)
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.region", s3.DefaultRegion)
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.path_style", false)
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("validation.hybrid_same_species", string(validation.HybridSameSpeciesBlock))
	v.SetDefault("validation.maturation_days", domain.DefaultMaturationDays)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", core.DefaultMetricsNamespace)
}

// Load reads configuration. An empty path searches orchidlab.yaml in the
// working directory and ./config; a missing search-path file is not an error,
// but an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("orchidlab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &missing) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the s3 bucket requirement.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Blob.Driver == string(blob.DriverS3) && strings.TrimSpace(c.Blob.S3.Bucket) == "" {
		return errors.New("invalid config: blob.s3.bucket is required for the s3 driver")
	}
	return nil
}

// StorageOptions converts the storage section for core.OpenPersistentStore.
func (c *Config) StorageOptions() core.StorageOptions {
	return core.StorageOptions{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// BlobOptions converts the blob section for blob.Open.
func (c *Config) BlobOptions() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: s3.Config{
			Bucket:          c.Blob.S3.Bucket,
			Region:          c.Blob.S3.Region,
			Endpoint:        c.Blob.S3.Endpoint,
			PathStyle:       c.Blob.S3.PathStyle,
			AccessKeyID:     c.Blob.S3.AccessKeyID,
			SecretAccessKey: c.Blob.S3.SecretAccessKey,
		},
	}
}

// ServiceOptions returns the validation-related service options.
func (c *Config) ServiceOptions() []core.ServiceOption {
	return []core.ServiceOption{
		core.WithHybridSameSpeciesPolicy(validation.HybridSameSpeciesPolicy(c.Validation.HybridSameSpecies)),
		core.WithDefaultMaturationDays(c.Validation.MaturationDays),
	}
}
