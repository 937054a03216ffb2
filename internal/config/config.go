package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Dataset formats.
const (
	FormatCSV  = "csv"
	FormatMMDB = "mmdb"
)

// Config holds the service settings. Every key can be set in the config file
// or through the upper-cased environment variable of the same name.
type Config struct {
	Port           int      `mapstructure:"port"`
	GRPCPort       int      `mapstructure:"grpc_port"`
	DatasetPath    string   `mapstructure:"dataset_path"`
	DatasetFormat  string   `mapstructure:"dataset_format"`
	LogLevel       string   `mapstructure:"log_level"`
	LogFile        string   `mapstructure:"log_file"`
	CacheSize      int      `mapstructure:"cache_size"`
	Preload        bool     `mapstructure:"preload"`
	WaitForDataset bool     `mapstructure:"wait_for_dataset"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("grpc_port", 9090)
	v.SetDefault("dataset_path", "")
	v.SetDefault("dataset_format", FormatCSV)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("cache_size", 4096)
	v.SetDefault("preload", true)
	v.SetDefault("wait_for_dataset", false)
	v.SetDefault("cors_origins", []string{})
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		fstat, err := os.Stat(file)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if fstat.IsDir() {
			return nil, fmt.Errorf("the %q is not a file", file)
		}
		v.SetConfigFile(file)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(file), "."))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("configuration format error: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings needed to start the service.
func (c *Config) Validate() error {
	if c.DatasetPath == "" {
		return errors.New("dataset_path is required")
	}
	if c.DatasetFormat != FormatCSV && c.DatasetFormat != FormatMMDB {
		return fmt.Errorf("invalid dataset_format %q, expected %s or %s", c.DatasetFormat, FormatCSV, FormatMMDB)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc_port %d", c.GRPCPort)
	}
	if c.GRPCPort == c.Port {
		return fmt.Errorf("port and grpc_port must differ, both are %d", c.Port)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache_size %d", c.CacheSize)
	}
	return nil
}
