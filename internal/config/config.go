// Package config provides configuration management for buttonbook using
// Viper for loading from files, environment variables, and command-line
// flags.
//
// Keys follow the SECTION.KEY layout of .buttonbook.yml and can be
// overridden with BUTTONBOOK_SECTION_KEY environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPort matches the port component catalogs conventionally use.
const DefaultPort = 6006

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Catalog     CatalogConfig     `mapstructure:"catalog" yaml:"catalog"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
	Host           string   `mapstructure:"host" yaml:"host" validate:"safe_host"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins" validate:"dive,required"`
	Environment    string   `mapstructure:"environment" yaml:"environment" validate:"oneof=development production"`
}

type CatalogConfig struct {
	// StoriesFile is an optional YAML stories file. The built-in stories are
	// used when it is empty.
	StoriesFile string `mapstructure:"stories_file" yaml:"stories_file" validate:"omitempty,safe_path"`
	Title       string `mapstructure:"title" yaml:"title" validate:"required"`
}

type DevelopmentConfig struct {
	HotReload bool `mapstructure:"hot_reload" yaml:"hot_reload"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.environment", "development")
	v.SetDefault("catalog.title", "Button")
	v.SetDefault("development.hot_reload", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load builds a Config from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds and validates a Config from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// viper does not split env-provided lists
	if len(config.Server.AllowedOrigins) == 0 && v.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Address returns the host:port the preview server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// BindEnv enables BUTTONBOOK_ prefixed environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("BUTTONBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envKeyReplacer)
}
