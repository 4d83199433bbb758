// Package config loads the server configuration from file, environment and flags.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shyptr/graphiql/client"
	"github.com/spf13/viper"
)

type Config struct {
	// Listen is the address the HTTP server binds.
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`
	// RootURL is the path prefix of the host application, without trailing slash.
	RootURL      string         `mapstructure:"root_url" validate:"omitempty,startswith=/,endsnotwith=/"`
	DefaultQuery string         `mapstructure:"default_query"`
	Upstream     UpstreamConfig `mapstructure:"upstream"`
	Schema       SchemaConfig   `mapstructure:"schema"`
	Log          LogConfig      `mapstructure:"log"`
}

type UpstreamConfig struct {
	Endpoint    string            `mapstructure:"endpoint" validate:"required,url"`
	Credentials string            `mapstructure:"credentials" validate:"oneof=omit same-origin include"`
	Timeout     time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	Headers     map[string]string `mapstructure:"headers"`
}

type SchemaConfig struct {
	// BucketURL is a gocloud.dev blob URL (file://, mem://, s3://, gs://...).
	BucketURL string `mapstructure:"bucket_url" validate:"required_with=Key"`
	Key       string `mapstructure:"key" validate:"required_with=BucketURL"`
	// Prefetch runs one introspection query against the upstream on startup.
	Prefetch bool `mapstructure:"prefetch"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// Client returns the transport configuration for the upstream endpoint.
func (c *Config) Client() client.Config {
	return client.Config{
		Endpoint:    c.Upstream.Endpoint,
		Credentials: client.Credentials(c.Upstream.Credentials),
		Headers:     c.Upstream.Headers,
		Timeout:     c.Upstream.Timeout,
	}
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("root_url", "")
	v.SetDefault("default_query", DefaultQuery)
	v.SetDefault("upstream.endpoint", "")
	v.SetDefault("upstream.credentials", string(client.CredentialsInclude))
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("schema.bucket_url", "")
	v.SetDefault("schema.key", "")
	v.SetDefault("schema.prefetch", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// New returns a viper instance with defaults and GRAPHIQL_* environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("graphiql")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes and validates the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

var validate *validator.Validate
var once sync.Once

func Validate() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}
