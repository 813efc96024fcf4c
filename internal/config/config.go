// Package config provides configuration loading and validation for the harvester.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
// Field names map to environment variables through their mapstructure tags, upper-cased.
type Config struct {
	// Search provider
	GoogleAPIKey string `mapstructure:"google_api_key" validate:"required"`
	GoogleCSEID  string `mapstructure:"google_cse_id" validate:"required"`

	// Cache
	CacheFile       string `mapstructure:"cache_file" validate:"required"`
	CacheBackend    string `mapstructure:"cache_backend" validate:"oneof=file postgres"`
	DatabaseURL     string `mapstructure:"database_url" validate:"required_if=CacheBackend postgres"`
	CacheExpireDays int    `mapstructure:"cache_expire_days" validate:"gte=0"`

	// Fetching
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	PageTimeout       time.Duration `mapstructure:"page_timeout" validate:"gt=0"`
	VerifyTimeout     time.Duration `mapstructure:"verify_timeout" validate:"gt=0"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	VerifyRetries     int           `mapstructure:"verify_retries" validate:"gte=0,lte=10"`
	BackoffFactor     time.Duration `mapstructure:"backoff_factor" validate:"gte=0"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff" validate:"gte=0"`
	UserAgent         string        `mapstructure:"user_agent" validate:"required"`

	// Behavior
	Workers       int    `mapstructure:"workers" validate:"gte=1,lte=64"`
	GuessFallback bool   `mapstructure:"guess_fallback"`
	RespectRobots bool   `mapstructure:"respect_robots"`
	CompaniesFile string `mapstructure:"companies_file"`
	ServerAddr    string `mapstructure:"server_addr" validate:"required"`
}

// Backend names for CacheBackend.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// DefaultUserAgent mimics a desktop browser; some sites reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var defaults = map[string]interface{}{
	"google_api_key":      "",
	"google_cse_id":       "",
	"cache_file":          "cache.json",
	"cache_backend":       BackendFile,
	"database_url":        "",
	"cache_expire_days":   7,
	"requests_per_second": 5.0,
	"page_timeout":        15 * time.Second,
	"verify_timeout":      10 * time.Second,
	"max_retries":         3,
	"verify_retries":      0,
	"backoff_factor":      time.Second,
	"max_backoff":         30 * time.Second,
	"user_agent":          DefaultUserAgent,
	"workers":             1,
	"guess_fallback":      false,
	"respect_robots":      false,
	"companies_file":      "companies.txt",
	"server_addr":         "127.0.0.1:8080",
}

// searchFields are only required by commands that resolve websites.
var searchFields = []string{"GoogleAPIKey", "GoogleCSEID"}

// Error reports invalid or missing configuration. Vars holds the offending env var names.
type Error struct {
	Vars    []string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Vars) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Vars, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("config error: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Load reads defaults, then the optional config file at path, then environment variables.
// The result is not validated; call Validate.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, &Error{Message: "failed to bind environment", Cause: err}
		}
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Message: "failed to decode configuration", Cause: err}
	}
	return &cfg, nil
}

// Validate checks field constraints. When requireSearch is false the search
// credentials may be empty.
func (c *Config) Validate(requireSearch bool) error {
	validate := newValidator()

	var err error
	if requireSearch {
		err = validate.Struct(c)
	} else {
		err = validate.StructExcept(c, searchFields...)
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Message: "validation failed", Cause: err}
	}

	var missing, invalid []string
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required", "required_if":
			missing = append(missing, fe.Field())
		default:
			invalid = append(invalid, fe.Field())
		}
	}
	sort.Strings(missing)
	sort.Strings(invalid)

	if len(missing) > 0 {
		return &Error{Vars: append(missing, invalid...), Message: "missing required settings"}
	}
	return &Error{Vars: invalid, Message: "invalid settings"}
}

// CacheTTL converts CacheExpireDays to a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpireDays) * 24 * time.Hour
}

// newValidator reports fields by their environment variable names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return strings.ToUpper(name)
	})
	return validate
}
