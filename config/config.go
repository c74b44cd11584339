package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API   API   `yaml:"api"`
	List  List  `yaml:"list"`
	Cache Cache `yaml:"cache"`
}

// API describes the storefront REST backend.
type API struct {
	BaseURL string `yaml:"baseURL" validate:"required,url"`
	Token   string `yaml:"token"`
	Timeout string `yaml:"timeout" validate:"omitempty,duration"`
	// UserAgent is sent on every request when set.
	UserAgent string `yaml:"userAgent"`
}

type List struct {
	PageSize                int    `yaml:"pageSize" validate:"gte=1,lte=1000"`
	MaxPageSize             int    `yaml:"maxPageSize" validate:"gte=1,lte=1000"`
	Debounce                string `yaml:"debounce" validate:"omitempty,duration"`
	KeepPreviousDataOnError bool   `yaml:"keepPreviousDataOnError"`
}

type Cache struct {
	MaxEntries int    `yaml:"maxEntries" validate:"gte=0"`
	TTL        string `yaml:"ttl" validate:"omitempty,duration"`
}

// Load reads a YAML config file from the given path and unmarshals into Config.
// Missing values get defaults; the result is validated.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse unmarshals YAML content, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration pointing at baseURL with every other value
// defaulted. Used when no config file exists.
func Default(baseURL string) *Config {
	cfg := &Config{API: API{BaseURL: baseURL}}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in unset fields.
func (c *Config) SetDefaults() {
	if c.API.Timeout == "" {
		c.API.Timeout = "15s"
	}
	if c.List.PageSize <= 0 {
		c.List.PageSize = 10
	}
	if c.List.MaxPageSize <= 0 {
		c.List.MaxPageSize = 100
	}
	if c.List.PageSize > c.List.MaxPageSize {
		c.List.PageSize = c.List.MaxPageSize
	}
	if c.List.Debounce == "" {
		c.List.Debounce = "500ms"
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 128
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "30s"
	}
}

// Validate validates the configuration using go-playground/validator.
// Duration fields must parse with time.ParseDuration and not be negative.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("duration", validDuration); err != nil {
		return err
	}
	return v.Struct(c)
}

func validDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d >= 0
}

func (a API) RequestTimeout() time.Duration { return parseDuration(a.Timeout) }
func (l List) DebounceDuration() time.Duration { return parseDuration(l.Debounce) }
func (c Cache) TTLDuration() time.Duration { return parseDuration(c.TTL) }

// parseDuration returns 0 on empty or invalid duration strings. Validate
// rejects invalid ones, so only unvalidated configs see the zero value.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
