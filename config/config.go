package config

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"

	"norskk/services"
)

// EnvPrefix is stripped from environment variable names before lookup.
const EnvPrefix = "NORSKK_"

// Config holds estimate engine settings loaded from the environment.
type Config struct {
	PSTRate         float64
	TaxCategories   []string
	Seed            bool
	LoadConcurrency int
}

// Load reads configuration from NORSKK_* environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(s, EnvPrefix)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	rate, err := parseFloat(k.String("PST_RATE"), services.DefaultPSTRate)
	if err != nil {
		return nil, fmt.Errorf("NORSKK_PST_RATE: %w", err)
	}
	concurrency, err := parseInt(k.String("LOAD_CONCURRENCY"), services.DefaultLoadConcurrency)
	if err != nil {
		return nil, fmt.Errorf("NORSKK_LOAD_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		PSTRate:         rate,
		TaxCategories:   splitAndTrim(k.String("TAX_CATEGORIES")),
		Seed:            parseBool(k.String("SEED")),
		LoadConcurrency: concurrency,
	}
	if len(cfg.TaxCategories) == 0 {
		cfg.TaxCategories = append([]string(nil), services.DefaultTaxCategories...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PSTRate, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.TaxCategories, validation.Required),
		validation.Field(&c.LoadConcurrency, validation.Required, validation.Min(1)),
	)
}

// BindFlags registers command-line overrides for every setting. Values
// already loaded from the environment become the flag defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&c.PSTRate, "pst-rate", c.PSTRate, "provincial sales tax rate applied to taxable categories")
	fs.StringSliceVar(&c.TaxCategories, "tax-categories", c.TaxCategories, "categories that carry automatic PST")
	fs.BoolVar(&c.Seed, "seed", c.Seed, "create a demo project when the database is empty")
	fs.IntVar(&c.LoadConcurrency, "load-concurrency", c.LoadConcurrency, "max scopes loaded in parallel for an estimate")
}

// TaxRules builds the automatic tax allow-list from the configured rate and categories.
func (c *Config) TaxRules() services.TaxRules {
	return services.NewTaxRules(c.PSTRate, splitAndTrim(strings.Join(c.TaxCategories, ",")))
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseFloat(value string, fallback float64) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return cast.ToFloat64E(strings.TrimSpace(value))
}

func parseInt(value string, fallback int) (int, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return cast.ToIntE(strings.TrimSpace(value))
}

// parseBool accepts the strconv forms via cast plus yes/on. Anything else is false.
func parseBool(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "yes" || v == "on" {
		return true
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}
