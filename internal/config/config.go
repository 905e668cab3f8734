// Package config holds the resolved, validated configuration passed
// through the Orchestrator. There are no hidden globals: every
// component that needs a setting receives it explicitly from a Config
// value, following the teacher's internal/config pattern of a single
// Load() plus Validate() pair.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aegisshield/entity-resolution/internal/model"
)

// RatioWeights mixes two similarity ratios (e.g. token_sort_ratio and
// partial_ratio) with per-component weights. Weights need not sum to
// 1 — they are normalized internally by the Similarity Kernel.
type RatioWeights struct {
	TokenSort float64
	TokenSet  float64
	Partial   float64
}

// FieldWeights controls how the record-level combiner mixes per-field
// scores.
type FieldWeights struct {
	Name    float64
	Email   float64
	Phone   float64
	Address float64
}

// Config is the full, validated configuration surface for a
// resolution run.
type Config struct {
	NameWeights    RatioWeights
	AddressWeights RatioWeights
	FieldWeights   FieldWeights

	MergeThreshold float64
	BlockSizeCap   int

	BusinessSuffixTokens []string
	PEPTokens            []string

	Lowercase                bool
	NormalizeNames           bool
	StandardizePhone         bool
	ExtractAddressComponents bool

	SimilarityCacheSize int

	Logging LoggingConfig
}

// LoggingConfig mirrors the teacher's LoggingConfig: ambient, never
// consulted by core matching logic.
type LoggingConfig struct {
	Level  string
	Format string
}

// DefaultBusinessSuffixTokens is the closed list from §4.6.
func DefaultBusinessSuffixTokens() []string {
	return []string{"inc", "corp", "ltd", "llc", "company", "corporation", "limited", "co"}
}

// DefaultPEPTokens is the closed list from §4.6.
func DefaultPEPTokens() []string {
	return []string{"senator", "congress", "minister", "president", "governor", "mayor"}
}

// Default returns the configuration with every spec-stated default.
func Default() Config {
	return Config{
		NameWeights:    RatioWeights{TokenSort: 0.6, Partial: 0.4},
		AddressWeights: RatioWeights{TokenSet: 0.6, Partial: 0.4},
		FieldWeights: FieldWeights{
			Name:    0.40,
			Email:   0.30,
			Phone:   0.20,
			Address: 0.10,
		},
		MergeThreshold:           0.70,
		BlockSizeCap:             1000,
		BusinessSuffixTokens:     DefaultBusinessSuffixTokens(),
		PEPTokens:                DefaultPEPTokens(),
		Lowercase:                true,
		NormalizeNames:           true,
		StandardizePhone:         true,
		ExtractAddressComponents: true,
		SimilarityCacheSize:      10000,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from environment variables, falling back to
// the spec defaults, exactly like the teacher's config.Load.
func Load() (Config, error) {
	cfg := Default()

	cfg.NameWeights = RatioWeights{
		TokenSort: getEnvFloat("ERX_NAME_TOKEN_SORT_WEIGHT", cfg.NameWeights.TokenSort),
		Partial:   getEnvFloat("ERX_NAME_PARTIAL_WEIGHT", cfg.NameWeights.Partial),
	}
	cfg.AddressWeights = RatioWeights{
		TokenSet: getEnvFloat("ERX_ADDRESS_TOKEN_SET_WEIGHT", cfg.AddressWeights.TokenSet),
		Partial:  getEnvFloat("ERX_ADDRESS_PARTIAL_WEIGHT", cfg.AddressWeights.Partial),
	}
	cfg.FieldWeights = FieldWeights{
		Name:    getEnvFloat("ERX_FIELD_WEIGHT_NAME", cfg.FieldWeights.Name),
		Email:   getEnvFloat("ERX_FIELD_WEIGHT_EMAIL", cfg.FieldWeights.Email),
		Phone:   getEnvFloat("ERX_FIELD_WEIGHT_PHONE", cfg.FieldWeights.Phone),
		Address: getEnvFloat("ERX_FIELD_WEIGHT_ADDRESS", cfg.FieldWeights.Address),
	}
	cfg.MergeThreshold = getEnvFloat("ERX_MERGE_THRESHOLD", cfg.MergeThreshold)
	cfg.BlockSizeCap = getEnvInt("ERX_BLOCK_SIZE_CAP", cfg.BlockSizeCap)
	cfg.BusinessSuffixTokens = getEnvStringSlice("ERX_BUSINESS_SUFFIX_TOKENS", cfg.BusinessSuffixTokens)
	cfg.PEPTokens = getEnvStringSlice("ERX_PEP_TOKENS", cfg.PEPTokens)
	cfg.Lowercase = getEnvBool("ERX_LOWERCASE", cfg.Lowercase)
	cfg.NormalizeNames = getEnvBool("ERX_NORMALIZE_NAMES", cfg.NormalizeNames)
	cfg.StandardizePhone = getEnvBool("ERX_STANDARDIZE_PHONE", cfg.StandardizePhone)
	cfg.ExtractAddressComponents = getEnvBool("ERX_EXTRACT_ADDRESS_COMPONENTS", cfg.ExtractAddressComponents)
	cfg.SimilarityCacheSize = getEnvInt("ERX_SIMILARITY_CACHE_SIZE", cfg.SimilarityCacheSize)
	cfg.Logging.Level = getEnvString("ERX_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvString("ERX_LOG_FORMAT", cfg.Logging.Format)

	return cfg, cfg.Validate()
}

// Validate returns a ConfigInvalid-kind error for a threshold out of
// [0, 1], a negative weight, an empty field-weight set, or a
// non-positive cap/cache size.
func (c Config) Validate() error {
	const op = "config.Validate"

	if c.MergeThreshold < 0 || c.MergeThreshold > 1 {
		return model.NewError(model.ConfigInvalid, op, fmt.Errorf("merge_threshold must be in [0, 1], got %v", c.MergeThreshold))
	}
	if c.BlockSizeCap <= 0 {
		return model.NewError(model.ConfigInvalid, op, fmt.Errorf("block_size_cap must be positive, got %d", c.BlockSizeCap))
	}
	if c.SimilarityCacheSize <= 0 {
		return model.NewError(model.ConfigInvalid, op, fmt.Errorf("similarity_cache_size must be positive, got %d", c.SimilarityCacheSize))
	}

	for name, w := range map[string]float64{
		"field_weights.name":        c.FieldWeights.Name,
		"field_weights.email":       c.FieldWeights.Email,
		"field_weights.phone":       c.FieldWeights.Phone,
		"field_weights.address":     c.FieldWeights.Address,
		"name_weights.token_sort":   c.NameWeights.TokenSort,
		"name_weights.partial":      c.NameWeights.Partial,
		"address_weights.token_set": c.AddressWeights.TokenSet,
		"address_weights.partial":   c.AddressWeights.Partial,
	} {
		if w < 0 {
			return model.NewError(model.ConfigInvalid, op, fmt.Errorf("%s must not be negative, got %v", name, w))
		}
	}

	if c.FieldWeights.Name+c.FieldWeights.Email+c.FieldWeights.Phone+c.FieldWeights.Address <= 0 {
		return model.NewError(model.ConfigInvalid, op, fmt.Errorf("field_weights must not all be zero"))
	}
	if c.NameWeights.TokenSort+c.NameWeights.Partial <= 0 {
		return model.NewError(model.ConfigInvalid, op, fmt.Errorf("name_weights must not all be zero"))
	}
	if c.AddressWeights.TokenSet+c.AddressWeights.Partial <= 0 {
		return model.NewError(model.ConfigInvalid, op, fmt.Errorf("address_weights must not all be zero"))
	}

	return nil
}

// Helper functions for environment variable parsing, matching the
// teacher's config package verbatim.

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
