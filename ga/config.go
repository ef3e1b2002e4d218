package ga

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration error returned by Validate.
var ErrInvalidConfig = errors.New("invalid ga config")

var configValidate = validator.New()

// Config holds the parameters of one evolutionary run.
type Config struct {
	PopSize       int     `json:"pop_size" yaml:"pop_size" validate:"gte=2"`
	Generations   int     `json:"generations" yaml:"generations" validate:"gte=1"`
	EliteFrac     float64 `json:"elite_frac" yaml:"elite_frac" validate:"gt=0,lte=1"`
	TournamentK   int     `json:"tournament_k" yaml:"tournament_k" validate:"gte=1,ltefield=PopSize"`
	CrossoverRate float64 `json:"crossover_rate" yaml:"crossover_rate" validate:"gte=0,lte=1"`
	MutationStd   float64 `json:"mutation_std" yaml:"mutation_std" validate:"gte=0"`
	RNGSeed       int64   `json:"rng_seed" yaml:"rng_seed"`
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		PopSize:       50,
		Generations:   150,
		EliteFrac:     0.1,
		TournamentK:   3,
		CrossoverRate: 0.9,
		MutationStd:   2.0,
		RNGSeed:       42,
	}
}

// EliteSize is max(1, floor(EliteFrac*PopSize)).
func (c Config) EliteSize() int {
	n := int(math.Floor(c.EliteFrac * float64(c.PopSize)))
	if n < 1 {
		n = 1
	}
	return n
}

// Validate checks every parameter before a run starts.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"elite_frac", c.EliteFrac},
		{"crossover_rate", c.CrossoverRate},
		{"mutation_std", c.MutationStd},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.name, f.v)
		}
	}

	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if es := c.EliteSize(); es > c.PopSize {
		return fmt.Errorf("%w: elite size %d exceeds pop_size %d", ErrInvalidConfig, es, c.PopSize)
	}
	return nil
}

var fieldNames = map[string]string{
	"PopSize":       "pop_size",
	"Generations":   "generations",
	"EliteFrac":     "elite_frac",
	"TournamentK":   "tournament_k",
	"CrossoverRate": "crossover_rate",
	"MutationStd":   "mutation_std",
}

func describe(fe validator.FieldError) string {
	name := fieldNames[fe.Field()]
	if name == "" {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "ltefield":
		return fmt.Sprintf("%s must be <= pop_size, got %v", name, fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be > %s, got %v", name, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", name, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", name, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s check", name, fe.Tag())
	}
}

// LoadConfigFile reads a YAML file over DefaultConfig. Missing keys keep
// their default values. The result is not validated.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return cfg, nil
}

// SaveConfigFile writes cfg as YAML.
func SaveConfigFile(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
