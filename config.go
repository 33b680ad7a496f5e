package outliner

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brunobiangulo/outliner/score"
)

// Duration wraps time.Duration so config files can say "10s" in both JSON
// and YAML.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds all tuning for the extraction engine and the batch driver.
// Every field has a sane default; the zero value is usable after
// DefaultConfig-style backfilling in New.
type Config struct {
	// AcceptanceThreshold is the minimum combined score for a span to
	// become a heading candidate.
	AcceptanceThreshold float64 `json:"acceptance_threshold" yaml:"acceptance_threshold"`

	// HeadingLengthLimit is the character count past which the length
	// penalty degrades a span's score.
	HeadingLengthLimit int `json:"heading_length_limit" yaml:"heading_length_limit"`

	// HeaderFooterRatio is the fraction of pages above which repeated
	// text is suppressed as a running header/footer.
	HeaderFooterRatio float64 `json:"header_footer_repetition_ratio" yaml:"header_footer_repetition_ratio"`

	// Weights are the scorer's feature weights.
	Weights score.Weights `json:"weights" yaml:"weights"`

	// MaxPages caps how many pages a source reads per document.
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// Workers sizes the batch worker pool. 0 means one per CPU core.
	Workers int `json:"workers" yaml:"workers"`

	// DocumentTimeout bounds the source-extraction call per document.
	// On timeout only that document falls back to an empty result.
	DocumentTimeout Duration `json:"document_timeout" yaml:"document_timeout"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		AcceptanceThreshold: 0.45,
		HeadingLengthLimit:  150,
		HeaderFooterRatio:   0.5,
		Weights:             score.DefaultWeights(),
		MaxPages:            50,
		DocumentTimeout:     Duration(10 * time.Second),
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.AcceptanceThreshold < 0 || c.AcceptanceThreshold > 1 {
		return fmt.Errorf("%w: acceptance_threshold %v outside [0,1]", ErrInvalidConfig, c.AcceptanceThreshold)
	}
	if c.HeaderFooterRatio < 0 || c.HeaderFooterRatio > 1 {
		return fmt.Errorf("%w: header_footer_repetition_ratio %v outside [0,1]", ErrInvalidConfig, c.HeaderFooterRatio)
	}
	if c.HeadingLengthLimit < 0 {
		return fmt.Errorf("%w: heading_length_limit %d negative", ErrInvalidConfig, c.HeadingLengthLimit)
	}
	if c.MaxPages < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: max_pages and workers must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// backfill replaces zero values with defaults.
func (c Config) backfill() Config {
	def := DefaultConfig()
	if c.AcceptanceThreshold == 0 {
		c.AcceptanceThreshold = def.AcceptanceThreshold
	}
	if c.HeadingLengthLimit == 0 {
		c.HeadingLengthLimit = def.HeadingLengthLimit
	}
	if c.HeaderFooterRatio == 0 {
		c.HeaderFooterRatio = def.HeaderFooterRatio
	}
	if c.Weights == (score.Weights{}) {
		c.Weights = def.Weights
	}
	if c.MaxPages == 0 {
		c.MaxPages = def.MaxPages
	}
	if c.DocumentTimeout == 0 {
		c.DocumentTimeout = def.DocumentTimeout
	}
	return c
}
