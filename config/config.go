// Package config loads the attribution run configuration from YAML, applies defaults and
// environment overrides and validates the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/aouyang1/go-attribution/event"
	"github.com/aouyang1/go-attribution/feature"
	"github.com/aouyang1/go-attribution/models"
	"github.com/aouyang1/go-attribution/train"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ATTRIB_REPORTS_DIR
const EnvPrefix = "ATTRIB"

const (
	DefaultReportsDir = "reports"
	DefaultCountry    = "us"
)

var (
	ErrConfigNotFound = errors.New("config not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Config is the full run configuration
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Variables  VariablesConfig  `yaml:"variables"`
	Transforms TransformsConfig `yaml:"transforms"`
	Model      ModelConfig      `yaml:"model"`
	Validation ValidationConfig `yaml:"validation"`
	Outputs    OutputsConfig    `yaml:"outputs"`
}

// DataConfig locates the input table
type DataConfig struct {
	Path      string `yaml:"path" validate:"required"`
	DateCol   string `yaml:"date_col" validate:"required"`
	TargetCol string `yaml:"target_col" validate:"required"`
}

// VariablesConfig names the media spend and control columns
type VariablesConfig struct {
	MediaSpendCols []string `yaml:"media_spend_cols" validate:"min=1,unique,dive,required"`
	ControlCols    []string `yaml:"control_cols" validate:"unique,dive,required"`
}

type TransformsConfig struct {
	Adstock    AdstockConfig    `yaml:"adstock"`
	Saturation SaturationConfig `yaml:"saturation"`
	Holidays   HolidaysConfig   `yaml:"holidays"`
}

// AdstockConfig holds the carryover rate per spend column. Columns without an alpha get 0.
type AdstockConfig struct {
	Enabled bool               `yaml:"enabled"`
	Alphas  map[string]float64 `yaml:"alphas" validate:"dive,gte=0"`
	MaxLag  int                `yaml:"max_lag" validate:"gte=0"`
}

// SaturationConfig holds Hill parameters keyed by spend column or adstock column name
type SaturationConfig struct {
	Enabled bool                        `yaml:"enabled"`
	Params  map[string]HillParamsConfig `yaml:"params" validate:"dive"`
}

// HillParamsConfig leaves unset parameters nil so they fall back to the Hill defaults
type HillParamsConfig struct {
	EC50  *float64 `yaml:"ec50" validate:"omitempty,gt=0"`
	Slope *float64 `yaml:"slope" validate:"omitempty,gte=0"`
}

type HolidaysConfig struct {
	Enabled bool   `yaml:"enabled"`
	Country string `yaml:"country" validate:"required,country"`
}

type ModelConfig struct {
	TargetTransform  string            `yaml:"target_transform" validate:"transform"`
	FeatureTransform string            `yaml:"feature_transform" validate:"transform"`
	PositiveMedia    bool              `yaml:"positive_media"`
	Standardize      bool              `yaml:"standardize"`
	CV               CVConfig          `yaml:"cv"`
	Hyperparams      HyperparamsConfig `yaml:"hyperparams"`
	MaxIter          int               `yaml:"max_iter" validate:"min=1"`
	Tolerance        float64           `yaml:"tolerance" validate:"gt=0"`
	Parallelization  int               `yaml:"parallelization" validate:"gte=0"`
}

type CVConfig struct {
	NSplits  int `yaml:"n_splits" validate:"min=1"`
	TestSize int `yaml:"test_size" validate:"min=1"`
	Gap      int `yaml:"gap" validate:"gte=0"`
}

type HyperparamsConfig struct {
	Alpha   []float64 `yaml:"alpha" validate:"min=1,dive,gte=0"`
	L1Ratio []float64 `yaml:"l1_ratio" validate:"min=1,dive,gte=0,lte=1"`
}

type ValidationConfig struct {
	EnforceMonotonicDates bool `yaml:"enforce_monotonic_dates"`
}

type OutputsConfig struct {
	ReportsDir string `yaml:"reports_dir" validate:"required"`
	Plots      bool   `yaml:"plots"`
}

// envOverrides are read from ATTRIB_* variables. Unset variables leave the file values alone.
type envOverrides struct {
	DataPath        string `envconfig:"DATA_PATH"`
	ReportsDir      string `envconfig:"REPORTS_DIR"`
	Parallelization *int   `envconfig:"PARALLELIZATION"`
	Plots           *bool  `envconfig:"PLOTS"`
}

// NewDefaultConfig returns a config with every optional field set to its default
func NewDefaultConfig() *Config {
	return &Config{
		Transforms: TransformsConfig{
			Adstock:    AdstockConfig{Alphas: map[string]float64{}},
			Saturation: SaturationConfig{Params: map[string]HillParamsConfig{}},
			Holidays:   HolidaysConfig{Country: DefaultCountry},
		},
		Model: ModelConfig{
			TargetTransform:  string(feature.TransformNone),
			FeatureTransform: string(feature.TransformNone),
			CV: CVConfig{
				NSplits:  train.DefaultNSplits,
				TestSize: train.DefaultTestSize,
				Gap:      train.DefaultGap,
			},
			Hyperparams: HyperparamsConfig{
				Alpha:   []float64{models.DefaultAlpha},
				L1Ratio: []float64{models.DefaultL1Ratio},
			},
			MaxIter:   models.DefaultIterations,
			Tolerance: models.DefaultTolerance,
		},
		Outputs: OutputsConfig{
			ReportsDir: DefaultReportsDir,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s, %w", path, ErrConfigNotFound)
		}
		return nil, fmt.Errorf("unable to read config, %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data over the defaults, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	if env.DataPath != "" {
		c.Data.Path = env.DataPath
	}
	if env.ReportsDir != "" {
		c.Outputs.ReportsDir = env.ReportsDir
	}
	if env.Parallelization != nil {
		c.Model.Parallelization = *env.Parallelization
	}
	if env.Plots != nil {
		c.Outputs.Plots = *env.Plots
	}
	return nil
}

// Validate checks the struct constraints of the config
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s, %w", strings.Join(msgs, "; "), ErrInvalidConfig)
		}
		return fmt.Errorf("%s, %w", err.Error(), ErrInvalidConfig)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()

	// report yaml keys rather than go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("transform", func(fl validator.FieldLevel) bool {
		_, err := feature.ParseTransform(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		country := strings.ToLower(fl.Field().String())
		for _, c := range event.Countries() {
			if c == country {
				return true
			}
		}
		return false
	})
	return v
}

// RequiredColumns lists the spend and control columns the input table must carry
func (c *Config) RequiredColumns() []string {
	cols := make([]string, 0, len(c.Variables.MediaSpendCols)+len(c.Variables.ControlCols))
	cols = append(cols, c.Variables.MediaSpendCols...)
	cols = append(cols, c.Variables.ControlCols...)
	return cols
}

// HillParams resolves the saturation parameters, filling unset values with the defaults
func (c *Config) HillParams() map[string]feature.HillParams {
	res := make(map[string]feature.HillParams, len(c.Transforms.Saturation.Params))
	for col, p := range c.Transforms.Saturation.Params {
		hp := feature.NewDefaultHillParams()
		if p.EC50 != nil {
			hp.EC50 = *p.EC50
		}
		if p.Slope != nil {
			hp.Slope = *p.Slope
		}
		res[col] = hp
	}
	return res
}

// TrainOptions converts the model section into grid search options
func (c *Config) TrainOptions() *train.Options {
	m := c.Model
	return &train.Options{
		Positive:    m.PositiveMedia,
		Standardize: m.Standardize,
		CV:          models.NewTimeSeriesCV(m.CV.NSplits, m.CV.TestSize, m.CV.Gap),
		Grid: train.Grid{
			Alpha:   append([]float64(nil), m.Hyperparams.Alpha...),
			L1Ratio: append([]float64(nil), m.Hyperparams.L1Ratio...),
		},
		Iterations:      m.MaxIter,
		Tolerance:       m.Tolerance,
		Parallelization: m.Parallelization,
	}
}
