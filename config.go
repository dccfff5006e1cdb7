package qerasure

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/theapemachine/errnie"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

/*
Config carries every experimental parameter a run or an analysis needs. The
angle list, shot count, device and plot palette are explicit here rather than
package globals, so several configurations can coexist in one process.
*/
type Config struct {
	Roles    Roles          `mapstructure:"roles" yaml:"roles"`
	Angles   []float64      `mapstructure:"angles" yaml:"angles"`
	Shots    int            `mapstructure:"shots" yaml:"shots"`
	Device   DeviceConfig   `mapstructure:"device" yaml:"device"`
	Hardware DeviceConfig   `mapstructure:"hardware" yaml:"hardware"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Palette  PaletteConfig  `mapstructure:"palette" yaml:"palette"`
}

/*
DeviceConfig selects and tunes a device. Kind is "statevector" or "noisy".
CostPerShot is the price of one shot; any positive value makes the driver ask
for confirmation before submitting.
*/
type DeviceConfig struct {
	ID          string          `mapstructure:"id" yaml:"id"`
	Kind        string          `mapstructure:"kind" yaml:"kind"`
	Seed        uint64          `mapstructure:"seed" yaml:"seed"`
	CostPerShot float64         `mapstructure:"cost_per_shot" yaml:"cost_per_shot"`
	Noise       NoiseModel      `mapstructure:"noise" yaml:"noise"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig paces submissions. A zero Interval disables pacing.
type RateLimitConfig struct {
	Burst    int           `mapstructure:"burst" yaml:"burst"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// RetryConfig controls resubmission of failed circuits. One attempt means none.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Initial     time.Duration `mapstructure:"initial" yaml:"initial"`
}

type OutputConfig struct {
	Dir           string `mapstructure:"dir" yaml:"dir"`
	ResultsPrefix string `mapstructure:"results_prefix" yaml:"results_prefix"`
	MainFigure    string `mapstructure:"main_figure" yaml:"main_figure"`
	AngleFigure   string `mapstructure:"angle_figure" yaml:"angle_figure"`
}

type AnalysisConfig struct {
	Angle float64 `mapstructure:"angle" yaml:"angle"`
}

// PaletteConfig holds hex colors for the three conditions.
type PaletteConfig struct {
	Standard     string `mapstructure:"standard" yaml:"standard"`
	NoReversal   string `mapstructure:"no_reversal" yaml:"no_reversal"`
	WithReversal string `mapstructure:"with_reversal" yaml:"with_reversal"`
}

const (
	KindStateVector = "statevector"
	KindNoisy       = "noisy"
)

// NewConfig returns the configuration of the reference experiment.
func NewConfig() *Config {
	return &Config{
		Roles:  DefaultRoles(),
		Angles: DefaultAngles(),
		Shots:  2000,
		Device: DeviceConfig{
			ID:   "local:statevector",
			Kind: KindStateVector,
			Seed: 1,
		},
		Hardware: DeviceConfig{
			ID:          "emulated:rigetti-ankaa-3",
			Kind:        KindNoisy,
			Seed:        1,
			CostPerShot: 0.00035,
			Noise:       DefaultHardwareNoise(),
			RateLimit: RateLimitConfig{
				Burst:    10,
				Interval: 200 * time.Millisecond,
			},
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			Initial:     time.Second,
		},
		Output: OutputConfig{
			Dir:           ".",
			ResultsPrefix: "hardware_results",
			MainFigure:    "figure_main_result.png",
			AngleFigure:   "figure_angle_dependence.png",
		},
		Analysis: AnalysisConfig{Angle: 90},
		Palette: PaletteConfig{
			Standard:     "#1f77b4",
			NoReversal:   "#d62728",
			WithReversal: "#ff7f0e",
		},
	}
}

/*
LoadConfig layers, from lowest to highest priority, the defaults of NewConfig,
an optional YAML file, and QERASURE_* environment variables (dots in keys
become underscores, so QERASURE_DEVICE_KIND sets device.kind).
*/
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("QERASURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	registerDefaults(v, NewConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		errnie.Info("LoadConfig - using %s", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func registerDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("roles.first", d.Roles.First)
	v.SetDefault("roles.second", d.Roles.Second)
	v.SetDefault("roles.marker", d.Roles.Marker)
	v.SetDefault("angles", d.Angles)
	v.SetDefault("shots", d.Shots)

	for prefix, dev := range map[string]DeviceConfig{"device": d.Device, "hardware": d.Hardware} {
		v.SetDefault(prefix+".id", dev.ID)
		v.SetDefault(prefix+".kind", dev.Kind)
		v.SetDefault(prefix+".seed", dev.Seed)
		v.SetDefault(prefix+".cost_per_shot", dev.CostPerShot)
		v.SetDefault(prefix+".noise.single_qubit", dev.Noise.SingleQubit)
		v.SetDefault(prefix+".noise.two_qubit", dev.Noise.TwoQubit)
		v.SetDefault(prefix+".noise.readout", dev.Noise.Readout)
		v.SetDefault(prefix+".rate_limit.burst", dev.RateLimit.Burst)
		v.SetDefault(prefix+".rate_limit.interval", dev.RateLimit.Interval)
	}

	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.initial", d.Retry.Initial)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.results_prefix", d.Output.ResultsPrefix)
	v.SetDefault("output.main_figure", d.Output.MainFigure)
	v.SetDefault("output.angle_figure", d.Output.AngleFigure)
	v.SetDefault("analysis.angle", d.Analysis.Angle)
	v.SetDefault("palette.standard", d.Palette.Standard)
	v.SetDefault("palette.no_reversal", d.Palette.NoReversal)
	v.SetDefault("palette.with_reversal", d.Palette.WithReversal)
}

// Validate rejects configurations a run could not honor.
func (c *Config) Validate() error {
	if err := c.Roles.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if len(c.Angles) == 0 {
		return fmt.Errorf("%w: no angles", ErrInvalidConfig)
	}

	seen := make(map[int64]bool, len(c.Angles))
	for _, angle := range c.Angles {
		if seen[angleKey(angle)] {
			return fmt.Errorf("%w: angle %g listed twice", ErrInvalidConfig, angle)
		}

		seen[angleKey(angle)] = true
	}

	if c.Shots <= 0 {
		return fmt.Errorf("%w: shots must be positive, got %d", ErrInvalidConfig, c.Shots)
	}

	for name, dev := range map[string]DeviceConfig{"device": c.Device, "hardware": c.Hardware} {
		if err := dev.validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", ErrInvalidConfig)
	}

	if _, err := c.Palette.Palette(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

func (d DeviceConfig) validate() error {
	switch d.Kind {
	case KindStateVector, KindNoisy:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDevice, d.Kind)
	}

	if d.CostPerShot < 0 {
		return fmt.Errorf("negative cost per shot %v", d.CostPerShot)
	}

	if d.RateLimit.Burst < 0 || d.RateLimit.Interval < 0 {
		return fmt.Errorf("negative rate limit %+v", d.RateLimit)
	}

	return d.Noise.Validate()
}

// EstimatedCost is what a full run over the configured angles would cost.
func (c *Config) EstimatedCost(dev DeviceConfig) float64 {
	return float64(len(c.Angles)*len(Conditions)*c.Shots) * dev.CostPerShot
}
