// internal/humanoid/config.go
package humanoid

// Config holds the tunables of the behavior models. The per-identity values
// (speed, accuracy, error rate, reaction time) come from the biometric
// profile; these are the population-level constants around them.
type Config struct {
	// Motion paths
	MinPathPoints   int     `mapstructure:"min_path_points" yaml:"min_path_points"`
	MaxPathPoints   int     `mapstructure:"max_path_points" yaml:"max_path_points"`
	JitterPx        float64 `mapstructure:"jitter_px" yaml:"jitter_px"`
	PerlinAmplitude float64 `mapstructure:"perlin_amplitude" yaml:"perlin_amplitude"`
	PerlinFrequency float64 `mapstructure:"perlin_frequency" yaml:"perlin_frequency"`
	SpeedVariance   float64 `mapstructure:"speed_variance" yaml:"speed_variance"`

	// Clicking
	ClickHoldMinMs int     `mapstructure:"click_hold_min_ms" yaml:"click_hold_min_ms"`
	ClickHoldMaxMs int     `mapstructure:"click_hold_max_ms" yaml:"click_hold_max_ms"`
	ClickSpread    float64 `mapstructure:"click_spread" yaml:"click_spread"`

	// Typing
	KeyHoldMeanMs     float64 `mapstructure:"key_hold_mean_ms" yaml:"key_hold_mean_ms"`
	KeyHoldStdDevMs   float64 `mapstructure:"key_hold_stddev_ms" yaml:"key_hold_stddev_ms"`
	KeyDelayStdDev    float64 `mapstructure:"key_delay_stddev" yaml:"key_delay_stddev"`
	FastBigramFactor  float64 `mapstructure:"fast_bigram_factor" yaml:"fast_bigram_factor"`
	PunctuationFactor float64 `mapstructure:"punctuation_factor" yaml:"punctuation_factor"`
	SpaceFactor       float64 `mapstructure:"space_factor" yaml:"space_factor"`
	ShiftFactor       float64 `mapstructure:"shift_factor" yaml:"shift_factor"`

	// Scrolling and reading
	ReadingWPM            float64 `mapstructure:"reading_wpm" yaml:"reading_wpm"`
	MinReadPauseMs        float64 `mapstructure:"min_read_pause_ms" yaml:"min_read_pause_ms"`
	MaxReadPauseMs        float64 `mapstructure:"max_read_pause_ms" yaml:"max_read_pause_ms"`
	RegressionProbability float64 `mapstructure:"regression_probability" yaml:"regression_probability"`
	PinkNoiseSources      int     `mapstructure:"pink_noise_sources" yaml:"pink_noise_sources"`

	// Idle exploration
	ExploreMinActions int `mapstructure:"explore_min_actions" yaml:"explore_min_actions"`
	ExploreMaxActions int `mapstructure:"explore_max_actions" yaml:"explore_max_actions"`
}

// DefaultConfig returns the tunables of an average user.
func DefaultConfig() Config {
	return Config{
		MinPathPoints:         10,
		MaxPathPoints:         200,
		JitterPx:              1.2,
		PerlinAmplitude:       2.5,
		PerlinFrequency:       3.0,
		SpeedVariance:         0.15,
		ClickHoldMinMs:        50,
		ClickHoldMaxMs:        120,
		ClickSpread:           0.9,
		KeyHoldMeanMs:         55.0,
		KeyHoldStdDevMs:       15.0,
		KeyDelayStdDev:        0.2,
		FastBigramFactor:      0.65,
		PunctuationFactor:     2.2,
		SpaceFactor:           1.35,
		ShiftFactor:           1.15,
		ReadingWPM:            238,
		MinReadPauseMs:        250,
		MaxReadPauseMs:        12000,
		RegressionProbability: 0.08,
		PinkNoiseSources:      12,
		ExploreMinActions:     3,
		ExploreMaxActions:     6,
	}
}

// Normalize repairs out-of-range values so planners never divide by zero or
// loop on empty ranges.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.MinPathPoints < 2 {
		c.MinPathPoints = def.MinPathPoints
	}
	if c.MaxPathPoints < c.MinPathPoints {
		c.MaxPathPoints = c.MinPathPoints
	}
	if c.ClickHoldMinMs <= 0 {
		c.ClickHoldMinMs = def.ClickHoldMinMs
	}
	if c.ClickHoldMaxMs <= c.ClickHoldMinMs {
		c.ClickHoldMaxMs = c.ClickHoldMinMs + 1
	}
	if c.ClickSpread <= 0 || c.ClickSpread > 1 {
		c.ClickSpread = def.ClickSpread
	}
	if c.KeyHoldMeanMs <= 0 {
		c.KeyHoldMeanMs = def.KeyHoldMeanMs
	}
	if c.FastBigramFactor <= 0 {
		c.FastBigramFactor = def.FastBigramFactor
	}
	if c.PunctuationFactor <= 0 {
		c.PunctuationFactor = def.PunctuationFactor
	}
	if c.SpaceFactor <= 0 {
		c.SpaceFactor = def.SpaceFactor
	}
	if c.ShiftFactor <= 0 {
		c.ShiftFactor = def.ShiftFactor
	}
	if c.ReadingWPM <= 0 {
		c.ReadingWPM = def.ReadingWPM
	}
	if c.MinReadPauseMs < 0 {
		c.MinReadPauseMs = 0
	}
	if c.MaxReadPauseMs < c.MinReadPauseMs {
		c.MaxReadPauseMs = c.MinReadPauseMs
	}
	if c.RegressionProbability < 0 || c.RegressionProbability >= 1 {
		c.RegressionProbability = def.RegressionProbability
	}
	if c.PinkNoiseSources <= 0 {
		c.PinkNoiseSources = def.PinkNoiseSources
	}
	if c.ExploreMinActions <= 0 {
		c.ExploreMinActions = def.ExploreMinActions
	}
	if c.ExploreMaxActions < c.ExploreMinActions {
		c.ExploreMaxActions = c.ExploreMinActions
	}
}
