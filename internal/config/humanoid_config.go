// File: internal/config/humanoid_config.go
// Defaults and sanity checks for the behavior model tunables. The struct
// itself lives with the models in internal/humanoid; this file maps it onto
// the "humanoid" section of the config file so an operator can reshape the
// simulated population without touching code.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/mimicry/internal/humanoid"
)

// setHumanoidDefaults registers every humanoid tunable under "humanoid.".
func setHumanoidDefaults(v *viper.Viper) {
	d := humanoid.DefaultConfig()

	// -- Motion --
	v.SetDefault("humanoid.min_path_points", d.MinPathPoints)
	v.SetDefault("humanoid.max_path_points", d.MaxPathPoints)
	v.SetDefault("humanoid.jitter_px", d.JitterPx)
	v.SetDefault("humanoid.perlin_amplitude", d.PerlinAmplitude)
	v.SetDefault("humanoid.perlin_frequency", d.PerlinFrequency)
	v.SetDefault("humanoid.speed_variance", d.SpeedVariance)

	// -- Clicking --
	v.SetDefault("humanoid.click_hold_min_ms", d.ClickHoldMinMs)
	v.SetDefault("humanoid.click_hold_max_ms", d.ClickHoldMaxMs)
	v.SetDefault("humanoid.click_spread", d.ClickSpread)

	// -- Typing --
	v.SetDefault("humanoid.key_hold_mean_ms", d.KeyHoldMeanMs)
	v.SetDefault("humanoid.key_hold_stddev_ms", d.KeyHoldStdDevMs)
	v.SetDefault("humanoid.key_delay_stddev", d.KeyDelayStdDev)
	v.SetDefault("humanoid.fast_bigram_factor", d.FastBigramFactor)
	v.SetDefault("humanoid.punctuation_factor", d.PunctuationFactor)
	v.SetDefault("humanoid.space_factor", d.SpaceFactor)
	v.SetDefault("humanoid.shift_factor", d.ShiftFactor)

	// -- Reading --
	v.SetDefault("humanoid.reading_wpm", d.ReadingWPM)
	v.SetDefault("humanoid.min_read_pause_ms", d.MinReadPauseMs)
	v.SetDefault("humanoid.max_read_pause_ms", d.MaxReadPauseMs)
	v.SetDefault("humanoid.regression_probability", d.RegressionProbability)
	v.SetDefault("humanoid.pink_noise_sources", d.PinkNoiseSources)

	// -- Idle exploration --
	v.SetDefault("humanoid.explore_min_actions", d.ExploreMinActions)
	v.SetDefault("humanoid.explore_max_actions", d.ExploreMaxActions)
}

// validateHumanoid rejects values Normalize would silently repair, so a typo
// in a config file surfaces at startup.
func validateHumanoid(h humanoid.Config) error {
	switch {
	case h.MinPathPoints < 2:
		return fmt.Errorf("min_path_points must be at least 2")
	case h.MaxPathPoints < h.MinPathPoints:
		return fmt.Errorf("max_path_points must not be below min_path_points")
	case h.ClickHoldMinMs <= 0 || h.ClickHoldMaxMs < h.ClickHoldMinMs:
		return fmt.Errorf("click hold range must be positive and ordered")
	case h.ClickSpread <= 0 || h.ClickSpread > 1:
		return fmt.Errorf("click_spread must be in (0, 1]")
	case h.ReadingWPM <= 0:
		return fmt.Errorf("reading_wpm must be positive")
	case h.MinReadPauseMs < 0 || h.MaxReadPauseMs < h.MinReadPauseMs:
		return fmt.Errorf("read pause range must be non-negative and ordered")
	case h.RegressionProbability < 0 || h.RegressionProbability >= 1:
		return fmt.Errorf("regression_probability must be in [0, 1)")
	case h.ExploreMinActions <= 0 || h.ExploreMaxActions < h.ExploreMinActions:
		return fmt.Errorf("explore action range must be positive and ordered")
	}
	return nil
}
