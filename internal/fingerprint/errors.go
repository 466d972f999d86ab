package fingerprint

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCountry is returned when the country code has no geo profile.
	ErrUnknownCountry = errors.New("unknown country")
	// ErrUnsupportedPlatform is returned for a platform override outside the closed set.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrGenerationFailed is returned when no consistent record was found
	// within the retry bound.
	ErrGenerationFailed = errors.New("fingerprint generation failed")
)

// GenerationError carries the violations of the last rejected attempt.
type GenerationError struct {
	Seed       string
	Country    string
	Attempts   int
	Violations []Violation
}

func (e *GenerationError) Error() string {
	reasons := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		reasons = append(reasons, v.String())
	}
	return fmt.Sprintf("%s: seed %q country %s after %d attempts: %s",
		ErrGenerationFailed, e.Seed, e.Country, e.Attempts, strings.Join(reasons, "; "))
}

// Is lets errors.Is match ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
