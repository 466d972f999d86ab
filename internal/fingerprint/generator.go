package fingerprint

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/geo"
)

// DefaultMaxAttempts bounds the assemble/validate loop.
const DefaultMaxAttempts = 5

// Generator produces validated fingerprints. It holds no mutable state and is
// safe for concurrent use.
type Generator struct {
	assembler   *Assembler
	validator   *Validator
	maxAttempts int
	logger      *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts sets the retry bound. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n >= 1 {
			g.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for rejected attempts.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger.Named("fingerprint")
		}
	}
}

// NewGenerator builds a Generator over table.
func NewGenerator(table *geo.Table, opts ...Option) *Generator {
	g := &Generator{
		assembler:   NewAssembler(table),
		validator:   NewValidator(table),
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the first record for (seed, country, override) that passes
// validation. The canonical draw is always tried first, so a seed whose
// canonical draw is consistent always yields that draw. Each retry re-draws
// only the field groups of the rules that failed; every other field, the
// noise seeds included, keeps its canonical value.
func (g *Generator) Generate(seed, country string, override schemas.Platform) (schemas.Fingerprint, error) {
	var last Result
	redraws := Redraws{}
	attempts := 0
	for attempts < g.maxAttempts {
		rec, err := g.assembler.Assemble(seed, country, override, redraws)
		if err != nil {
			return schemas.Fingerprint{}, err
		}
		attempts++
		last = g.validator.Validate(rec)
		if last.Valid {
			if attempts > 1 {
				g.logger.Debug("Fingerprint accepted after retry",
					zap.String("country", rec.Country),
					zap.Int("attempts", attempts),
					zap.Any("redraws", redraws))
			}
			return rec, nil
		}

		groups := g.validator.redrawGroups(last.Violations)
		g.logger.Debug("Fingerprint candidate rejected",
			zap.Int("attempt", attempts),
			zap.Any("violations", last.Violations),
			zap.Strings("redraw", groups))
		if len(groups) == 0 {
			// Drawing again would reproduce the same record.
			break
		}
		for _, group := range groups {
			redraws[group]++
		}
	}
	return schemas.Fingerprint{}, &GenerationError{
		Seed:       seed,
		Country:    country,
		Attempts:   attempts,
		Violations: last.Violations,
	}
}

// Validate exposes the consistency check for externally built records.
func (g *Generator) Validate(rec schemas.Fingerprint) Result {
	return g.validator.Validate(rec)
}
