// File: internal/service/service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/biometrics"
	"github.com/xkilldash9x/mimicry/internal/config"
	"github.com/xkilldash9x/mimicry/internal/fingerprint"
	"github.com/xkilldash9x/mimicry/internal/geo"
	"github.com/xkilldash9x/mimicry/internal/orchestrator"
)

// Identity is everything one seed produces: the device it claims to be and
// the person operating it.
type Identity struct {
	Seed        string                   `json:"seed"`
	Fingerprint schemas.Fingerprint      `json:"fingerprint"`
	Biometrics  schemas.BiometricProfile `json:"biometrics"`
}

// Service is the caller-facing entry point. It is safe for concurrent use.
type Service struct {
	cfg       config.Interface
	table     *geo.Table
	generator *fingerprint.Generator
	logger    *zap.Logger
}

// New builds a Service over the embedded geo table.
func New(cfg config.Interface, logger *zap.Logger) (*Service, error) {
	table, err := geo.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load geo profiles: %w", err)
	}
	return NewWithTable(cfg, table, logger), nil
}

// NewWithTable builds a Service over a caller-supplied geo table.
func NewWithTable(cfg config.Interface, table *geo.Table, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:   cfg,
		table: table,
		generator: fingerprint.NewGenerator(table,
			fingerprint.WithMaxAttempts(cfg.Generator().MaxAttempts),
			fingerprint.WithLogger(logger),
		),
		logger: logger.Named("service"),
	}
}

// Countries lists the country codes fingerprints can be generated for.
func (s *Service) Countries() []string {
	return s.table.Countries()
}

// GenerateFingerprint returns the validated fingerprint for seed. An empty
// country uses the configured default; an empty override lets the country's
// platform mix decide.
func (s *Service) GenerateFingerprint(seed, country string, override schemas.Platform) (schemas.Fingerprint, error) {
	if country == "" {
		country = s.cfg.Generator().DefaultCountry
	}
	return s.generator.Generate(seed, strings.ToUpper(country), override)
}

// ValidateFingerprint checks a record built elsewhere.
func (s *Service) ValidateFingerprint(fp schemas.Fingerprint) fingerprint.Result {
	return s.generator.Validate(fp)
}

// DeriveBiometricProfile returns the behavioral traits for seed.
func (s *Service) DeriveBiometricProfile(seed string) schemas.BiometricProfile {
	return biometrics.Derive(seed)
}

// GenerateIdentity derives both halves of an identity from one seed.
func (s *Service) GenerateIdentity(seed, country string, override schemas.Platform) (Identity, error) {
	fp, err := s.GenerateFingerprint(seed, country, override)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Seed: seed, Fingerprint: fp, Biometrics: s.DeriveBiometricProfile(seed)}, nil
}

// CreateOrchestrator binds an identity to a session. The configured behavior
// tunables and the service logger are applied before opts.
func (s *Service) CreateOrchestrator(session orchestrator.Session, fp schemas.Fingerprint, bio schemas.BiometricProfile, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	base := []orchestrator.Option{
		orchestrator.WithLogger(s.logger),
		orchestrator.WithConfig(s.cfg.Humanoid()),
	}
	return orchestrator.New(session, fp, bio, append(base, opts...)...)
}

// GenerateBatch generates one identity per seed, at most
// generator.batch_concurrency at a time. Results keep the order of seeds.
// The first failure cancels the remaining work and is returned.
func (s *Service) GenerateBatch(ctx context.Context, seeds []string, country string, override schemas.Platform) ([]Identity, error) {
	out := make([]Identity, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.Generator().BatchConcurrency))

	for i, seed := range seeds {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id, err := s.GenerateIdentity(seed, country, override)
			if err != nil {
				return fmt.Errorf("seed %q: %w", seed, err)
			}
			out[i] = id
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("Batch generated", zap.Int("count", len(out)))
	return out, nil
}
