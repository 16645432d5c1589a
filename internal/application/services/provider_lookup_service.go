package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/domain/providers"
	"github.com/carefinder/backend/internal/infrastructure/observability"
	apperrors "github.com/carefinder/backend/pkg/errors"
	"github.com/carefinder/backend/pkg/retry"
)

const (
	// MaxSpecialtyFanOut caps how many specialties produce registry
	// queries per search.
	MaxSpecialtyFanOut = 3

	// RegistryQueryLimit is the per-query result limit requested from
	// the registry.
	RegistryQueryLimit = 20
)

// ProviderLookupService fetches, deduplicates, filters, and ranks
// providers from the NPI registry.
type ProviderLookupService struct {
	registry providers.ProviderRegistry
	enricher providers.ProviderEnricher
	retryCfg retry.Config
	metrics  *observability.Metrics
}

// NewProviderLookupService creates a new lookup service.
func NewProviderLookupService(registry providers.ProviderRegistry, enricher providers.ProviderEnricher, metrics *observability.Metrics) *ProviderLookupService {
	return &ProviderLookupService{
		registry: registry,
		enricher: enricher,
		retryCfg: retry.RegistryConfig(),
		metrics:  metrics,
	}
}

// SetRetryConfig overrides the registry retry policy.
func (s *ProviderLookupService) SetRetryConfig(cfg retry.Config) {
	s.retryCfg = cfg
}

// Search queries the registry for each of the first MaxSpecialtyFanOut
// specialties, merges the results, and returns at most limit providers.
// A specialty whose query exhausts its retries contributes zero results;
// only when every specialty fails does the last error surface.
func (s *ProviderLookupService) Search(ctx context.Context, location string, radiusMiles int, specialties []string, limit int) ([]entities.Provider, error) {
	logger := observability.LoggerFromContext(ctx)

	if len(specialties) > MaxSpecialtyFanOut {
		specialties = specialties[:MaxSpecialtyFanOut]
	}

	city, state := splitLocation(location)

	var merged []entities.Provider
	var lastErr error
	succeeded := 0

	for _, specialty := range specialties {
		query := providers.RegistryQuery{
			Taxonomy: specialty,
			City:     city,
			State:    state,
			Limit:    RegistryQueryLimit,
		}

		var found []entities.Provider
		start := time.Now()
		err := retry.DoWithLog(ctx, s.retryCfg, "npi-registry", func() error {
			result, err := s.registry.Search(ctx, query)
			if err != nil {
				return err
			}
			found = result
			return nil
		}, func(attempt int, err error, nextDelay time.Duration) {
			logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("next_delay", nextDelay).
				Str("taxonomy", specialty).
				Msg("registry query failed, retrying")
		})
		if s.metrics != nil {
			observability.RecordRegistryQuery(ctx, s.metrics, specialty, time.Since(start))
		}
		if err != nil {
			lastErr = err
			logger.Warn().
				Err(err).
				Str("taxonomy", specialty).
				Msg("registry query exhausted retries, skipping specialty")
			continue
		}

		succeeded++
		merged = append(merged, found...)
	}

	if succeeded == 0 && lastErr != nil {
		return nil, apperrors.NewExternalError("provider lookup failed for all specialties", lastErr)
	}

	deduped := dedupProviders(merged)
	filtered := s.filterByLocation(deduped, location, radiusMiles)
	sortProviders(filtered)

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	logger.Info().
		Int("fetched", len(merged)).
		Int("deduped", len(deduped)).
		Int("returned", len(filtered)).
		Msg("provider lookup complete")

	return filtered, nil
}

// GetByNPI returns a single provider. The identifier must be exactly ten
// digits; the format gate runs before any outbound call.
func (s *ProviderLookupService) GetByNPI(ctx context.Context, npi string) (*entities.Provider, error) {
	if !entities.ValidNPI(npi) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("NPI must be exactly %d digits", entities.NPILength))
	}

	provider, err := s.registry.GetByNPI(ctx, npi)
	if err != nil {
		return nil, err
	}

	if s.enricher != nil {
		s.enricher.Enrich(provider)
	}
	return provider, nil
}

// splitLocation extracts city and state from a "City, ST" string by
// splitting on the first comma.
func splitLocation(location string) (city, state string) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", ""
	}
	idx := strings.Index(location, ",")
	if idx < 0 {
		return location, ""
	}
	return strings.TrimSpace(location[:idx]), strings.TrimSpace(location[idx+1:])
}

// dedupProviders collapses records sharing (npi, name), keeping the first
// occurrence.
func dedupProviders(list []entities.Provider) []entities.Provider {
	seen := make(map[string]struct{}, len(list))
	out := make([]entities.Provider, 0, len(list))
	for _, p := range list {
		key := p.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// filterByLocation retains providers whose formatted address contains the
// requested location string (case-insensitive). Retained providers get a
// synthetic distance and enrichment fields. An empty location keeps
// everything and assigns no distance.
func (s *ProviderLookupService) filterByLocation(list []entities.Provider, location string, radiusMiles int) []entities.Provider {
	needle := strings.ToLower(strings.TrimSpace(location))

	out := make([]entities.Provider, 0, len(list))
	for _, p := range list {
		if needle != "" {
			if !strings.Contains(strings.ToLower(p.Address.Full), needle) {
				continue
			}
			if s.enricher != nil {
				distance := s.enricher.EstimateDistance(&p, radiusMiles)
				p.Distance = &distance
			}
		}
		if s.enricher != nil {
			s.enricher.Enrich(&p)
		}
		out = append(out, p)
	}
	return out
}

// sortProviders orders by distance ascending where both sides carry one,
// falling back to rating descending.
func sortProviders(list []entities.Provider) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := &list[i], &list[j]
		if a.Distance != nil && b.Distance != nil && *a.Distance != *b.Distance {
			return *a.Distance < *b.Distance
		}
		return a.Rating > b.Rating
	})
}
