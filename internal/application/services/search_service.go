package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carefinder/backend/internal/adapters/events"
	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/domain/providers"
	"github.com/carefinder/backend/internal/infrastructure/observability"
	apperrors "github.com/carefinder/backend/pkg/errors"
)

// DefaultResultTTLSeconds is how long an assembled result stays cached.
const DefaultResultTTLSeconds = 3600

// SearchService orchestrates a provider search: cache check, symptom
// classification, specialty mapping, provider lookup, assembly, and
// cache store. Only fully assembled results are ever cached.
type SearchService struct {
	classifier providers.SymptomClassifier
	lookup     *ProviderLookupService
	cache      providers.CacheProvider
	eventBus   providers.EventBus
	metrics    *observability.Metrics
	ttlSeconds int
}

// NewSearchService creates a new search orchestrator. cache, eventBus,
// and metrics may be nil; the pipeline degrades without them.
func NewSearchService(
	classifier providers.SymptomClassifier,
	lookup *ProviderLookupService,
	cache providers.CacheProvider,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
	ttlSeconds int,
) *SearchService {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultResultTTLSeconds
	}
	return &SearchService{
		classifier: classifier,
		lookup:     lookup,
		cache:      cache,
		eventBus:   eventBus,
		metrics:    metrics,
		ttlSeconds: ttlSeconds,
	}
}

// SearchProviders runs the search pipeline for a normalized, validated
// request. Failures surface as AppErrors carrying the user-facing
// message; cache failures degrade silently to misses.
func (s *SearchService) SearchProviders(ctx context.Context, req *entities.SearchRequest) (*entities.SearchResult, error) {
	logger := observability.LoggerFromContext(ctx)
	key := cacheKey(req)

	if cached := s.cachedResult(ctx, key); cached != nil {
		if s.metrics != nil {
			observability.RecordCacheHit(ctx, s.metrics, "search:result")
		}
		logger.Info().Str("cache_key", key).Msg("search served from cache")
		s.publishEvent(ctx, cached, true)
		return cached, nil
	}
	if s.metrics != nil {
		observability.RecordCacheMiss(ctx, s.metrics, "search:result")
	}

	analysis, err := s.classifier.Analyze(ctx, req.Symptoms)
	if err != nil {
		return nil, apperrors.NewExternalError("Failed to analyze symptoms", err)
	}
	logger.Info().
		Str("urgency", string(analysis.Urgency)).
		Strs("specialties", analysis.Specialties).
		Bool("degraded", !analysis.Success).
		Msg("symptoms classified")

	taxonomies := make([]string, 0, len(analysis.Specialties))
	for _, specialty := range analysis.Specialties {
		taxonomies = append(taxonomies, entities.TaxonomyFor(specialty))
	}

	found, err := s.lookup.Search(ctx, req.Location, req.Radius, taxonomies, RegistryQueryLimit)
	if err != nil {
		return nil, apperrors.NewExternalError("Search failed", err)
	}

	if len(found) > entities.MaxProvidersPerResult {
		found = found[:entities.MaxProvidersPerResult]
	}

	result := &entities.SearchResult{
		SearchID:  uuid.NewString(),
		Analysis:  analysis,
		Providers: found,
		SearchParams: entities.SearchParams{
			Symptoms:  req.Symptoms,
			Location:  req.Location,
			Radius:    req.Radius,
			Insurance: req.Insurance,
		},
		Timestamp: time.Now().UTC(),
	}

	s.storeResult(ctx, key, result)
	s.publishEvent(ctx, result, false)

	logger.Info().
		Str("search_id", result.SearchID).
		Int("providers", len(result.Providers)).
		Msg("search complete")

	return result, nil
}

// GetProvider looks up a single provider by NPI.
func (s *SearchService) GetProvider(ctx context.Context, npi string) (*entities.Provider, error) {
	return s.lookup.GetByNPI(ctx, npi)
}

func (s *SearchService) cachedResult(ctx context.Context, key string) *entities.SearchResult {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	var result entities.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("discarding undecodable cached result")
		_ = s.cache.Delete(ctx, key)
		return nil
	}
	return &result
}

func (s *SearchService) storeResult(ctx context.Context, key string, result *entities.SearchResult) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to encode result for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttlSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to cache search result")
	}
}

func (s *SearchService) publishEvent(ctx context.Context, result *entities.SearchResult, cacheHit bool) {
	if s.eventBus == nil {
		return
	}

	event := &entities.SearchEvent{
		ID:            uuid.NewString(),
		Type:          entities.SearchEventCompleted,
		SearchID:      result.SearchID,
		Urgency:       result.Analysis.Urgency,
		Specialties:   result.Analysis.Specialties,
		ProviderCount: len(result.Providers),
		CacheHit:      cacheHit,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, events.SearchChannel, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to publish search event")
	}
}

// cacheKey derives a deterministic key from the normalized request tuple.
// Distinct tuples produce distinct keys; field order is fixed.
func cacheKey(req *entities.SearchRequest) string {
	normalized := strings.Join([]string{
		strings.ToLower(req.Symptoms),
		strings.ToLower(req.Location),
		fmt.Sprintf("%d", req.Radius),
		strings.ToLower(req.Insurance),
	}, "|")

	hash := sha256.Sum256([]byte(normalized))
	return "search:result:" + hex.EncodeToString(hash[:])
}
