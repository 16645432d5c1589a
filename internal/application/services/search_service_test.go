package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/carefinder/backend/internal/adapters/cache"
	"github.com/carefinder/backend/internal/application/services"
	"github.com/carefinder/backend/internal/domain/entities"
	apperrors "github.com/carefinder/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type stubClassifier struct {
	mu       sync.Mutex
	analysis *entities.SymptomAnalysis
	err      error
	calls    int
}

func (s *stubClassifier) Analyze(ctx context.Context, symptoms string) (*entities.SymptomAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

func (s *stubClassifier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubEventBus struct {
	mu        sync.Mutex
	published []*entities.SearchEvent
}

func (s *stubEventBus) Publish(ctx context.Context, channel string, event *entities.SearchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, event)
	return nil
}

func (s *stubEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error) {
	return nil, errors.New("not implemented")
}

func (s *stubEventBus) Close() error { return nil }

func (s *stubEventBus) events() []*entities.SearchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entities.SearchEvent(nil), s.published...)
}

func highUrgencyAnalysis() *entities.SymptomAnalysis {
	return &entities.SymptomAnalysis{
		Urgency:         entities.UrgencyHigh,
		Specialties:     []string{"Cardiology", "Emergency Medicine"},
		Recommendations: []string{"Seek immediate medical attention"},
		Success:         true,
	}
}

func newMemoryCache(t *testing.T) *cache.MemoryAdapter {
	t.Helper()
	adapter := cache.NewMemoryAdapter(100, time.Hour)
	t.Cleanup(adapter.Stop)
	return adapter
}

func TestSearchService_SearchProviders_ChestPainFlow(t *testing.T) {
	classifier := &stubClassifier{analysis: highUrgencyAnalysis()}
	registry := &stubRegistry{results: map[string][]entities.Provider{
		"207RC0000X": {bostonProvider("1234567890", "Jane Smith, MD")},
	}}
	lookup := newLookupService(registry, &stubEnricher{})
	service := services.NewSearchService(classifier, lookup, nil, nil, nil, 0)

	req := &entities.SearchRequest{Symptoms: "crushing chest pain", Location: "Boston, MA"}
	req.Normalize()

	result, err := service.SearchProviders(context.Background(), req)

	assert.NoError(t, err)
	assert.NotEmpty(t, result.SearchID)
	assert.Equal(t, entities.UrgencyHigh, result.Analysis.Urgency)
	assert.Len(t, result.Providers, 1)
	assert.Equal(t, "1234567890", result.Providers[0].NPI)
	assert.Equal(t, "crushing chest pain", result.SearchParams.Symptoms)
	assert.Equal(t, "Boston, MA", result.SearchParams.Location)
	assert.Equal(t, entities.DefaultRadiusMiles, result.SearchParams.Radius)
	assert.False(t, result.Timestamp.IsZero())

	// Specialty names are mapped to taxonomy codes before querying.
	taxonomies := make([]string, 0, len(registry.queries))
	for _, q := range registry.queries {
		taxonomies = append(taxonomies, q.Taxonomy)
	}
	assert.Equal(t, []string{"207RC0000X", "207P00000X"}, taxonomies)
}

func TestSearchService_SearchProviders_SecondCallServedFromCache(t *testing.T) {
	classifier := &stubClassifier{analysis: highUrgencyAnalysis()}
	registry := &stubRegistry{results: map[string][]entities.Provider{
		"207RC0000X": {bostonProvider("1234567890", "Jane Smith, MD")},
	}}
	lookup := newLookupService(registry, &stubEnricher{})
	bus := &stubEventBus{}
	service := services.NewSearchService(classifier, lookup, newMemoryCache(t), bus, nil, 3600)

	req := &entities.SearchRequest{Symptoms: "crushing chest pain", Location: "Boston, MA"}
	req.Normalize()

	first, err := service.SearchProviders(context.Background(), req)
	assert.NoError(t, err)

	queriesAfterFirst := registry.queryCount()

	second, err := service.SearchProviders(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, first.SearchID, second.SearchID)
	assert.Equal(t, 1, classifier.callCount())
	assert.Equal(t, queriesAfterFirst, registry.queryCount())

	events := bus.events()
	if assert.Len(t, events, 2) {
		assert.False(t, events[0].CacheHit)
		assert.True(t, events[1].CacheHit)
	}
}

func TestSearchService_SearchProviders_DistinctRequestsMissCache(t *testing.T) {
	classifier := &stubClassifier{analysis: highUrgencyAnalysis()}
	registry := &stubRegistry{results: map[string][]entities.Provider{}}
	lookup := newLookupService(registry, &stubEnricher{})
	service := services.NewSearchService(classifier, lookup, newMemoryCache(t), nil, nil, 3600)

	first := &entities.SearchRequest{Symptoms: "crushing chest pain", Location: "Boston, MA"}
	first.Normalize()
	second := &entities.SearchRequest{Symptoms: "crushing chest pain", Location: "Worcester, MA"}
	second.Normalize()

	a, err := service.SearchProviders(context.Background(), first)
	assert.NoError(t, err)
	b, err := service.SearchProviders(context.Background(), second)
	assert.NoError(t, err)

	assert.NotEqual(t, a.SearchID, b.SearchID)
	assert.Equal(t, 2, classifier.callCount())
}

func TestSearchService_SearchProviders_ClassifierFailure(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("upstream exploded")}
	registry := &stubRegistry{}
	lookup := newLookupService(registry, &stubEnricher{})
	service := services.NewSearchService(classifier, lookup, nil, nil, nil, 0)

	req := &entities.SearchRequest{Symptoms: "headache"}
	req.Normalize()

	_, err := service.SearchProviders(context.Background(), req)

	var appErr *apperrors.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
		assert.Equal(t, "Failed to analyze symptoms", appErr.Message)
	}
	assert.Equal(t, 0, registry.queryCount())
}

func TestSearchService_SearchProviders_LookupFailure(t *testing.T) {
	classifier := &stubClassifier{analysis: highUrgencyAnalysis()}
	registry := &stubRegistry{failures: map[string]error{
		"207RC0000X": errors.New("registry down"),
		"207P00000X": errors.New("registry down"),
	}}
	lookup := newLookupService(registry, &stubEnricher{})
	service := services.NewSearchService(classifier, lookup, nil, nil, nil, 0)

	req := &entities.SearchRequest{Symptoms: "crushing chest pain"}
	req.Normalize()

	_, err := service.SearchProviders(context.Background(), req)

	var appErr *apperrors.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
		assert.Equal(t, "Search failed", appErr.Message)
	}
}

func TestSearchService_SearchProviders_CapsProviderCount(t *testing.T) {
	var many []entities.Provider
	for i := 0; i < 20; i++ {
		many = append(many, bostonProvider(fmt.Sprintf("%010d", i), fmt.Sprintf("Provider %d", i)))
	}

	classifier := &stubClassifier{analysis: &entities.SymptomAnalysis{
		Urgency:         entities.UrgencyLow,
		Specialties:     []string{"Cardiology"},
		Recommendations: []string{"Schedule a routine visit"},
		Success:         true,
	}}
	registry := &stubRegistry{results: map[string][]entities.Provider{
		"207RC0000X": many,
	}}
	lookup := newLookupService(registry, &stubEnricher{})
	service := services.NewSearchService(classifier, lookup, nil, nil, nil, 0)

	req := &entities.SearchRequest{Symptoms: "mild palpitations"}
	req.Normalize()

	result, err := service.SearchProviders(context.Background(), req)

	assert.NoError(t, err)
	assert.Len(t, result.Providers, entities.MaxProvidersPerResult)
}

func TestSearchService_SearchProviders_DegradedAnalysisStillSearches(t *testing.T) {
	classifier := &stubClassifier{analysis: entities.FallbackAnalysis()}
	registry := &stubRegistry{results: map[string][]entities.Provider{
		"207R00000X": {bostonProvider("1234567890", "Jane Smith, MD")},
	}}
	lookup := newLookupService(registry, &stubEnricher{})
	service := services.NewSearchService(classifier, lookup, nil, nil, nil, 0)

	req := &entities.SearchRequest{Symptoms: "vague tiredness"}
	req.Normalize()

	result, err := service.SearchProviders(context.Background(), req)

	assert.NoError(t, err)
	assert.False(t, result.Analysis.Success)
	assert.Len(t, result.Providers, 1)
}

func TestSearchService_GetProvider_Delegates(t *testing.T) {
	record := bostonProvider("1234567890", "Jane Smith, MD")
	registry := &stubRegistry{getProvider: &record}
	lookup := newLookupService(registry, &stubEnricher{})
	service := services.NewSearchService(&stubClassifier{}, lookup, nil, nil, nil, 0)

	provider, err := service.GetProvider(context.Background(), "1234567890")

	assert.NoError(t, err)
	assert.Equal(t, "1234567890", provider.NPI)
}
