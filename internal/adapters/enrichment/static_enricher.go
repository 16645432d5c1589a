package enrichment

import (
	"math/rand"
	"sync"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/domain/providers"
)

// StaticEnricher generates bounded placeholder ratings, acceptance flags,
// and distances. It stands in for a real enrichment source (claims data,
// patient reviews, geocoding); values are deterministic for a given seed.
type StaticEnricher struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStaticEnricher creates an enricher from a seed.
func NewStaticEnricher(seed int64) *StaticEnricher {
	return &StaticEnricher{
		rng: rand.New(rand.NewSource(seed)),
	}
}

var _ providers.ProviderEnricher = (*StaticEnricher)(nil)

// Enrich fills rating and acceptance fields. Ratings span 3.0-5.0; about
// four in five providers accept new patients.
func (e *StaticEnricher) Enrich(provider *entities.Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()

	provider.Rating = roundToTenth(3.0 + e.rng.Float64()*2.0)
	provider.AcceptingNewPatients = e.rng.Float64() < 0.8
}

// EstimateDistance returns a placeholder distance within the search
// radius. This is an acknowledged approximation, not geocoding.
func (e *StaticEnricher) EstimateDistance(provider *entities.Provider, radiusMiles int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if radiusMiles <= 0 {
		radiusMiles = entities.DefaultRadiusMiles
	}
	return roundToTenth(0.5 + e.rng.Float64()*(float64(radiusMiles)-0.5))
}

func roundToTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
