package enrichment_test

import (
	"testing"

	"github.com/carefinder/backend/internal/adapters/enrichment"
	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestStaticEnricher_RatingsStayInBounds(t *testing.T) {
	enricher := enrichment.NewStaticEnricher(1)

	for i := 0; i < 100; i++ {
		provider := &entities.Provider{NPI: "1234567890"}
		enricher.Enrich(provider)
		assert.GreaterOrEqual(t, provider.Rating, 3.0)
		assert.LessOrEqual(t, provider.Rating, 5.0)
	}
}

func TestStaticEnricher_DistancesStayWithinRadius(t *testing.T) {
	enricher := enrichment.NewStaticEnricher(1)
	provider := &entities.Provider{NPI: "1234567890"}

	for i := 0; i < 100; i++ {
		distance := enricher.EstimateDistance(provider, 10)
		assert.GreaterOrEqual(t, distance, 0.5)
		assert.LessOrEqual(t, distance, 10.0)
	}
}

func TestStaticEnricher_ZeroRadiusUsesDefault(t *testing.T) {
	enricher := enrichment.NewStaticEnricher(1)
	provider := &entities.Provider{NPI: "1234567890"}

	distance := enricher.EstimateDistance(provider, 0)
	assert.GreaterOrEqual(t, distance, 0.5)
	assert.LessOrEqual(t, distance, float64(entities.DefaultRadiusMiles))
}

func TestStaticEnricher_DeterministicForSeed(t *testing.T) {
	a := enrichment.NewStaticEnricher(42)
	b := enrichment.NewStaticEnricher(42)

	pa := &entities.Provider{NPI: "1234567890"}
	pb := &entities.Provider{NPI: "1234567890"}
	a.Enrich(pa)
	b.Enrich(pb)

	assert.Equal(t, pa.Rating, pb.Rating)
	assert.Equal(t, pa.AcceptingNewPatients, pb.AcceptingNewPatients)
}
