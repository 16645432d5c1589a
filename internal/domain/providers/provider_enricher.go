package providers

import (
	"github.com/carefinder/backend/internal/domain/entities"
)

// ProviderEnricher annotates registry records with data the registry does
// not carry: ratings, acceptance status, and an approximate distance.
// A real enrichment source would back this; the default implementation
// generates bounded placeholder values.
type ProviderEnricher interface {
	// Enrich fills rating and acceptance fields on a provider.
	Enrich(provider *entities.Provider)

	// EstimateDistance returns an approximate distance in miles for a
	// provider within the given search radius.
	EstimateDistance(provider *entities.Provider, radiusMiles int) float64
}
