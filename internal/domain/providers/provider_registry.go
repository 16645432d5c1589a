package providers

import (
	"context"

	"github.com/carefinder/backend/internal/domain/entities"
)

// RegistryQuery describes a single provider registry search.
type RegistryQuery struct {
	Taxonomy string
	City     string
	State    string
	Limit    int
}

// ProviderRegistry is the external NPI registry consumed over HTTP.
type ProviderRegistry interface {
	// Search returns providers matching a taxonomy and location.
	Search(ctx context.Context, query RegistryQuery) ([]entities.Provider, error)

	// GetByNPI returns the provider with the given identifier, or a
	// not-found error when the registry has no match.
	GetByNPI(ctx context.Context, npi string) (*entities.Provider, error)
}
