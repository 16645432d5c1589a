package entities_test

import (
	"testing"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestTaxonomyFor_MapsKnownSpecialties(t *testing.T) {
	assert.Equal(t, "207RC0000X", entities.TaxonomyFor("cardiology"))
	assert.Equal(t, "207RC0000X", entities.TaxonomyFor("Cardiology"))
	assert.Equal(t, "207P00000X", entities.TaxonomyFor(" Emergency Medicine "))
	assert.Equal(t, "207R00000X", entities.TaxonomyFor("Internal Medicine"))
}

func TestTaxonomyFor_PassesUnknownNamesThrough(t *testing.T) {
	assert.Equal(t, "Sports Medicine", entities.TaxonomyFor("Sports Medicine"))
}

func TestAllSpecialties_StableOrder(t *testing.T) {
	first := entities.AllSpecialties()
	second := entities.AllSpecialties()

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, "Allergy and Immunology", first[0].Name)

	for _, s := range first {
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Code)
		assert.NotEmpty(t, s.Category)
	}
}
