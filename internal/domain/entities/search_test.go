package entities_test

import (
	"strings"
	"testing"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestSearchRequest_Normalize(t *testing.T) {
	req := &entities.SearchRequest{
		Symptoms:  "  chest pain  ",
		Location:  " Boston, MA ",
		Insurance: " Aetna ",
	}

	req.Normalize()

	assert.Equal(t, "chest pain", req.Symptoms)
	assert.Equal(t, "Boston, MA", req.Location)
	assert.Equal(t, "Aetna", req.Insurance)
	assert.Equal(t, entities.DefaultRadiusMiles, req.Radius)
}

func TestSearchRequest_Normalize_KeepsExplicitRadius(t *testing.T) {
	req := &entities.SearchRequest{Symptoms: "headache", Radius: 50}
	req.Normalize()
	assert.Equal(t, 50, req.Radius)
}

func TestSearchRequest_Validate_SymptomBounds(t *testing.T) {
	cases := []struct {
		name     string
		symptoms string
		valid    bool
	}{
		{"too short", "ab", false},
		{"minimum length", "abc", true},
		{"maximum length", strings.Repeat("s", entities.MaxSymptomsLength), true},
		{"over maximum", strings.Repeat("s", entities.MaxSymptomsLength+1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &entities.SearchRequest{Symptoms: tc.symptoms, Radius: entities.DefaultRadiusMiles}
			details := req.Validate()
			if tc.valid {
				assert.Empty(t, details)
			} else {
				assert.Len(t, details, 1)
				assert.Equal(t, "symptoms", details[0].Field)
			}
		})
	}
}

func TestSearchRequest_Validate_RadiusBounds(t *testing.T) {
	cases := []struct {
		name   string
		radius int
		valid  bool
	}{
		{"below minimum", 0, false},
		{"minimum", 1, true},
		{"maximum", 100, true},
		{"above maximum", 101, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &entities.SearchRequest{Symptoms: "headache", Radius: tc.radius}
			details := req.Validate()
			if tc.valid {
				assert.Empty(t, details)
			} else {
				assert.Len(t, details, 1)
				assert.Equal(t, "radius", details[0].Field)
			}
		})
	}
}

func TestSearchRequest_Validate_OptionalFieldBounds(t *testing.T) {
	req := &entities.SearchRequest{
		Symptoms:  "headache",
		Radius:    entities.DefaultRadiusMiles,
		Location:  strings.Repeat("l", entities.MaxLocationLength+1),
		Insurance: strings.Repeat("i", entities.MaxInsuranceLength+1),
	}

	details := req.Validate()

	assert.Len(t, details, 2)
	fields := []string{details[0].Field, details[1].Field}
	assert.Contains(t, fields, "location")
	assert.Contains(t, fields, "insurance")
}

func TestSearchRequest_Validate_CollectsAllViolations(t *testing.T) {
	req := &entities.SearchRequest{Symptoms: "ab", Radius: 0}
	details := req.Validate()
	assert.Len(t, details, 2)
}

func TestUrgency_Valid(t *testing.T) {
	assert.True(t, entities.UrgencyLow.Valid())
	assert.True(t, entities.UrgencyMedium.Valid())
	assert.True(t, entities.UrgencyHigh.Valid())
	assert.False(t, entities.Urgency("critical").Valid())
	assert.False(t, entities.Urgency("").Valid())
}

func TestSymptomAnalysis_Validate(t *testing.T) {
	analysis := &entities.SymptomAnalysis{
		Urgency:         entities.UrgencyHigh,
		Specialties:     []string{"Cardiology"},
		Recommendations: []string{"Seek immediate care"},
	}
	assert.NoError(t, analysis.Validate())

	analysis.Specialties = nil
	assert.Error(t, analysis.Validate())

	analysis.Specialties = []string{"Cardiology"}
	analysis.Recommendations = nil
	assert.Error(t, analysis.Validate())

	analysis.Recommendations = []string{"Seek immediate care"}
	analysis.Urgency = "unknown"
	assert.Error(t, analysis.Validate())
}

func TestFallbackAnalysis_IsWellFormed(t *testing.T) {
	analysis := entities.FallbackAnalysis()

	assert.NoError(t, analysis.Validate())
	assert.Equal(t, entities.UrgencyMedium, analysis.Urgency)
	assert.False(t, analysis.Success)
	assert.NotEmpty(t, analysis.Specialties)
	assert.NotEmpty(t, analysis.Recommendations)
}
