package entities

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinSymptomsLength and MaxSymptomsLength bound the free-text symptom field.
	MinSymptomsLength = 3
	MaxSymptomsLength = 500

	// MaxLocationLength bounds the optional location field.
	MaxLocationLength = 100

	// MaxInsuranceLength bounds the optional insurance field.
	MaxInsuranceLength = 50

	// MinRadiusMiles and MaxRadiusMiles bound the search radius.
	MinRadiusMiles = 1
	MaxRadiusMiles = 100

	// DefaultRadiusMiles is applied when the request omits a radius.
	DefaultRadiusMiles = 25

	// MaxProvidersPerResult caps the provider list in an assembled result.
	MaxProvidersPerResult = 15
)

// Urgency classifies how quickly a patient should seek care.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Valid reports whether the urgency is one of the enumerated values.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// SearchRequest is the inbound provider search payload.
type SearchRequest struct {
	Symptoms  string `json:"symptoms"`
	Location  string `json:"location,omitempty"`
	Radius    int    `json:"radius,omitempty"`
	Insurance string `json:"insurance,omitempty"`
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Normalize trims free-text fields and applies the default radius.
func (r *SearchRequest) Normalize() {
	r.Symptoms = strings.TrimSpace(r.Symptoms)
	r.Location = strings.TrimSpace(r.Location)
	r.Insurance = strings.TrimSpace(r.Insurance)
	if r.Radius == 0 {
		r.Radius = DefaultRadiusMiles
	}
}

// Validate checks field bounds and returns every violation found.
// The request must be normalized first.
func (r *SearchRequest) Validate() []FieldError {
	var details []FieldError

	if len(r.Symptoms) < MinSymptomsLength {
		details = append(details, FieldError{
			Field:   "symptoms",
			Message: fmt.Sprintf("symptoms must be at least %d characters", MinSymptomsLength),
		})
	} else if len(r.Symptoms) > MaxSymptomsLength {
		details = append(details, FieldError{
			Field:   "symptoms",
			Message: fmt.Sprintf("symptoms must be at most %d characters", MaxSymptomsLength),
		})
	}

	if len(r.Location) > MaxLocationLength {
		details = append(details, FieldError{
			Field:   "location",
			Message: fmt.Sprintf("location must be at most %d characters", MaxLocationLength),
		})
	}

	if r.Radius < MinRadiusMiles || r.Radius > MaxRadiusMiles {
		details = append(details, FieldError{
			Field:   "radius",
			Message: fmt.Sprintf("radius must be between %d and %d miles", MinRadiusMiles, MaxRadiusMiles),
		})
	}

	if len(r.Insurance) > MaxInsuranceLength {
		details = append(details, FieldError{
			Field:   "insurance",
			Message: fmt.Sprintf("insurance must be at most %d characters", MaxInsuranceLength),
		})
	}

	return details
}

// SymptomAnalysis is the structured output of symptom classification.
type SymptomAnalysis struct {
	Urgency         Urgency  `json:"urgency"`
	Specialties     []string `json:"specialties"`
	Recommendations []string `json:"recommendations"`
	Reasoning       string   `json:"reasoning,omitempty"`
	Success         bool     `json:"success"`
}

// Validate checks the structural contract of a classification reply:
// a known urgency and non-empty specialty and recommendation lists.
func (a *SymptomAnalysis) Validate() error {
	if !a.Urgency.Valid() {
		return fmt.Errorf("invalid urgency %q", a.Urgency)
	}
	if len(a.Specialties) == 0 {
		return fmt.Errorf("specialties must not be empty")
	}
	if len(a.Recommendations) == 0 {
		return fmt.Errorf("recommendations must not be empty")
	}
	return nil
}

// FallbackAnalysis is the terminal degradation when every classification
// path has failed. Always well-formed, always medium urgency.
func FallbackAnalysis() *SymptomAnalysis {
	return &SymptomAnalysis{
		Urgency:         UrgencyMedium,
		Specialties:     []string{"Internal Medicine"},
		Recommendations: []string{"Consult a healthcare professional about your symptoms"},
		Reasoning:       "Automated analysis was unavailable; showing general guidance.",
		Success:         false,
	}
}

// SearchParams echoes the normalized inputs back in the response envelope.
type SearchParams struct {
	Symptoms  string `json:"symptoms"`
	Location  string `json:"location,omitempty"`
	Radius    int    `json:"radius"`
	Insurance string `json:"insurance,omitempty"`
}

// SearchResult is the assembled response envelope and the cache value.
type SearchResult struct {
	SearchID     string           `json:"searchId"`
	Analysis     *SymptomAnalysis `json:"analysis"`
	Providers    []Provider       `json:"providers"`
	SearchParams SearchParams     `json:"searchParams"`
	Timestamp    time.Time        `json:"timestamp"`
}
