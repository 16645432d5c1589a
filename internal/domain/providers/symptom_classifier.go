package providers

import (
	"context"

	"github.com/carefinder/backend/internal/domain/entities"
)

// SymptomClassifier turns free-text symptoms into a structured analysis.
//
// Implementations must degrade internally: upstream failures fall back to
// simpler strategies and finally to a hardcoded analysis, so the returned
// error is reserved for context cancellation or internal faults.
type SymptomClassifier interface {
	Analyze(ctx context.Context, symptoms string) (*entities.SymptomAnalysis, error)
}
