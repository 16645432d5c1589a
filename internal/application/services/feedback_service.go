package services

import (
	"context"
	"time"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/infrastructure/observability"
)

// FeedbackService records search feedback. Feedback is emitted to the
// logging collaborator only; nothing is persisted.
type FeedbackService struct{}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService() *FeedbackService {
	return &FeedbackService{}
}

// Create logs a feedback submission.
func (s *FeedbackService) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	observability.LoggerFromContext(ctx).Info().
		Str("search_id", feedback.SearchID).
		Int("rating", feedback.Rating).
		Str("comment", feedback.Comment).
		Str("user_agent", feedback.UserAgent).
		Time("created_at", feedback.CreatedAt).
		Msg("search feedback received")

	return nil
}
