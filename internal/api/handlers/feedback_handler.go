package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/domain/providers"
)

const (
	feedbackRateLimit   = 5
	feedbackRateWindow  = time.Hour
	maxFeedbackComment  = 1000
	maxFeedbackSearchID = 100
)

// FeedbackService defines the feedback operations used by the handler.
type FeedbackService interface {
	Create(ctx context.Context, feedback *entities.Feedback) error
}

// FeedbackHandler handles feedback submissions.
type FeedbackHandler struct {
	service FeedbackService
	cache   providers.CacheProvider
	local   *localRateLimiter
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(service FeedbackService, cache providers.CacheProvider) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		cache:   cache,
		local:   newLocalRateLimiter(),
	}
}

type feedbackRequest struct {
	SearchID string `json:"searchId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// SubmitFeedback handles POST /api/search/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.SearchID = strings.TrimSpace(payload.SearchID)
	payload.Comment = strings.TrimSpace(payload.Comment)

	if payload.SearchID == "" || len(payload.SearchID) > maxFeedbackSearchID {
		respondWithError(w, http.StatusBadRequest, "searchId is required")
		return
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		respondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	if len(payload.Comment) > maxFeedbackComment {
		respondWithError(w, http.StatusBadRequest, "comment is too long")
		return
	}

	key := "feedback:rate:" + clientIP(r)
	allowed, retryAfter := h.allowRequest(r.Context(), key)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	feedback := &entities.Feedback{
		SearchID:  payload.SearchID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
		UserAgent: r.UserAgent(),
	}

	if err := h.service.Create(r.Context(), feedback); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to submit feedback")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{
		"success": true,
	})
}

func (h *FeedbackHandler) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	if h.cache == nil {
		return h.local.allow(key, feedbackRateLimit, feedbackRateWindow)
	}

	count, err := h.cache.Increment(ctx, key, 1, int(feedbackRateWindow.Seconds()))
	if err != nil {
		// Cache outage degrades to the local limiter.
		return h.local.allow(key, feedbackRateLimit, feedbackRateWindow)
	}
	if count > feedbackRateLimit {
		return false, feedbackRateWindow
	}
	return true, feedbackRateWindow
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := time.Until(state.resetAt)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
