package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/infrastructure/observability"
	"github.com/carefinder/backend/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client classifies free-text symptoms against the OpenAI responses API.
//
// Analysis tries an ordered chain of strategies: a structured prompt with
// strict validation, then a simpler prompt, and finally a hardcoded
// fallback analysis. Upstream failures never surface to callers.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
	strategies []analysisStrategy
}

type analysisStrategy struct {
	name         string
	systemPrompt string
}

// NewClient creates a new classification client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
		strategies: []analysisStrategy{
			{name: "structured", systemPrompt: structuredSystemPrompt},
			{name: "simple", systemPrompt: simpleSystemPrompt},
		},
	}, nil
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseUsage struct {
	TotalTokens int `json:"total_tokens"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
	Usage  responseUsage    `json:"usage"`
}

// Analyze classifies symptoms into a structured analysis. The symptom text
// must already satisfy the request length bounds. An error is returned only
// for context cancellation; every upstream failure degrades to the next
// strategy and finally to the hardcoded fallback.
func (c *Client) Analyze(ctx context.Context, symptoms string) (*entities.SymptomAnalysis, error) {
	logger := observability.LoggerFromContext(ctx)

	var lastErr error
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		analysis, err := c.analyzeWith(ctx, strategy, symptoms)
		if err == nil {
			analysis.Success = true
			return analysis, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		lastErr = err
		logger.Warn().
			Err(err).
			Str("strategy", strategy.name).
			Msg("symptom classification attempt failed")
	}

	logger.Warn().
		Err(lastErr).
		Msg("all classification strategies failed, returning fallback analysis")
	return entities.FallbackAnalysis(), nil
}

func (c *Client) analyzeWith(ctx context.Context, strategy analysisStrategy, symptoms string) (*entities.SymptomAnalysis, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	payload := map[string]interface{}{
		"model": c.model,
		"input": []map[string]string{
			{"role": "system", "content": strategy.systemPrompt},
			{"role": "user", "content": buildAnalysisUserPrompt(symptoms)},
		},
		"temperature":       0.2,
		"max_output_tokens": 400,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordUsage(ctx, strategy.name, 0, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("openai request failed with status %d", resp.StatusCode)
		c.recordUsage(ctx, strategy.name, resp.StatusCode, 0, time.Since(start), err)
		return nil, err
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.recordUsage(ctx, strategy.name, resp.StatusCode, 0, time.Since(start), err)
		return nil, err
	}

	text := outputText(&envelope)
	if text == "" {
		err := errors.New("openai response missing output text")
		c.recordUsage(ctx, strategy.name, resp.StatusCode, envelope.Usage.TotalTokens, time.Since(start), err)
		return nil, err
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		c.recordUsage(ctx, strategy.name, resp.StatusCode, envelope.Usage.TotalTokens, time.Since(start), err)
		return nil, err
	}

	c.recordUsage(ctx, strategy.name, resp.StatusCode, envelope.Usage.TotalTokens, time.Since(start), nil)
	return analysis, nil
}

func outputText(envelope *responseEnvelope) string {
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				return content.Text
			}
		}
	}
	return ""
}

// parseAnalysis parses and structurally validates a classification reply.
func parseAnalysis(text string) (*entities.SymptomAnalysis, error) {
	cleaned := stripCodeFences(text)

	var analysis entities.SymptomAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse classification reply: %w", err)
	}
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("malformed classification reply: %w", err)
	}
	return &analysis, nil
}

// stripCodeFences removes Markdown code blocks models sometimes wrap
// JSON replies in.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

// recordUsage emits the usage telemetry record for one classification call:
// a structured log line plus otel counters and histograms.
func (c *Client) recordUsage(ctx context.Context, strategy string, statusCode, tokens int, duration time.Duration, err error) {
	event := observability.LoggerFromContext(ctx).Info()
	if err != nil {
		event = observability.LoggerFromContext(ctx).Warn().Err(err)
	}
	event.
		Str("model", c.model).
		Str("strategy", strategy).
		Int("tokens", tokens).
		Dur("latency", duration).
		Msg("classification usage")

	recordClassifyMetric(ctx, c.model, strategy, statusCode, tokens, duration, err)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type classifyMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	tokensUsed      metric.Int64Counter
}

var classifyMetricsInit = false
var classifyMetricsInst classifyMetrics

func ensureClassifyMetrics() {
	if classifyMetricsInit {
		return
	}
	meter := otel.Meter("github.com/carefinder/backend/openai")

	requestCount, err := meter.Int64Counter(
		"ai.classify.request.count",
		metric.WithDescription("Number of classification requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.classify.request.duration",
		metric.WithDescription("Classification request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.classify.request.errors",
		metric.WithDescription("Number of classification request errors"),
	)
	if err != nil {
		return
	}
	tokensUsed, err := meter.Int64Counter(
		"ai.classify.tokens",
		metric.WithDescription("Tokens consumed by classification requests"),
	)
	if err != nil {
		return
	}

	classifyMetricsInst = classifyMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		tokensUsed:      tokensUsed,
	}
	classifyMetricsInit = true
}

func recordClassifyMetric(ctx context.Context, model, strategy string, statusCode, tokens int, duration time.Duration, err error) {
	ensureClassifyMetrics()
	if !classifyMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
		attribute.String("ai.strategy", strategy),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	classifyMetricsInst.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	classifyMetricsInst.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if tokens > 0 {
		classifyMetricsInst.tokensUsed.Add(ctx, int64(tokens), metric.WithAttributes(attrs...))
	}
	if err != nil {
		classifyMetricsInst.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
