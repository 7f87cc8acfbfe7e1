package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"deal-checker/config"
	"deal-checker/internal/dto"
	"deal-checker/pkg/httpclient"
	"deal-checker/pkg/logger"
	"deal-checker/pkg/ratelimit"
)

// AssessmentRepository asks an external model to describe a listing.
type AssessmentRepository interface {
	Assess(ctx context.Context, req dto.ProducerRequest) (*dto.RawAssessment, error)
}

// tokenCounter sizes a prompt before it is sent so the token budget can be
// enforced up front.
type tokenCounter interface {
	CountTokens(ctx context.Context, model, prompt string) (int, error)
}

type genaiTokenCounter struct {
	client *genai.Client
}

func (g *genaiTokenCounter) CountTokens(ctx context.Context, model, prompt string) (int, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	resp, err := g.client.Models.CountTokens(ctx, model, contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

// geminiAIRepository is an AssessmentRepository backed by the Google Gemini API.
type geminiAIRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            config.Gemini
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	counter        tokenCounter
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg config.Gemini, log *logger.Logger) (AssessmentRepository, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiAIRepository(cfg, log, httpclient.New(cfg.BaseURL, cfg.Timeout, ""), &genaiTokenCounter{client: genAiClient}), nil
}

func newGeminiAIRepository(cfg config.Gemini, log *logger.Logger, client httpclient.HTTPClient, counter tokenCounter) *geminiAIRepository {
	perMinute := cfg.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 1
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)

	return &geminiAIRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute),
		counter:        counter,
	}
}

func (r *geminiAIRepository) Assess(ctx context.Context, req dto.ProducerRequest) (*dto.RawAssessment, error) {
	if strings.TrimSpace(req.Listing.Description) == "" {
		return nil, fmt.Errorf("empty listing description")
	}

	prompt := promptAssessListing(req)

	geminiAPIResponse, err := r.sendRequest(ctx, prompt)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to send request to gemini", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to gemini: %w", err)
	}

	assessment, err := r.parseResponse(geminiAPIResponse)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to parse response from gemini", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to parse response from gemini: %w", err)
	}
	return assessment, nil
}

func (r *geminiAIRepository) sendRequest(ctx context.Context, prompt string) (*dto.GeminiAPIResponse, error) {
	tokens, err := r.counter.CountTokens(ctx, r.cfg.BaseModel, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.DebugContext(ctx, "Gemini token count",
		logger.IntField("total_tokens", tokens),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)
	if err := r.tokenLimiter.Wait(ctx, tokens); err != nil {
		return nil, fmt.Errorf("failed to wait for token gemini limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request gemini limit: %w", err)
	}

	if tokens > r.cfg.MaxTokenPerMinute/2 {
		r.logger.WarnContext(ctx, "Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
		GenerationConfig: &dto.GenerationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0,
		},
	}

	geminiAPIResponse := dto.GeminiAPIResponse{}

	apiURL := fmt.Sprintf("/%s:generateContent?key=%s", r.cfg.BaseModel, r.cfg.APIKey)

	geminiResp, err := r.httpClient.Post(ctx, apiURL, payload, nil, &geminiAPIResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to gemini: %w", err)
	}

	if geminiResp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "failed to get data from gemini", logger.IntField("status_code", geminiResp.StatusCode))
		return nil, fmt.Errorf("gemini returned status %d: %s", geminiResp.StatusCode, string(geminiResp.Body))
	}

	return &geminiAPIResponse, nil
}

func (r *geminiAIRepository) parseResponse(response *dto.GeminiAPIResponse) (*dto.RawAssessment, error) {
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("invalid response from Gemini API: no content found")
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return dto.ParseRawAssessment(sb.String())
}
