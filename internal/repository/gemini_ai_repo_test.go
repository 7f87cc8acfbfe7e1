package repository

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-checker/config"
	"deal-checker/internal/dto"
	"deal-checker/pkg/httpclient"
	"deal-checker/pkg/logger"
)

type fakeHTTPClient struct {
	status   int
	text     string
	err      error
	endpoint string
	payload  dto.GeminiAPIRequest
}

func (f *fakeHTTPClient) Post(_ context.Context, endpoint string, body interface{}, _ map[string]string, result interface{}) (*httpclient.BaseResponse, error) {
	f.endpoint = endpoint
	f.payload = body.(dto.GeminiAPIRequest)
	if f.err != nil {
		return &httpclient.BaseResponse{}, f.err
	}
	if f.status == http.StatusOK {
		resp := result.(*dto.GeminiAPIResponse)
		resp.Candidates = []dto.Candidate{{Content: dto.Content{Parts: []dto.Part{{Text: f.text}}}}}
	}
	return &httpclient.BaseResponse{StatusCode: f.status, Body: []byte("quota")}, nil
}

type fakeCounter struct {
	tokens int
	err    error
}

func (f fakeCounter) CountTokens(_ context.Context, _, _ string) (int, error) {
	return f.tokens, f.err
}

func testGeminiConfig() config.Gemini {
	return config.Gemini{
		APIKey:              "k",
		BaseModel:           "gemini-2.5-flash",
		MaxRequestPerMinute: 6000,
		MaxTokenPerMinute:   100000,
	}
}

func TestGeminiAIRepository_Assess(t *testing.T) {
	client := &fakeHTTPClient{
		status: http.StatusOK,
		text:   "```json\n{\"deal_score\": 7.5, \"vehicle_facts\": {\"title_status\": \"clean\"}}\n```",
	}
	repo := newGeminiAIRepository(testGeminiConfig(), logger.NewNop(), client, fakeCounter{tokens: 900})

	got, err := repo.Assess(context.Background(), dto.ProducerRequest{
		Listing:        dto.Listing{Description: "2017 Honda Accord EX", VIN: "1hgcv1f3xha000001", Location: "94103", SellerType: "private"},
		HistoricalNote: "prior scores for Honda Accord varied: [55 80 62]",
	})
	require.NoError(t, err)
	require.NotNil(t, got.DealScore)
	assert.Equal(t, 7.5, *got.DealScore)
	assert.Equal(t, dto.TitleClean, got.VehicleFacts.TitleStatus)

	assert.Equal(t, "/gemini-2.5-flash:generateContent?key=k", client.endpoint)
	require.NotNil(t, client.payload.GenerationConfig)
	assert.Equal(t, "application/json", client.payload.GenerationConfig.ResponseMimeType)
	prompt := client.payload.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "VIN: 1HGCV1F3XHA000001")
	assert.Contains(t, prompt, "Historical note: prior scores for Honda Accord varied")
	assert.Contains(t, prompt, "2017 Honda Accord EX")
}

func TestGeminiAIRepository_AssessErrors(t *testing.T) {
	listing := dto.Listing{Description: "2012 Ford Focus"}
	tests := []struct {
		name    string
		client  *fakeHTTPClient
		counter fakeCounter
		wantErr string
	}{
		{name: "token count fails", client: &fakeHTTPClient{status: http.StatusOK}, counter: fakeCounter{err: errors.New("boom")}, wantErr: "count tokens"},
		{name: "transport error", client: &fakeHTTPClient{err: errors.New("timeout")}, wantErr: "timeout"},
		{name: "non 200", client: &fakeHTTPClient{status: http.StatusTooManyRequests}, wantErr: "status 429"},
		{name: "no json", client: &fakeHTTPClient{status: http.StatusOK, text: "sorry, cannot help"}, wantErr: "parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newGeminiAIRepository(testGeminiConfig(), logger.NewNop(), tt.client, tt.counter)
			_, err := repo.Assess(context.Background(), dto.ProducerRequest{Listing: listing})
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}

	repo := newGeminiAIRepository(testGeminiConfig(), logger.NewNop(), &fakeHTTPClient{}, fakeCounter{})
	_, err := repo.Assess(context.Background(), dto.ProducerRequest{})
	assert.Error(t, err)
}

func TestNewGeminiAIRepository_RequiresKey(t *testing.T) {
	_, err := NewGeminiAIRepository(config.Gemini{}, logger.NewNop())
	assert.Error(t, err)
}
