package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-checker/config"
	"deal-checker/internal/dto"
	"deal-checker/internal/model"
	"deal-checker/internal/service"
	"deal-checker/internal/valuation"
)

type fakeDealService struct {
	listing    dto.Listing
	assessment string
	limit      int
	err        error
}

func (f *fakeDealService) Evaluate(_ context.Context, listing dto.Listing, assessment string) (*service.DealResult, error) {
	f.listing = listing
	f.assessment = assessment
	if f.err != nil {
		return nil, f.err
	}
	return &service.DealResult{
		Result:           &valuation.Result{UniqueAdID: "id-1", DealScore: 70, Classification: dto.ClassFair},
		AssessmentSource: service.SourceProvided,
	}, nil
}

func (f *fakeDealService) Analyze(_ context.Context, listing dto.Listing) (*service.DealResult, error) {
	f.listing = listing
	if f.err != nil {
		return nil, f.err
	}
	return &service.DealResult{
		Result:           &valuation.Result{UniqueAdID: "id-2", DealScore: 55, Classification: dto.ClassOverpriced},
		AssessmentSource: service.SourceProducer,
	}, nil
}

func (f *fakeDealService) History(_ context.Context, limit int) ([]model.HistoryRecord, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []model.HistoryRecord{{UniqueAdID: "id-1"}}, nil
}

func newTestServer(deals service.DealService, analyzePerMinute int) *echo.Echo {
	e := echo.New()
	cfg := &config.Config{API: config.API{AnalyzePerMinute: analyzePerMinute}}
	h := NewHttpAPIHandler(context.Background(), cfg, e, goValidator.New(), &service.Service{DealService: deals})
	h.SetupRoutes()
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateDeal(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		wantStatus     int
		wantAssessment string
	}{
		{
			name:           "object assessment",
			body:           `{"listing":{"description":"2015 Honda Civic","price_usd":9000},"assessment":{"deal_score":80}}`,
			wantStatus:     http.StatusOK,
			wantAssessment: `{"deal_score":80}`,
		},
		{
			name:           "string assessment",
			body:           `{"listing":{"vin":"1HGCM82633A004352"},"assessment":"Here you go: {\"deal_score\": 80}"}`,
			wantStatus:     http.StatusOK,
			wantAssessment: `Here you go: {"deal_score": 80}`,
		},
		{name: "missing assessment", body: `{"listing":{"description":"x"}}`, wantStatus: http.StatusBadRequest},
		{name: "missing description and vin", body: `{"listing":{},"assessment":{}}`, wantStatus: http.StatusBadRequest},
		{name: "bad seller type", body: `{"listing":{"description":"x","seller_type":"broker"},"assessment":{}}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{"listing":`, wantStatus: http.StatusBadRequest},
		{name: "service error", body: `{"listing":{"description":"x"},"assessment":{}}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := &fakeDealService{err: tt.err}
			e := newTestServer(deals, 10)

			rec := do(e, http.MethodPost, "/api/v1/deals/evaluate", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantAssessment != "" {
				assert.Equal(t, tt.wantAssessment, deals.assessment)

				var resp struct {
					Code int `json:"code"`
					Data struct {
						UniqueAdID       string  `json:"unique_ad_id"`
						DealScore        float64 `json:"deal_score"`
						AssessmentSource string  `json:"assessment_source"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, http.StatusOK, resp.Code)
				assert.Equal(t, "id-1", resp.Data.UniqueAdID)
				assert.Equal(t, 70.0, resp.Data.DealScore)
				assert.Equal(t, service.SourceProvided, resp.Data.AssessmentSource)
			}
		})
	}
}

func TestAnalyzeDeal_RateLimited(t *testing.T) {
	deals := &fakeDealService{}
	e := newTestServer(deals, 2)
	body := `{"listing":{"description":"2019 Kia Soul","location":"Denver, CO"}}`

	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/v1/deals/analyze", body).Code)
	assert.Equal(t, "Denver, CO", deals.listing.Location)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/v1/deals/analyze", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodPost, "/api/v1/deals/analyze", body).Code)
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantLimit  int
	}{
		{name: "default", target: "/api/v1/history", wantStatus: http.StatusOK},
		{name: "limit", target: "/api/v1/history?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "limit too large", target: "/api/v1/history?limit=5000", wantStatus: http.StatusBadRequest},
		{name: "limit not a number", target: "/api/v1/history?limit=abc", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := &fakeDealService{}
			e := newTestServer(deals, 10)

			rec := do(e, http.MethodGet, tt.target, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLimit, deals.limit)
		})
	}
}

func TestAssessmentText(t *testing.T) {
	assert.Equal(t, `{"a":1}`, assessmentText([]byte(`{"a":1}`)))
	assert.Equal(t, "plain", assessmentText([]byte(`"plain"`)))
}
