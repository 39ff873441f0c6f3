package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceCast/internal/domain/models"
	"PriceCast/internal/repository"
	"PriceCast/internal/service/cache"
	"PriceCast/internal/service/ratelimit"
	"PriceCast/internal/services/ml"
	"PriceCast/internal/usecase"
	xlogger "PriceCast/pkg/logger"
)

var day0 = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func synth(ticker string, n int) []models.PriceObservation {
	out := make([]models.PriceObservation, n)
	for i := range out {
		c := 100 + 5*math.Sin(float64(i)/3)
		out[i] = models.PriceObservation{
			Ticker: ticker, Sector: "Tech", Date: day0.AddDate(0, 0, i),
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: int64(1000 + i),
		}
	}
	return out
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	e     *echo.Echo
	p     *usecase.Predictor
	cache *cache.TTLCache
}

func newFixture(t *testing.T, train bool) *fixture {
	t.Helper()
	obs := append(synth("AAA", 60), synth("SHORT", 4)...)
	store, err := repository.NewMemorySeriesStore(obs, nil)
	require.NoError(t, err)

	trainer := usecase.NewTrainer(usecase.TrainerConfig{PredictionDays: 5, Trees: 4, Workers: 2, Tree: ml.TreeParams{MaxDepth: 6}})
	p := usecase.NewPredictor(store, trainer, usecase.NewForecaster(store))
	if train {
		_, err := p.Train(context.Background(), usecase.TrainParams{TestFraction: 0.2, Seed: 42})
		require.NoError(t, err)
	}

	c := cache.NewTTLCache()
	h := NewPredictorEchoHandler(xlogger.Nop(), p, c, time.Minute, ratelimit.New(2, 0.001))
	e := echo.New()
	h.RegisterRoutes(e)
	return &fixture{e: e, p: p, cache: c}
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(target, "/api") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestPredictBeforeTrain(t *testing.T) {
	f := newFixture(t, false)
	rec, env := f.do(t, http.MethodGet, "/api/predict?ticker=AAA&date=2023-01-05", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, http.StatusConflict, env.Status)

	rec, _ = f.do(t, http.MethodGet, "/api/model", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTrainEndpoint(t *testing.T) {
	f := newFixture(t, false)
	rec, env := f.do(t, http.MethodPost, "/api/train", `{"tickers":["AAA"],"test_fraction":0.25,"seed":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res models.TrainResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, []string{"AAA"}, res.Model.Tickers)
	assert.Equal(t, 40, res.Metrics.TrainRows+res.Metrics.TestRows)
	assert.Equal(t, 10, res.Metrics.TestRows)
	assert.NotEmpty(t, res.Model.SchemaVersion)
	assert.Equal(t, res.Model.Metrics, res.Metrics)

	rec, _ = f.do(t, http.MethodPost, "/api/train", `{"test_fraction":1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// limiter capacity is two
	rec, env = f.do(t, http.MethodPost, "/api/train", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
}

func TestTrainInsufficientData(t *testing.T) {
	f := newFixture(t, false)
	rec, _ := f.do(t, http.MethodPost, "/api/train", `{"tickers":["SHORT"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPredictEndpoint(t *testing.T) {
	f := newFixture(t, true)

	rec, env := f.do(t, http.MethodGet, "/api/predict?ticker=AAA&date=2023-01-05", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pred models.PredictionResponse
	require.NoError(t, json.Unmarshal(env.Data, &pred))
	assert.True(t, pred.Actual)
	assert.Equal(t, "2023-01-05", pred.Date)
	assert.Equal(t, synth("AAA", 60)[3].Close, pred.Price)

	rec, env = f.do(t, http.MethodGet, "/api/predict?ticker=AAA&date=2024-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &pred))
	assert.False(t, pred.Actual)
	assert.NotEmpty(t, pred.ModelID)

	cases := []struct {
		target string
		status int
	}{
		{"/api/predict?ticker=ZZZ&date=2023-01-05", http.StatusNotFound},
		{"/api/predict?ticker=AAA&date=2020-01-01", http.StatusNotFound},
		{"/api/predict?ticker=SHORT&date=2024-06-01", http.StatusUnprocessableEntity},
		{"/api/predict?ticker=AAA&date=garbage", http.StatusBadRequest},
		{"/api/predict?date=2023-01-05", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec, _ := f.do(t, http.MethodGet, tc.target, "")
		assert.Equal(t, tc.status, rec.Code, tc.target)
	}
}

func TestForecastEndpointCaches(t *testing.T) {
	f := newFixture(t, true)

	rec, env := f.do(t, http.MethodGet, "/api/forecast?ticker=AAA&horizon=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res models.ForecastResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Points, 3)
	assert.Equal(t, "2023-03-03", res.Points[0].Date)
	assert.False(t, res.Partial)
	assert.Equal(t, 1, f.cache.Len())

	rec2, _ := f.do(t, http.MethodGet, "/api/forecast?ticker=AAA&horizon=3", "")
	assert.Equal(t, rec.Body.String(), rec2.Body.String())
	assert.Equal(t, 1, f.cache.Len())

	rec, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=SHORT&horizon=3", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=AAA&horizon=0", "")
	assert.Equal(t, http.StatusOK, rec.Code) // zero horizon takes the default
	rec, _ = f.do(t, http.MethodGet, "/api/forecast?ticker=AAA&horizon=1000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelTickersHealth(t *testing.T) {
	f := newFixture(t, true)

	rec, env := f.do(t, http.MethodGet, "/api/model", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info models.ModelInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, 4, info.Trees)
	assert.Equal(t, 5, info.PredictionDays)

	rec, env = f.do(t, http.MethodGet, "/api/tickers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rows":["AAA","SHORT"],"total":2}`, string(env.Data))

	rec, _ = f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.True(t, health.ModelLoaded)
	assert.Equal(t, 64, health.Observations)
}
