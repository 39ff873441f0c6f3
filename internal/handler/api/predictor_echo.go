package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"PriceCast/internal/domain/models"
	"PriceCast/internal/service/cache"
	svcmetrics "PriceCast/internal/service/metrics"
	"PriceCast/internal/service/ratelimit"
	"PriceCast/internal/usecase"
	xhttp "PriceCast/pkg/http"
	xlogger "PriceCast/pkg/logger"
)

// PredictorEchoHandler exposes training and price queries over HTTP.
type PredictorEchoHandler struct {
	logger   *xlogger.Logger
	p        *usecase.Predictor
	cache    cache.BytesCache
	cacheTTL time.Duration
	limiter  *ratelimit.Limiter
}

func NewPredictorEchoHandler(logger *xlogger.Logger, p *usecase.Predictor, c cache.BytesCache, ttl time.Duration, limiter *ratelimit.Limiter) *PredictorEchoHandler {
	svcmetrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PredictorEchoHandler{logger: logger, p: p, cache: c, cacheTTL: ttl, limiter: limiter}
}

func (h *PredictorEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.POST("/train", h.Train)
	g.GET("/predict", h.Predict)
	g.GET("/forecast", h.Forecast)
	g.GET("/model", h.Model)
	g.GET("/tickers", h.Tickers)
}

func (h *PredictorEchoHandler) Train(c echo.Context) error {
	defer observe("train", time.Now())
	if h.limiter != nil && !h.limiter.Allow("train:"+c.RealIP()) {
		return h.fail(c, "train", xhttp.TooManyRequestsError("training is rate limited, retry later"))
	}
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}

	model, err := h.p.Train(c.Request().Context(), usecase.TrainParams{
		Tickers:      req.Tickers,
		TestFraction: req.TestFraction,
		Seed:         req.Seed,
	})
	if err != nil {
		h.logger.Error("train usecase error", xlogger.Error(err))
		return h.fail(c, "train", toAppError(err))
	}
	return xhttp.SuccessResponse(c, models.TrainResponse{Model: model.Info(), Metrics: model.Metrics})
}

func (h *PredictorEchoHandler) Predict(c echo.Context) error {
	defer observe("predict", time.Now())
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}

	pred, err := h.p.PredictPriceISO(c.Request().Context(), req.Ticker, req.Date)
	if err != nil {
		return h.fail(c, "predict", toAppError(err))
	}
	return xhttp.SuccessResponse(c, models.PredictionResponse{
		Ticker:  pred.Ticker,
		Date:    pred.Date.Format(time.DateOnly),
		Price:   pred.Price,
		Actual:  pred.Actual,
		ModelID: pred.ModelID,
	})
}

func (h *PredictorEchoHandler) Forecast(c echo.Context) error {
	defer observe("forecast", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationResponse(c, verr)
	}
	ctx := c.Request().Context()

	model := h.p.Model()
	if model == nil {
		return h.fail(c, "forecast", toAppError(&models.ModelNotTrainedError{}))
	}
	key := fmt.Sprintf("forecast:%s:%s:%d", model.ID, req.Ticker, req.Horizon)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(ctx, key); err == nil && ok {
			var res models.ForecastResponse
			if json.Unmarshal(b, &res) == nil {
				svcmetrics.CacheLookups.WithLabelValues("hit").Inc()
				return xhttp.SuccessResponse(c, res)
			}
		} else if err != nil {
			h.logger.Warn("forecast cache read failed", xlogger.Error(err))
		}
		svcmetrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	points, err := h.p.ForecastSeries(ctx, req.Ticker, req.Horizon)
	if err != nil && len(points) == 0 {
		return h.fail(c, "forecast", toAppError(err))
	}

	res := models.ForecastResponse{
		Ticker:  req.Ticker,
		ModelID: model.ID,
		Horizon: req.Horizon,
		Points:  make([]models.ForecastPointResponse, len(points)),
	}
	for i, pt := range points {
		res.Points[i] = models.ForecastPointResponse{Date: pt.Date.Format(time.DateOnly), Price: pt.Price}
	}
	if err != nil {
		res.Partial = true
		res.Error = err.Error()
	} else if h.cache != nil {
		if b, merr := json.Marshal(res); merr == nil {
			if serr := h.cache.SetBytes(ctx, key, b, h.cacheTTL); serr != nil {
				h.logger.Warn("forecast cache write failed", xlogger.Error(serr))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictorEchoHandler) Model(c echo.Context) error {
	m := h.p.Model()
	if m == nil {
		return h.fail(c, "model", toAppError(&models.ModelNotTrainedError{}))
	}
	return xhttp.SuccessResponse(c, m.Info())
}

func (h *PredictorEchoHandler) Tickers(c echo.Context) error {
	tickers := h.p.Tickers()
	return xhttp.ListResponse(c, tickers, int64(len(tickers)))
}

func (h *PredictorEchoHandler) Health(c echo.Context) error {
	res := models.HealthResponse{Status: "ok", Observations: h.p.Store().Len()}
	if m := h.p.Model(); m != nil {
		res.ModelLoaded = true
		res.ModelID = m.ID
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PredictorEchoHandler) fail(c echo.Context, endpoint string, appErr *xhttp.AppError) error {
	svcmetrics.APIErrors.WithLabelValues(endpoint, strconv.Itoa(appErr.Status)).Inc()
	return xhttp.AppErrorResponse(c, appErr)
}

func observe(endpoint string, start time.Time) {
	svcmetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// toAppError maps domain errors onto HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	var (
		ute *models.UnknownTickerError
		ihe *models.InsufficientHistoryError
		noe *models.NoObservationError
		ide *models.InsufficientDataError
	)
	switch {
	case errors.As(err, &ute):
		return xhttp.NotFoundError(err.Error()).WithField("ticker").WithParam("ticker", ute.Ticker).WithError(err)
	case errors.As(err, &noe):
		return xhttp.NotFoundError(err.Error()).WithField("date").
			WithParam("date", noe.Date.Format(time.DateOnly)).WithError(err)
	case errors.Is(err, models.ErrModelNotTrained):
		return xhttp.ConflictError(err.Error()).WithError(err)
	case errors.As(err, &ihe):
		appErr := xhttp.UnprocessableError(err.Error()).WithField("ticker").
			WithParam("required", ihe.Required).WithParam("available", ihe.Available)
		if !ihe.Date.IsZero() {
			appErr.WithParam("date", ihe.Date.Format(time.DateOnly))
		}
		return appErr.WithError(err)
	case errors.As(err, &ide):
		return xhttp.UnprocessableError(err.Error()).WithParam("skipped", ide.Skipped).WithError(err)
	case errors.Is(err, models.ErrInvalidParams):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
