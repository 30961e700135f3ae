package api

import (
	"net/http"
	"time"

	models "CoinSight/internal/domain/models"
	"CoinSight/internal/usecase"
	xhttp "CoinSight/pkg/http"
	xlogger "CoinSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler exposes the prediction pipeline over Echo.
type ForecastHandler struct {
	logger     *xlogger.Logger
	forecaster *usecase.Forecaster
	collector  *usecase.TickCollector
}

func NewForecastHandler(logger *xlogger.Logger, forecaster *usecase.Forecaster, collector *usecase.TickCollector) *ForecastHandler {
	return &ForecastHandler{logger: logger, forecaster: forecaster, collector: collector}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predictions", h.Predictions)
	g.GET("/indicators", h.Indicators)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/news", h.News)
	g.GET("/prices", h.Prices)
	e.GET("/health", h.Health)
}

func (h *ForecastHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	set, err := h.forecaster.Forecast(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("forecast usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, set)
}

func (h *ForecastHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	verdict, err := h.forecaster.Indicators(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		h.logger.Error("indicators usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if verdict == nil {
		return xhttp.NotFoundResponse(c, "not enough price history for indicators")
	}
	return xhttp.SuccessResponse(c, verdict)
}

func (h *ForecastHandler) Sentiment(c echo.Context) error {
	fused := h.forecaster.Sentiment(c.Request().Context())
	return xhttp.SuccessResponse(c, fused)
}

func (h *ForecastHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	records, err := h.forecaster.RecentNews(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("news usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, records, int64(len(records)))
}

func (h *ForecastHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	points, err := h.forecaster.History(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		h.logger.Error("prices usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	// Optional lower bound, RFC3339 or unix seconds
	if from, ok := xhttp.ParseTime(c.QueryParam("from")); ok {
		kept := points[:0]
		for _, p := range points {
			if !p.Timestamp.Before(from) {
				kept = append(kept, p)
			}
		}
		points = kept
	}
	return xhttp.ListResponse(c, points, int64(len(points)))
}

// Health reports process liveness and stream connectivity.
func (h *ForecastHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status":           "ok",
		"time":             time.Now().UTC(),
		"stream_connected": h.collector != nil && h.collector.IsConnected(),
	}
	return c.JSON(http.StatusOK, status)
}
