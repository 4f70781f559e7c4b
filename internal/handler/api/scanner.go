package api

import (
	"errors"
	"strconv"
	"sync"
	"time"

	models "SqueezeScan/internal/domain/models"
	domrepo "SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/engine"
	"SqueezeScan/internal/usecase"
	xhttp "SqueezeScan/pkg/http"
	xlogger "SqueezeScan/pkg/logger"
	pkgqueue "SqueezeScan/pkg/queue"

	"github.com/labstack/echo/v4"
)

// ScannerHandler exposes the squeeze scanner over HTTP.
type ScannerHandler struct {
	logger     *xlogger.Logger
	scanner    *usecase.SqueezeScanner
	history    *usecase.HistoryUseCase
	indicators *usecase.IndicatorsUseCase
	alerts     *usecase.AlertsUseCase
	bars       *usecase.BarsUseCase
	watchlist  *usecase.WatchlistUseCase

	universe      []string
	defaultPeriod domrepo.Period
	queue         pkgqueue.QueueService

	mu          sync.RWMutex
	lastResults []models.ScanResult
}

func NewScannerHandler(
	logger *xlogger.Logger,
	scanner *usecase.SqueezeScanner,
	history *usecase.HistoryUseCase,
	indicators *usecase.IndicatorsUseCase,
	alerts *usecase.AlertsUseCase,
	bars *usecase.BarsUseCase,
	watchlist *usecase.WatchlistUseCase,
	universe []string,
	defaultPeriod domrepo.Period,
) *ScannerHandler {
	return &ScannerHandler{
		logger:        logger,
		scanner:       scanner,
		history:       history,
		indicators:    indicators,
		alerts:        alerts,
		bars:          bars,
		watchlist:     watchlist,
		universe:      universe,
		defaultPeriod: defaultPeriod,
	}
}

func (h *ScannerHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/scan", h.Scan)
	g.POST("/scan/universe", h.ScanUniverse)
	g.POST("/scan/enqueue", h.EnqueueScan)
	g.GET("/bars", h.Bars)
	g.GET("/history", h.History)
	g.GET("/indicators", h.Indicators)
	g.GET("/export", h.Export)
	g.GET("/alerts", h.ListAlerts)
	g.POST("/alerts", h.CreateAlert)
	g.PATCH("/alerts/:id", h.ToggleAlert)
	g.DELETE("/alerts/:id", h.DeleteAlert)
	g.GET("/watchlist", h.ListWatchlist)
	g.POST("/watchlist", h.AddToWatchlist)
	g.POST("/watchlist/scan", h.ScanWatchlist)
	g.PATCH("/watchlist/:symbol", h.UpdateWatchlistItem)
	g.DELETE("/watchlist/:symbol", h.RemoveFromWatchlist)
}

// Scan runs the engine over one symbol and returns the latest-bar snapshot.
func (h *ScannerHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.scanner.ScanSymbol(c.Request().Context(), req.Symbol, domrepo.NormalizePeriod(req.Period))
	if err != nil {
		h.logger.Error("scan usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, classifyScanError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// classifyScanError maps bad-symbol conditions to a 400 so the client can
// tell a typo from an outage.
func classifyScanError(err error) error {
	var inv *engine.InvalidInputError
	if errors.As(err, &inv) || errors.Is(err, usecase.ErrInsufficientData) {
		return xhttp.BadRequestError(err.Error()).WithError(err)
	}
	return err
}

// ScanUniverse scans the requested symbols, or the configured universe when
// the body names none. Symbols already scanned today are served from the
// stored snapshot unless force is set.
func (h *ScannerHandler) ScanUniverse(c echo.Context) error {
	req := &models.ScanUniverseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = h.universe
	}

	res, err := h.scanner.ScanUniverse(c.Request().Context(), symbols, domrepo.NormalizePeriod(req.Period), req.Force)
	if err != nil {
		h.logger.Error("universe scan error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.mu.Lock()
	h.lastResults = res.Results
	h.mu.Unlock()
	if h.alerts != nil {
		h.alerts.Evaluate(c.Request().Context(), res.Results)
	}
	return xhttp.SuccessResponse(c, res)
}

// SetQueue wires the background scan queue. Without it the enqueue endpoint
// reports the feature as disabled.
func (h *ScannerHandler) SetQueue(q pkgqueue.QueueService) { h.queue = q }

// EnqueueScan pushes the universe onto the background scan queue instead of
// scanning inline.
func (h *ScannerHandler) EnqueueScan(c echo.Context) error {
	if h.queue == nil {
		return xhttp.BadRequestResponse(c, "scan queue disabled, use /api/scan/universe")
	}
	req := &models.ScanUniverseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = h.universe
	}

	if err := usecase.EnqueueUniverse(c.Request().Context(), h.queue, symbols, domrepo.NormalizePeriod(req.Period)); err != nil {
		h.logger.Error("enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]int{"enqueued": len(symbols)})
}

// Bars returns stored daily bars for a symbol and time range.
func (h *ScannerHandler) Bars(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.AddDate(-1, 0, 0))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 2000)

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol: symbol,
		From:   from,
		To:     to,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// History returns past squeeze episodes for a symbol.
func (h *ScannerHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	events, err := h.history.GetSqueezeHistory(c.Request().Context(), req.Symbol, domrepo.NormalizePeriod(req.Period))
	if err != nil {
		h.logger.Error("history usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, events, int64(len(events)))
}

// Indicators returns the last n indicator rows for charting.
func (h *ScannerHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.indicators.GetIndicators(c.Request().Context(), req.Symbol, domrepo.NormalizePeriod(req.Period))
	if err != nil {
		h.logger.Error("indicators usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if req.N > 0 && len(res.Rows) > req.N {
		res.Rows = res.Rows[len(res.Rows)-req.N:]
		res.Count = len(res.Rows)
	}
	return xhttp.SuccessResponse(c, res)
}

// Export streams the last universe scan as CSV.
func (h *ScannerHandler) Export(c echo.Context) error {
	h.mu.RLock()
	results := h.lastResults
	h.mu.RUnlock()
	if len(results) == 0 {
		return xhttp.NotFoundResponse(c, "no scan results to export, run a universe scan first")
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="scan_results.csv"`)
	if err := usecase.ExportCSV(c.Response(), results); err != nil {
		h.logger.Error("csv export error", xlogger.Error(err))
		return err
	}
	return nil
}

// ListAlerts returns all configured alerts.
func (h *ScannerHandler) ListAlerts(c echo.Context) error {
	alerts := h.alerts.List()
	return xhttp.ListResponse(c, alerts, int64(len(alerts)))
}

// CreateAlert registers a new alert.
func (h *ScannerHandler) CreateAlert(c echo.Context) error {
	req := &models.CreateAlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	a, err := h.alerts.Create(req.Symbol, req.CompanyName, req.Type, req.Threshold)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.CreatedResponse(c, a)
}

// ToggleAlert enables or disables an alert, re-arming one-shot price alerts.
func (h *ScannerHandler) ToggleAlert(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return xhttp.BadRequestResponse(c, "invalid alert id")
	}
	req := &models.ToggleAlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.alerts.SetActive(id, *req.Active); err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.NoContentResponse(c)
}

// DeleteAlert removes an alert by ID.
func (h *ScannerHandler) DeleteAlert(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return xhttp.BadRequestResponse(c, "invalid alert id")
	}
	if err := h.alerts.Delete(id); err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.NoContentResponse(c)
}

// ListWatchlist returns tracked symbols, most recently added first.
func (h *ScannerHandler) ListWatchlist(c echo.Context) error {
	items := h.watchlist.List()
	return xhttp.ListResponse(c, items, int64(len(items)))
}

// AddToWatchlist upserts a tracked symbol.
func (h *ScannerHandler) AddToWatchlist(c echo.Context) error {
	req := &models.AddWatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	item, err := h.watchlist.Add(models.WatchlistItem{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Notes:       req.Notes,
		TargetPrice: req.TargetPrice,
		StopLoss:    req.StopLoss,
	})
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.CreatedResponse(c, item)
}

// UpdateWatchlistItem patches notes and price levels of a tracked symbol.
func (h *ScannerHandler) UpdateWatchlistItem(c echo.Context) error {
	symbol := c.Param("symbol")
	req := &models.UpdateWatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	item, err := h.watchlist.Update(symbol, req.Notes, req.TargetPrice, req.StopLoss)
	if err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, item)
}

// RemoveFromWatchlist drops a tracked symbol.
func (h *ScannerHandler) RemoveFromWatchlist(c echo.Context) error {
	if err := h.watchlist.Remove(c.Param("symbol")); err != nil {
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.NoContentResponse(c)
}

// ScanWatchlist runs a universe scan over the tracked symbols only.
func (h *ScannerHandler) ScanWatchlist(c echo.Context) error {
	req := &models.ScanUniverseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := h.watchlist.Symbols()
	if len(symbols) == 0 {
		return xhttp.BadRequestResponse(c, "watchlist is empty")
	}

	res, err := h.scanner.ScanUniverse(c.Request().Context(), symbols, domrepo.NormalizePeriod(req.Period), req.Force)
	if err != nil {
		h.logger.Error("watchlist scan error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if h.alerts != nil {
		h.alerts.Evaluate(c.Request().Context(), res.Results)
	}
	return xhttp.SuccessResponse(c, res)
}
