package api

import (
	"net/http"
	"strings"
	"time"

	"DialMeter/internal/domain/models"
	"DialMeter/internal/service/ratelimit"
	"DialMeter/internal/service/servo"
	"DialMeter/internal/services/dial"
	"DialMeter/internal/usecase"
	xhttp "DialMeter/pkg/http"
	xlogger "DialMeter/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Connectivity reports whether the startup network wait succeeded.
type Connectivity interface {
	IsConnected() bool
}

// DialEchoHandler serves read-only dial state and side-effect-free previews.
// Nothing here writes to the servo.
type DialEchoHandler struct {
	logger     *xlogger.Logger
	board      *usecase.DialBoard
	mapper     *dial.Mapper
	resolver   *dial.Resolver
	cal        servo.Calibration
	network    Connectivity
	limiter    *ratelimit.Limiter
	previewRPS float64
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

func NewDialEchoHandler(
	logger *xlogger.Logger,
	board *usecase.DialBoard,
	mapper *dial.Mapper,
	resolver *dial.Resolver,
	cal servo.Calibration,
	network Connectivity,
	limiter *ratelimit.Limiter,
	previewRPS float64,
) *DialEchoHandler {
	if previewRPS <= 0 {
		previewRPS = 5
	}
	return &DialEchoHandler{
		logger:     logger,
		board:      board,
		mapper:     mapper,
		resolver:   resolver,
		cal:        cal,
		network:    network,
		limiter:    limiter,
		previewRPS: previewRPS,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingPeriod: 30 * time.Second,
	}
}

func (h *DialEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/dial", h.Dial)
	g.GET("/dial/stream", h.Stream)
	g.GET("/preview", h.Preview)
	g.POST("/preview/odds", h.PreviewOdds)
}

func (h *DialEchoHandler) Health(c echo.Context) error {
	state, _ := h.board.Latest()
	res := models.HealthResponse{
		Status:     "ok",
		Network:    h.network == nil || h.network.IsConnected(),
		HasReading: h.board.HasReading(),
		Source:     state.Source,
	}
	if !res.Network {
		res.Status = "degraded"
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DialEchoHandler) Dial(c echo.Context) error {
	state, ok := h.board.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no cycle has completed yet"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, state)
}

func (h *DialEchoHandler) allow(c echo.Context) bool {
	return h.limiter == nil || h.limiter.Allow(c.RealIP(), h.previewRPS, h.previewRPS)
}

func (h *DialEchoHandler) Preview(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("preview rate limit exceeded"))
	}
	req := &models.PreviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	policy := h.mapper.Policy()
	if req.Policy != "" {
		policy = dial.Policy(req.Policy)
	}
	angle, err := h.mapper.AngleWith(policy, req.Value)
	if err != nil {
		h.logger.Warn("preview mapping failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	return xhttp.SuccessResponse(c, models.PreviewResponse{
		Value:  req.Value,
		Policy: string(policy),
		Angle:  angle,
		Duty:   h.cal.DutyFor(angle),
	})
}

func (h *DialEchoHandler) PreviewOdds(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("preview rate limit exceeded"))
	}
	req := &models.OddsPreviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	target := req.Target
	if target == "" {
		target = h.resolver.Target()
	}
	value, probs, err := dial.NewResolver(target).Resolve(&models.Reading{
		Source: "preview",
		Kind:   models.KindOdds,
		Odds:   req.Odds,
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	angle, err := h.mapper.Angle(value)
	if err != nil {
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	return xhttp.SuccessResponse(c, models.OddsPreviewResponse{
		Probabilities: probs,
		Target:        target,
		Value:         value,
		Angle:         angle,
		Duty:          h.cal.DutyFor(angle),
	})
}

// domainError reports a mapping failure as a 400 coded by its error kind.
func domainError(err error) *xhttp.AppError {
	code := "ERR_" + strings.ToUpper(string(models.Classify(err)))
	return xhttp.NewAppError(code, "", err.Error(), http.StatusBadRequest).WithError(err)
}
