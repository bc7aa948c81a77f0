package analysisHandler

import (
	analysisService "FaceRec/internal/api/analysis/service"
	"FaceRec/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	AnalysisPath   = "/facial-analysis"
	WebSocketPath  = AnalysisPath + "/ws"
	webSocketRoute = "/ws"

	frameLimitLocal = "frame_limit"
)

type AnalysisHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	analysisService analysisService.IAnalysisService
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	as analysisService.IAnalysisService,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: as,
		log:             log,
		validator:       validator,
		middleware:      middleware,
	}
}

func (h *AnalysisHandler) Start(srv fiber.Router) {
	// Frames share the app body limit with POST requests.
	wsMiddleware := func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals(frameLimitLocal, c.App().Config().BodyLimit)
		return c.Next()
	}

	analysis := srv.Group(AnalysisPath)
	analysis.Post("", h.middleware.NewRateLimiter, h.AnalyzeFaces)
	analysis.Use(webSocketRoute, h.middleware.NewRateLimiter, wsMiddleware)
	analysis.Get(webSocketRoute, websocket.New(h.handleAnalysisWebSocket))
}
