package analysisHandler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FaceRec/internal/api/analysis"
	"FaceRec/internal/entity"
	contextPkg "FaceRec/pkg/context"
	"FaceRec/pkg/handlerUtil"
	"FaceRec/pkg/log"
	"FaceRec/pkg/response"
	fasthttpws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// AnalyzeFaces relays one base64 image to the analysis backend and answers
// with the backend's envelope. The HTTP status mirrors the envelope status.
func (h *AnalysisHandler) AnalyzeFaces(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c := contextPkg.FromFiberCtx(ctx)

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Preparing new facial analysis request")

	var req analysis.FacialAnalysisRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %v", analysis.ErrInvalidRequestBody, err), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.analysisService.Analyze(c, req.ImageBase64)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_faces")
	}

	return errHandler.HandleSuccess(ctx, result.Metadata.HTTPStatusCode, result)
}

// handleAnalysisWebSocket answers every binary frame with one envelope.
// Failures are sent as envelopes too so the stream stays in lockstep.
func (h *AnalysisHandler) handleAnalysisWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(contextPkg.HeaderRequestID).(string)
	logger := h.log.WithField("request_id", requestID)

	if limit, ok := c.Locals(frameLimitLocal).(int); ok && limit > 0 {
		c.SetReadLimit(int64(limit))
	}

	logger.Info("Facial analysis WebSocket client connected")
	defer logger.Info("Facial analysis WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			logger.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if errors.Is(err, fasthttpws.ErrReadLimit) {
				logger.Warn("Facial analysis frame exceeds body limit, closing connection")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("Facial analysis WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			logger.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		frameCtx := contextPkg.WithRequestID(context.Background(), requestID)
		result, err := h.analysisService.AnalyzeImage(frameCtx, message)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("Error analyzing frame")
			result = errorEnvelope(err)
		}

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			logger.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(result); err != nil {
			logger.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func errorEnvelope(err error) *entity.AnalysisResponse {
	message := err.Error()
	if errors.Is(err, analysis.ErrAnalysisFailed) {
		message = analysis.ErrAnalysisFailed.Error()
	}

	return &entity.AnalysisResponse{
		Metadata:    entity.Metadata{HTTPStatusCode: response.StatusOf(err)},
		FaceDetails: []entity.FaceDetail{},
		Error:       message,
	}
}
