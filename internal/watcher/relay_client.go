package watcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FaceRec/internal/api/analysis"
	"FaceRec/internal/entity"
	"FaceRec/pkg/utils"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

const analysisPath = "/facial-analysis"

// RelayClient sends one snapshot to the relay and returns its envelope.
// Non-200 envelopes come back as *APIError.
type RelayClient interface {
	Analyze(ctx context.Context, snapshot []byte) (*entity.AnalysisResponse, error)
	Close() error
}

type HTTPRelayClient struct {
	endpoint string
	timeout  time.Duration
	utils    utils.IUtils
}

func NewHTTPRelayClient(baseURL string, timeout time.Duration) *HTTPRelayClient {
	return &HTTPRelayClient{
		endpoint: strings.TrimRight(baseURL, "/") + analysisPath,
		timeout:  timeout,
		utils:    utils.New(),
	}
}

func (c *HTTPRelayClient) Analyze(ctx context.Context, snapshot []byte) (*entity.AnalysisResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Post(c.endpoint).
		JSONEncoder(jsoniter.Marshal).
		JSON(analysis.FacialAnalysisRequest{ImageBase64: c.utils.EncodeBase64Image(snapshot)}).
		Timeout(requestTimeout(ctx, c.timeout))
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayUnreachable, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrRelayUnreachable, errs[0])
	}

	return decodeEnvelope(code, body)
}

func (c *HTTPRelayClient) Close() error {
	return nil
}
