package middleware

import (
	"fmt"
	"time"

	contextPkg "FaceRec/pkg/context"
	"FaceRec/pkg/log"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

// imageFields are replaced by their length before a request body is logged.
var imageFields = []string{"imageBase64"}

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		fields := log.Fields{
			contextPkg.RequestIDKey: m.GetRequestID(c),
			"method":                c.Method(),
			"path":                  c.Path(),
			"status":                status,
			"latency_ms":            time.Since(start).Milliseconds(),
			"ip":                    c.IP(),
			"user_agent":            c.Get("User-Agent"),
			"response_size":         len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 {
			fields["request_body"] = summarizeRequestBody(body)
		}

		entry := m.log.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Success")
		}

		return err
	}
}

func summarizeRequestBody(body []byte) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal(body, &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	for _, field := range imageFields {
		if value, ok := jsonBody[field].(string); ok {
			jsonBody[field] = fmt.Sprintf("[%d base64 chars]", len(value))
		}
	}

	summary, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[summary-failed]"
	}

	return string(summary)
}
