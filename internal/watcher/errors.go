package watcher

import (
	"errors"
	"fmt"
	"net/http"

	"FaceRec/internal/entity"
)

var (
	ErrAlreadyPolling    = errors.New("poll loop is already running")
	ErrInvalidInterval   = errors.New("polling interval must be positive")
	ErrSnapshotTooLarge  = errors.New("snapshot exceeds relay body limit")
	ErrRelayUnreachable  = errors.New("relay unreachable")
	ErrMalformedResponse = errors.New("malformed relay response")
	ErrNoFrames          = errors.New("frame source has no frames")
)

// APIError is a structurally valid relay response whose status is not 200.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("failed to analyze image: %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to analyze image: %d: %s", e.StatusCode, e.Message)
}

// statusError returns an *APIError unless result reports HTTP 200.
func statusError(result *entity.AnalysisResponse) error {
	if result.Succeeded() {
		return nil
	}
	return &APIError{
		StatusCode: result.Metadata.HTTPStatusCode,
		RequestID:  result.Metadata.RequestID,
		Message:    result.Error,
	}
}

// decodeEnvelope turns a relay reply into a result or one of the client
// errors. Replies without metadata fall back to the transport status.
func decodeEnvelope(transportStatus int, body []byte) (*entity.AnalysisResponse, error) {
	var result entity.AnalysisResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: status %d: %v", ErrMalformedResponse, transportStatus, err)
	}

	if result.Metadata.HTTPStatusCode == 0 {
		if transportStatus == http.StatusOK {
			return nil, fmt.Errorf("%w: missing metadata", ErrMalformedResponse)
		}
		result.Metadata.HTTPStatusCode = transportStatus
	}

	if err := statusError(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
