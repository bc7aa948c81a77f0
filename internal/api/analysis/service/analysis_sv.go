package analysisService

import (
	"context"
	"errors"
	"fmt"

	"FaceRec/internal/api/analysis"
	"FaceRec/internal/entity"
	"FaceRec/pkg/log"
	"github.com/aws/aws-sdk-go/aws/awserr"
)

func (s *analysisService) Analyze(ctx context.Context, imageBase64 string) (*entity.AnalysisResponse, error) {
	image, err := s.utils.DecodeBase64Image(imageBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrInvalidImageEncoding, err)
	}

	return s.AnalyzeImage(ctx, image)
}

// AnalyzeImage sends the bytes to Rekognition as they are. A failure that
// carries an AWS status is returned as an envelope holding that status so the
// caller sees it exactly as the service reported it.
func (s *analysisService) AnalyzeImage(ctx context.Context, image []byte) (*entity.AnalysisResponse, error) {
	if len(image) == 0 {
		return nil, analysis.ErrEmptyImage
	}

	logger := log.WithRequestID(s.log, ctx)
	logger.WithField("image_size", len(image)).Debug("Preparing detect faces request")

	result, err := s.rekognition.DetectFaces(ctx, image)
	if err != nil {
		var reqErr awserr.RequestFailure
		if errors.As(err, &reqErr) {
			logger.WithFields(log.Fields{
				"aws_request_id": reqErr.RequestID(),
				"status":         reqErr.StatusCode(),
				"aws_code":       reqErr.Code(),
			}).Warn("Rekognition rejected detect faces request")

			return &entity.AnalysisResponse{
				Metadata: entity.Metadata{
					HTTPStatusCode: reqErr.StatusCode(),
					RequestID:      reqErr.RequestID(),
				},
				FaceDetails: []entity.FaceDetail{},
				Error:       reqErr.Message(),
			}, nil
		}

		return nil, fmt.Errorf("%w: %v", analysis.ErrAnalysisFailed, err)
	}

	logger.WithField("faces", len(result.FaceDetails)).Infof("Response for %s: %d", result.Metadata.RequestID, result.Metadata.HTTPStatusCode)

	return result, nil
}
