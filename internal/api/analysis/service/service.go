package analysisService

import (
	"context"

	"FaceRec/internal/entity"
	"FaceRec/pkg/rekognition"
	"FaceRec/pkg/utils"
	"github.com/sirupsen/logrus"
)

type IAnalysisService interface {
	Analyze(ctx context.Context, imageBase64 string) (*entity.AnalysisResponse, error)
	AnalyzeImage(ctx context.Context, image []byte) (*entity.AnalysisResponse, error)
}

type analysisService struct {
	log         *logrus.Logger
	rekognition rekognition.IRekognition
	utils       utils.IUtils
}

func NewAnalysisService(
	log *logrus.Logger,
	rekognition rekognition.IRekognition,
	utils utils.IUtils,
) IAnalysisService {
	return &analysisService{
		log:         log,
		rekognition: rekognition,
		utils:       utils,
	}
}
