package rekognition

import (
	"context"
	"net/http"
	"os"

	"FaceRec/internal/entity"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rekognition"
	"github.com/aws/aws-sdk-go/service/rekognition/rekognitioniface"
)

const DefaultRegion = "eu-central-1"

type IRekognition interface {
	// DetectFaces runs face detection with the full attribute set.
	DetectFaces(ctx context.Context, image []byte) (*entity.AnalysisResponse, error)
}

type rekognitionClient struct {
	api rekognitioniface.RekognitionAPI
}

func New() (IRekognition, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return NewWithAPI(rekognition.New(sess)), nil
}

func NewWithAPI(api rekognitioniface.RekognitionAPI) IRekognition {
	return &rekognitionClient{api: api}
}

func (r *rekognitionClient) DetectFaces(ctx context.Context, image []byte) (*entity.AnalysisResponse, error) {
	var meta entity.Metadata

	output, err := r.api.DetectFacesWithContext(ctx, &rekognition.DetectFacesInput{
		Image:      &rekognition.Image{Bytes: image},
		Attributes: aws.StringSlice([]string{rekognition.AttributeAll}),
	}, captureMetadata(&meta))
	if err != nil {
		return nil, err
	}

	if meta.HTTPStatusCode == 0 {
		meta.HTTPStatusCode = http.StatusOK
	}

	return toAnalysisResponse(output, meta), nil
}

// captureMetadata records the transport details the SDK output types drop.
func captureMetadata(meta *entity.Metadata) request.Option {
	return func(req *request.Request) {
		req.Handlers.Complete.PushBack(func(r *request.Request) {
			if r.HTTPResponse != nil {
				meta.HTTPStatusCode = r.HTTPResponse.StatusCode
			}
			meta.RequestID = r.RequestID
			meta.Attempts = r.RetryCount + 1
		})
	}
}

func newSession() (*session.Session, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = DefaultRegion
	}

	cfg := &aws.Config{Region: aws.String(region)}

	// Static keys win when configured; otherwise the SDK default chain applies.
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		cfg.Credentials = credentials.NewStaticCredentials(
			id,
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			os.Getenv("AWS_SESSION_TOKEN"),
		)
	}

	return session.NewSession(cfg)
}

func toAnalysisResponse(output *rekognition.DetectFacesOutput, meta entity.Metadata) *entity.AnalysisResponse {
	result := &entity.AnalysisResponse{
		Metadata:    meta,
		FaceDetails: []entity.FaceDetail{},
	}
	if output == nil {
		return result
	}

	result.OrientationCorrection = aws.StringValue(output.OrientationCorrection)
	for _, face := range output.FaceDetails {
		if face == nil {
			continue
		}
		result.FaceDetails = append(result.FaceDetails, toFaceDetail(face))
	}

	return result
}

func toFaceDetail(face *rekognition.FaceDetail) entity.FaceDetail {
	detail := entity.FaceDetail{
		Confidence: aws.Float64Value(face.Confidence),
		Emotions:   []entity.Emotion{},
		Landmarks:  []entity.Landmark{},
	}

	if box := face.BoundingBox; box != nil {
		detail.BoundingBox = entity.BoundingBox{
			Top:    aws.Float64Value(box.Top),
			Left:   aws.Float64Value(box.Left),
			Height: aws.Float64Value(box.Height),
			Width:  aws.Float64Value(box.Width),
		}
	}
	if age := face.AgeRange; age != nil {
		detail.AgeRange = entity.AgeRange{
			Low:  int(aws.Int64Value(age.Low)),
			High: int(aws.Int64Value(age.High)),
		}
	}
	if gender := face.Gender; gender != nil {
		detail.Gender = entity.Gender{
			Value:      aws.StringValue(gender.Value),
			Confidence: aws.Float64Value(gender.Confidence),
		}
	}
	if face.Beard != nil {
		detail.Beard = boolAttribute(face.Beard.Value, face.Beard.Confidence)
	}
	if face.Mustache != nil {
		detail.Mustache = boolAttribute(face.Mustache.Value, face.Mustache.Confidence)
	}
	if face.Smile != nil {
		detail.Smile = boolAttribute(face.Smile.Value, face.Smile.Confidence)
	}
	if face.Eyeglasses != nil {
		detail.Eyeglasses = boolAttribute(face.Eyeglasses.Value, face.Eyeglasses.Confidence)
	}
	if face.Sunglasses != nil {
		detail.Sunglasses = boolAttribute(face.Sunglasses.Value, face.Sunglasses.Confidence)
	}
	if face.EyesOpen != nil {
		detail.EyesOpen = boolAttribute(face.EyesOpen.Value, face.EyesOpen.Confidence)
	}
	if face.MouthOpen != nil {
		detail.MouthOpen = boolAttribute(face.MouthOpen.Value, face.MouthOpen.Confidence)
	}
	if pose := face.Pose; pose != nil {
		detail.Pose = entity.Pose{
			Pitch: aws.Float64Value(pose.Pitch),
			Roll:  aws.Float64Value(pose.Roll),
			Yaw:   aws.Float64Value(pose.Yaw),
		}
	}
	if quality := face.Quality; quality != nil {
		detail.Quality = entity.Quality{
			Brightness: aws.Float64Value(quality.Brightness),
			Sharpness:  aws.Float64Value(quality.Sharpness),
		}
	}

	for _, emotion := range face.Emotions {
		if emotion == nil {
			continue
		}
		detail.Emotions = append(detail.Emotions, entity.Emotion{
			Type:       aws.StringValue(emotion.Type),
			Confidence: aws.Float64Value(emotion.Confidence),
		})
	}
	for _, landmark := range face.Landmarks {
		if landmark == nil {
			continue
		}
		detail.Landmarks = append(detail.Landmarks, entity.Landmark{
			Type: aws.StringValue(landmark.Type),
			X:    aws.Float64Value(landmark.X),
			Y:    aws.Float64Value(landmark.Y),
		})
	}

	return detail
}

func boolAttribute(value *bool, confidence *float64) entity.BoolAttribute {
	return entity.BoolAttribute{
		Value:      aws.BoolValue(value),
		Confidence: aws.Float64Value(confidence),
	}
}
