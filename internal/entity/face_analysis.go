package entity

import "net/http"

// Landmark types kept by the overlay renderer.
const (
	LandmarkEyeLeft    = "eyeLeft"
	LandmarkEyeRight   = "eyeRight"
	LandmarkMouthLeft  = "mouthLeft"
	LandmarkMouthRight = "mouthRight"
	LandmarkNose       = "nose"
)

// Metadata mirrors the envelope the relay puts around every analysis result.
type Metadata struct {
	HTTPStatusCode int    `json:"httpStatusCode"`
	RequestID      string `json:"requestId,omitempty"`
	Attempts       int    `json:"attempts,omitempty"`
}

type AnalysisResponse struct {
	Metadata              Metadata     `json:"$metadata"`
	FaceDetails           []FaceDetail `json:"FaceDetails"`
	OrientationCorrection string       `json:"OrientationCorrection,omitempty"`
	Error                 string       `json:"error,omitempty"`
}

func (r *AnalysisResponse) Succeeded() bool {
	return r != nil && r.Metadata.HTTPStatusCode == http.StatusOK
}

type FaceDetail struct {
	Confidence  float64       `json:"Confidence"`
	BoundingBox BoundingBox   `json:"BoundingBox"`
	AgeRange    AgeRange      `json:"AgeRange"`
	Gender      Gender        `json:"Gender"`
	Beard       BoolAttribute `json:"Beard"`
	Mustache    BoolAttribute `json:"Mustache"`
	Smile       BoolAttribute `json:"Smile"`
	Eyeglasses  BoolAttribute `json:"Eyeglasses"`
	Sunglasses  BoolAttribute `json:"Sunglasses"`
	EyesOpen    BoolAttribute `json:"EyesOpen"`
	MouthOpen   BoolAttribute `json:"MouthOpen"`
	Emotions    []Emotion     `json:"Emotions"`
	Landmarks   []Landmark    `json:"Landmarks"`
	Pose        Pose          `json:"Pose"`
	Quality     Quality       `json:"Quality"`
}

// BoundingBox values are fractions of the image dimensions.
type BoundingBox struct {
	Top    float64 `json:"Top"`
	Left   float64 `json:"Left"`
	Height float64 `json:"Height"`
	Width  float64 `json:"Width"`
}

type AgeRange struct {
	Low  int `json:"Low"`
	High int `json:"High"`
}

type Gender struct {
	Value      string  `json:"Value"`
	Confidence float64 `json:"Confidence"`
}

type BoolAttribute struct {
	Value      bool    `json:"Value"`
	Confidence float64 `json:"Confidence"`
}

type Emotion struct {
	Type       string  `json:"Type"`
	Confidence float64 `json:"Confidence"`
}

type Landmark struct {
	Type string  `json:"Type"`
	X    float64 `json:"X"`
	Y    float64 `json:"Y"`
}

type Pose struct {
	Pitch float64 `json:"Pitch"`
	Roll  float64 `json:"Roll"`
	Yaw   float64 `json:"Yaw"`
}

type Quality struct {
	Brightness float64 `json:"Brightness"`
	Sharpness  float64 `json:"Sharpness"`
}
