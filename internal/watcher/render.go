package watcher

import (
	"fmt"
	"strings"
	"sync"

	"FaceRec/internal/entity"
)

const emotionThreshold = 50.0

// markedLandmarks are the landmark types that get an overlay marker.
var markedLandmarks = map[string]bool{
	entity.LandmarkEyeLeft:    true,
	entity.LandmarkEyeRight:   true,
	entity.LandmarkMouthLeft:  true,
	entity.LandmarkMouthRight: true,
	entity.LandmarkNose:       true,
}

var emotionLabels = map[string]string{
	"HAPPY":     "Happy",
	"SAD":       "Sad",
	"ANGRY":     "Angry",
	"CONFUSED":  "Confused",
	"DISGUSTED": "Disgusted",
	"SURPRISED": "Surprised",
	"CALM":      "Calm",
	"FEAR":      "Afraid",
	"UNKNOWN":   "Unknown emotion",
}

type DisplayItem struct {
	Label string
	Value string
}

// FaceDisplay is the attribute table of one detected face.
type FaceDisplay struct {
	Title string
	Items []DisplayItem
}

type OverlayKind string

const (
	OverlayBox      OverlayKind = "box"
	OverlayLandmark OverlayKind = "landmark"
)

// OverlayElement is positioned in percent of the capture surface. Width and
// Height are zero for landmark markers.
type OverlayElement struct {
	Kind   OverlayKind
	Label  string
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Style renders the element position as CSS declarations.
func (e OverlayElement) Style() string {
	style := fmt.Sprintf("top: %s%%; left: %s%%;", formatFloat(e.Top), formatFloat(e.Left))
	if e.Kind == OverlayBox {
		style += fmt.Sprintf(" width: %s%%; height: %s%%;", formatFloat(e.Width), formatFloat(e.Height))
	}
	return style
}

// Scene is the rendered application state: the attribute tables and the
// overlay of the latest successful analysis.
type Scene struct {
	mu      sync.RWMutex
	faces   []FaceDisplay
	overlay []OverlayElement
	renders int
}

func NewScene() *Scene {
	return &Scene{}
}

// Render replaces the whole scene with one built from faces.
func (s *Scene) Render(faces []entity.FaceDetail) {
	displays := BuildFaceDisplays(faces)
	overlay := BuildOverlay(faces)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.faces = displays
	s.overlay = overlay
	s.renders++
}

func (s *Scene) Faces() []FaceDisplay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FaceDisplay, len(s.faces))
	copy(out, s.faces)
	return out
}

func (s *Scene) Overlay() []OverlayElement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OverlayElement, len(s.overlay))
	copy(out, s.overlay)
	return out
}

// Renders counts completed Render calls.
func (s *Scene) Renders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renders
}

func FaceTitle(index int) string {
	return fmt.Sprintf("Face %d", index+1)
}

func BuildFaceDisplays(faces []entity.FaceDetail) []FaceDisplay {
	displays := make([]FaceDisplay, 0, len(faces))
	for i, face := range faces {
		displays = append(displays, FaceDisplay{
			Title: FaceTitle(i),
			Items: buildItems(face),
		})
	}
	return displays
}

func buildItems(face entity.FaceDetail) []DisplayItem {
	items := []DisplayItem{
		{Label: "Looks like a face", Value: formatPercent(face.Confidence)},
		{Label: genderLabel(face.Gender.Value), Value: formatPercent(face.Gender.Confidence)},
		{Label: "Age range", Value: fmt.Sprintf("%d - %d", face.AgeRange.Low, face.AgeRange.High)},
	}

	flags := []struct {
		label string
		attr  entity.BoolAttribute
	}{
		{"Has a beard", face.Beard},
		{"Has a mustache", face.Mustache},
		{"Is smiling", face.Smile},
		{"Wears glasses", face.Eyeglasses},
		{"Wears sunglasses", face.Sunglasses},
	}
	for _, flag := range flags {
		if flag.attr.Value {
			items = append(items, DisplayItem{Label: flag.label, Value: formatPercent(flag.attr.Confidence)})
		}
	}

	for _, emotion := range face.Emotions {
		if emotion.Confidence > emotionThreshold {
			items = append(items, DisplayItem{Label: emotionLabel(emotion.Type), Value: formatPercent(emotion.Confidence)})
		}
	}

	return items
}

// BuildOverlay emits each face's box followed by its kept landmarks.
func BuildOverlay(faces []entity.FaceDetail) []OverlayElement {
	overlay := make([]OverlayElement, 0, len(faces)*(1+len(markedLandmarks)))
	for i, face := range faces {
		box := face.BoundingBox
		overlay = append(overlay, OverlayElement{
			Kind:   OverlayBox,
			Label:  FaceTitle(i),
			Top:    box.Top * 100,
			Left:   box.Left * 100,
			Width:  box.Width * 100,
			Height: box.Height * 100,
		})

		for _, landmark := range face.Landmarks {
			if !markedLandmarks[landmark.Type] {
				continue
			}
			overlay = append(overlay, OverlayElement{
				Kind:  OverlayLandmark,
				Label: landmark.Type,
				Top:   landmark.Y * 100,
				Left:  landmark.X * 100,
			})
		}
	}
	return overlay
}

func genderLabel(value string) string {
	switch strings.ToLower(value) {
	case "male":
		return "Male"
	case "female":
		return "Female"
	case "":
		return "Gender"
	default:
		return value
	}
}

func emotionLabel(emotionType string) string {
	if label, ok := emotionLabels[emotionType]; ok {
		return label
	}
	if emotionType == "" {
		return "Unknown emotion"
	}
	return strings.ToUpper(emotionType[:1]) + strings.ToLower(emotionType[1:])
}

// formatPercent formats a 0-100 confidence with two decimals, e.g. "87.50%".
func formatPercent(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence)
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
