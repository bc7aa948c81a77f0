package analysis

// FacialAnalysisRequest is the relay's request body. The image is plain
// base64 without a data-URL prefix.
type FacialAnalysisRequest struct {
	ImageBase64 string `json:"imageBase64" validate:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
