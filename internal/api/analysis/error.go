package analysis

import (
	"FaceRec/pkg/response"
	"net/http"
)

var (
	ErrInvalidRequestBody   = response.NewError(http.StatusBadRequest, "invalid request body")
	ErrInvalidImageEncoding = response.NewError(http.StatusBadRequest, "image is not valid base64")
	ErrEmptyImage           = response.NewError(http.StatusBadRequest, "image is empty")
	ErrAnalysisFailed       = response.NewError(http.StatusBadGateway, "facial analysis failed")
)
