package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// requestEnvelope is the JSON text wrapped around the base64 payload of a
// facial analysis request: {"imageBase64":"..."}.
const requestEnvelope = `{"imageBase64":""}`

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	DecodeBase64Image(encoded string) ([]byte, error)
	EncodeBase64Image(image []byte) string
}

type utils struct{}

func New() IUtils {
	return &utils{}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// DecodeBase64Image decodes standard base64. Surrounding whitespace is
// ignored; the decoded bytes are not inspected.
func (u *utils) DecodeBase64Image(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
}

func (u *utils) EncodeBase64Image(image []byte) string {
	return base64.StdEncoding.EncodeToString(image)
}

// EncodedRequestSize is the size in bytes of the JSON request body that
// carries an image of n raw bytes.
func EncodedRequestSize(n int) int {
	return len(requestEnvelope) + base64.StdEncoding.EncodedLen(n)
}
