package models

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/myrjola/cropdoc/internal/errors"
)

var ErrInvalidImage = errors.NewSentinel("invalid image payload")

// Image is a submitted image. The raw bytes and MIME type are what the analysis
// capability consumes; Encode produces the opaque payload stored in history.
type Image struct {
	MIMEType string
	Data     []byte
}

// Encode serializes the image as a data URL.
func (i Image) Encode() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// DecodeImage parses a data URL produced by Encode back into an Image.
func DecodeImage(payload string) (Image, error) {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return Image{}, errors.Wrap(ErrInvalidImage, "missing data URL prefix")
	}
	mimeType, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return Image{}, errors.Wrap(ErrInvalidImage, "missing base64 marker")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Image{}, errors.Wrap(errors.Join(ErrInvalidImage, err), "decode base64 payload")
	}
	return Image{MIMEType: mimeType, Data: data}, nil
}
