package ai

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImageData is a decoded data-URI image reference.
type ImageData struct {
	MimeType string
	Base64   string
}

// ParseDataURI validates and splits a "data:<mimetype>;base64,<payload>" URI.
func ParseDataURI(uri string) (ImageData, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ImageData{}, fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ImageData{}, fmt.Errorf("data URI has no payload")
	}

	mimeType, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return ImageData{}, fmt.Errorf("data URI must be base64 encoded")
	}
	if mimeType == "" {
		return ImageData{}, fmt.Errorf("data URI has no MIME type")
	}
	if payload == "" {
		return ImageData{}, fmt.Errorf("data URI payload is empty")
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return ImageData{}, fmt.Errorf("data URI payload is not valid base64: %w", err)
	}

	return ImageData{MimeType: mimeType, Base64: payload}, nil
}

// DataURI re-encodes the image as a data URI.
func (d ImageData) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", d.MimeType, d.Base64)
}
