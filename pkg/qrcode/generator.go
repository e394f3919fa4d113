package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content string is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrGenerationFailed is returned when QR code encoding fails.
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// DefaultSize is the image size in pixels used when no size is specified.
const DefaultSize = 256

// Generate renders content as a PNG QR code of the given pixel size.
// Medium error correction keeps codes scannable from a laptop screen while
// staying compact enough for long otpauth:// URIs.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// GenerateDataURI renders content as a PNG QR code and returns it as a
// data: URI ready to drop into an <img src> attribute or a JSON response.
func GenerateDataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
