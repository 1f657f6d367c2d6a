package media

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTypeMismatch    = errors.New("file content does not match its extension")
	ErrCorruptImage    = errors.New("image could not be decoded")
)

// extension (lower case, no dot) -> content type accepted for certification uploads
var certificationTypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
}

var rasterTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// AllowedCertificationExtensions returns the accepted extensions for error messages.
func AllowedCertificationExtensions() []string {
	return []string{"jpeg", "png", "jpg", "gif", "svg", "pdf"}
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsRasterImage checks if the filename has a raster image extension we can decode
func IsRasterImage(filename string) bool {
	return rasterTypes[certificationTypes[Extension(filename)]]
}

// InspectCertification checks that data is an accepted certification file whose sniffed
// content type agrees with the extension of filename, and that raster images decode.
// It returns the content type.
func InspectCertification(filename string, data []byte) (string, error) {
	want, ok := certificationTypes[Extension(filename)]
	if !ok {
		return "", fmt.Errorf("%w: extension of '%s'", ErrUnsupportedType, filename)
	}

	detected := mimetype.Detect(data)
	if !detected.Is(want) {
		if _, allowed := contentTypeAllowed(detected); !allowed {
			return "", fmt.Errorf("%w: detected %s", ErrUnsupportedType, detected.String())
		}
		return "", fmt.Errorf("%w: '%s' looks like %s", ErrTypeMismatch, filename, detected.String())
	}

	if rasterTypes[want] {
		if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
			return "", fmt.Errorf("%w: %v", ErrCorruptImage, err)
		}
	}
	return want, nil
}

func contentTypeAllowed(detected *mimetype.MIME) (string, bool) {
	for _, ct := range certificationTypes {
		if detected.Is(ct) {
			return ct, true
		}
	}
	return "", false
}
