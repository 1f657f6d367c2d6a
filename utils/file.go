package utils

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxBaseNameLength = 100

// SanitizeBaseName strips the directory and extension from a client supplied filename
// and keeps only characters that are safe in a stored filename. Spaces become
// underscores. An empty result falls back to "file".
func SanitizeBaseName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			sb.WriteRune('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			sb.WriteRune(r)
		}
	}

	clean := strings.Trim(sb.String(), ".")
	if len(clean) > maxBaseNameLength {
		clean = clean[:maxBaseNameLength]
	}
	if clean == "" {
		return "file"
	}
	return clean
}
