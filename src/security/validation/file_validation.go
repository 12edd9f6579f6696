// backend/src/security/validation/file_validation.go
package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/username/ventascontables/backend/src/logger"
)

// AllowedClientContentTypes is a quick lookup of the MIME types a browser
// may declare for a sales export. The POS emits .xls, .xlsx and .xls
// files that are really HTML tables, so all three families are accepted.
var AllowedClientContentTypes = map[string]bool{
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/octet-stream": true,
	"text/html":                true,
	"text/plain":               true,
}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	base := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !AllowedClientContentTypes[base] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("el tipo de archivo declarado '%s' no está permitido", contentType)
	}
	return nil
}

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ValidateFileContentByMagicBytes inspects the actual file signature and
// returns the detected kind: "xlsx", "xls" or "html". The reader is
// rewound before returning so the decoder sees the whole file.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 1024)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	buffer = buffer[:n]

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file after content check: %w", err)
	}

	switch {
	case bytes.HasPrefix(buffer, zipMagic):
		return "xlsx", nil
	case bytes.HasPrefix(buffer, oleMagic):
		return "xls", nil
	case bytes.Contains(bytes.ToLower(buffer), []byte("<html")),
		bytes.Contains(bytes.ToLower(buffer), []byte("<table")):
		return "html", nil
	}
	return "", fmt.Errorf("el contenido del archivo no corresponde a un reporte de ventas (.xls/.xlsx)")
}
