package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// UnsupportedFormatError reports a file extension no extractor handles.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q (supported: .txt, .md, .pdf)", e.Ext)
}

// ExtractText reads a document file and returns its plain text content.
// Plain text and Markdown files are read as-is; PDF files are converted
// through their text layer.
func ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied, not from remote input
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	case ".pdf":
		return extractPDF(path)
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}

// extractPDF extracts the text layer of a PDF. Scanned PDFs without a text
// layer yield empty output, which the chunker later rejects.
func extractPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	b, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("buffering pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}
