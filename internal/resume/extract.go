// Package resume turns uploaded résumé files into plain text for the
// extraction model. PDF and DOCX are the accepted formats.
package resume

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedType means the file extension is neither .pdf nor .docx.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrUnreadable means the file parsed but yielded no usable text, or did
	// not parse at all.
	ErrUnreadable = errors.New("unreadable resume")
)

// Extract returns the cleaned plain text of an uploaded résumé. The format is
// chosen by file extension; content sniffing is left to the parsers, which
// fail with ErrUnreadable on anything that is not what it claims to be.
func Extract(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return "", ErrUnsupportedType
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrUnreadable
	}
	return text, nil
}

// CleanText normalizes extracted text: trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
