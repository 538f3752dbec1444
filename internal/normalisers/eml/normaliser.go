// Package eml provides an Extractor for saved email messages (RFC 822).
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/normalisers"
	"github.com/nordvik-labs/kilde/internal/normalisers/html"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles EML (email) documents.
type Extractor struct{}

// New creates a new EML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".eml"}
}

// Extract parses the message and returns its headers and body as text.
// The subject is the title.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, domain.ErrCorruptDocument, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	body, err := extractBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, domain.ErrCorruptDocument, err)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyContent)
	}

	var content strings.Builder
	for _, h := range []struct{ label, value string }{
		{"Fra", decodeHeader(msg.Header.Get("From"))},
		{"Til", decodeHeader(msg.Header.Get("To"))},
		{"Dato", msg.Header.Get("Date")},
		{"Emne", subject},
	} {
		if h.value != "" {
			fmt.Fprintf(&content, "%s: %s\n", h.label, h.value)
		}
	}
	content.WriteString(body)

	title := subject
	if title == "" {
		title = normalisers.FileTitle(path)
	}

	return &domain.Extraction{
		Title:  title,
		Format: domain.FormatEmail,
		Pages:  []domain.PageText{{Index: 0, Text: normalisers.Whitespace(content.String())}},
	}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// decodeTransfer undoes a single-part Content-Transfer-Encoding.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}

// extractBody returns the text of a message body. Plain text parts are
// preferred over HTML parts.
func extractBody(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}
	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(r, params["boundary"])
	}

	body, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return html.StripHTML(string(body)), nil
	}
	return string(body), nil
}

// extractMultipartBody extracts text from multipart messages.
func extractMultipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		// NextPart has already undone quoted-printable.
		content, readErr := io.ReadAll(decodeTransfer(part.Header.Get("Content-Transfer-Encoding"), part))
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, html.StripHTML(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			nested, nestedErr := extractMultipartBody(bytes.NewReader(content), params["boundary"])
			if nestedErr == nil && nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}
