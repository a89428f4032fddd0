// Package extract pulls plain text out of uploaded assignment files.
// The real content type is sniffed from the bytes, never trusted from
// the filename or the client-supplied MIME type.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

var (
	ErrEmptyFile   = errors.New("extract: empty file")
	ErrUnsupported = errors.New("extract: unsupported file type")
	ErrNoText      = errors.New("extract: no text found")
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Text extracts readable text from an uploaded file. PDF, DOCX and
// plain-text payloads are supported; anything else is rejected with
// ErrUnsupported so the caller can fail the submission early.
func Text(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyFile, filename)
	}

	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is(mimePDF):
		return FromPDF(data)
	case mtype.Is(mimeDOCX), mtype.Is("application/zip"):
		// DOCX is a zip container; zips that are not word documents
		// fail inside FromDOCX with a precise error.
		return FromDOCX(data)
	case strings.HasPrefix(mtype.String(), "text/"):
		return strings.TrimSpace(string(data)), nil
	}

	// Some editors save .txt/.md files that the sniffer classifies as
	// application/octet-stream; trust the extension for those two only.
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return strings.TrimSpace(string(data)), nil
	}

	return "", fmt.Errorf("%w: %s detected as %s", ErrUnsupported, filename, mtype.String())
}

// FromPDF reads every page of a PDF and returns its text collapsed to
// single spaces.
func FromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract: read pdf text: %w", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extract: read pdf stream: %w", err)
	}

	text := collapseWhitespace(string(raw))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// FromDOCX unpacks the OOXML container and gathers the text runs from
// word/document.xml. Paragraph boundaries become spaces.
func FromDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: open docx container: %w", err)
	}

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			document = file
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("extract: docx missing word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("extract: open document.xml: %w", err)
	}
	defer rc.Close()

	text, err := textRuns(rc)
	if err != nil {
		return "", fmt.Errorf("extract: parse document.xml: %w", err)
	}
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// textRuns walks the XML token stream and collects the contents of
// every <w:t> element.
func textRuns(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var out strings.Builder

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "t" {
			continue
		}

		var run string
		if err := decoder.DecodeElement(&run, &start); err != nil {
			return "", err
		}
		if run != "" {
			out.WriteString(run)
			out.WriteString(" ")
		}
	}

	return collapseWhitespace(out.String()), nil
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
