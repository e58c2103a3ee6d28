// internal/resume/service.go
package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"interview-backend/internal/common/errors"
	"interview-backend/internal/common/logger"

	"github.com/ledongthuc/pdf"
)

// Allowed upload formats. .doc is accepted for storage but its text cannot
// be extracted (legacy binary format).
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":               true,
	"application/octet-stream": true, // browsers sometimes send this for any attachment
}

type Service struct {
	maxBytes int64
	logger   logger.Logger
}

func NewService(maxBytes int64, log logger.Logger) *Service {
	return &Service{
		maxBytes: maxBytes,
		logger:   log.WithFields(map[string]interface{}{"service": "resume"}),
	}
}

// Validate checks extension, declared content type and size. It never reads
// the file content; a well-formed name with garbage bytes passes validation
// and fails extraction instead, which is non-fatal.
func (s *Service) Validate(size int64, filename, contentType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return errors.NewInvalidFileError(fmt.Sprintf("unsupported file extension: %s", ext))
	}

	if contentType != "" && !allowedContentTypes[strings.ToLower(contentType)] {
		return errors.NewInvalidFileError(fmt.Sprintf("unsupported content type: %s", contentType))
	}

	if size > s.maxBytes {
		return errors.NewFileTooLargeError(size, s.maxBytes)
	}

	return nil
}

// ExtractText pulls plain text out of the uploaded document. PDF and DOCX
// are parsed, TXT passes through, .doc is reported as unsupported.
func (s *Service) ExtractText(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt":
		return string(data), nil
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".doc":
		return "", fmt.Errorf("text extraction is not supported for legacy .doc files")
	default:
		return "", fmt.Errorf("text extraction is not supported for %s files", ext)
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", pageNum, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}

// docx word/document.xml structure, reduced to the text runs we care about.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("docx archive has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", err)
	}

	var doc docxDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var sb strings.Builder
	for _, p := range doc.Body.Paragraphs {
		for _, r := range p.Runs {
			sb.WriteString(r.Text)
		}
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}
