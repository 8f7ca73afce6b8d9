package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/models"
)

type TextExtractor interface {
	ExtractText(doc models.ResumeDocument) (string, error)
	ExtractTextFromFile(path string) (string, error)
}

type textExtractor struct {
	log *zap.Logger
}

func NewTextExtractor(log *zap.Logger) TextExtractor {
	return &textExtractor{log: logger.OrNop(log)}
}

// FormatFromFilename infers the document format from the file extension.
func FormatFromFilename(name string) (models.DocumentFormat, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return models.FormatPDF, nil
	case ".docx":
		return models.FormatDOCX, nil
	default:
		return "", apperrors.NewUnsupportedFormatError(strings.TrimPrefix(ext, "."))
	}
}

func (e *textExtractor) ExtractText(doc models.ResumeDocument) (string, error) {
	var (
		raw string
		err error
	)

	switch doc.Format {
	case models.FormatPDF:
		raw, err = e.extractPDF(doc.Data)
	case models.FormatDOCX:
		raw, err = extractDOCX(doc.Data)
	default:
		return "", apperrors.NewUnsupportedFormatError(string(doc.Format))
	}
	if err != nil {
		return "", err
	}

	return NormalizeText(raw), nil
}

func (e *textExtractor) ExtractTextFromFile(path string) (string, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return "", err
	}
	return e.ExtractText(doc)
}

// LoadDocument reads a resume file and infers its format from the extension.
func LoadDocument(path string) (models.ResumeDocument, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return models.ResumeDocument{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.ResumeDocument{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return models.ResumeDocument{
		Filename: filepath.Base(path),
		Format:   format,
		Data:     data,
	}, nil
}

func (e *textExtractor) extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewCorruptDocumentError("pdf", fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewCorruptDocumentError("pdf", err)
	}

	totalPage := r.NumPage()
	pages := make([]string, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		pages = append(pages, e.pageText(r, pageIndex))
	}

	return strings.Join(pages, "\n"), nil
}

// pageText returns "" for pages without extractable text.
func (e *textExtractor) pageText(r *pdf.Reader, pageIndex int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Warn("pdf page extraction panicked", zap.Int("page", pageIndex), zap.Any("panic", rec))
			text = ""
		}
	}()

	page := r.Page(pageIndex)
	if page.V.IsNull() {
		return ""
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		e.log.Warn("pdf page has no extractable text", zap.Int("page", pageIndex), zap.Error(err))
		return ""
	}
	return text
}

func extractDOCX(data []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", apperrors.NewCorruptDocumentError("docx", err)
	}
	return text, nil
}

// NormalizeText trims every line, collapses runs of blank lines to a single
// blank line and trims the result.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
