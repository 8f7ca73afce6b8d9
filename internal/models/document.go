package models

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
)

// ResumeDocument is an uploaded resume. It lives for one request and is
// discarded once its text has been extracted.
type ResumeDocument struct {
	Filename string
	Format   DocumentFormat
	Data     []byte
}
