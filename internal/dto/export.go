package dto

// ExportFormat enumerates timesheet export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered timesheet ready to be streamed to the caller.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
