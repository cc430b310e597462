package domain

import "time"

// SourceFile describes one PDF in the source folder.
type SourceFile struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size"`
}

// ScanResult summarizes the contents of the source folder.
type ScanResult struct {
	Files          []SourceFile `json:"files"`
	Count          int          `json:"count"`
	TotalSizeBytes int64        `json:"total_size"`
}

// FileMapping correlates a source file to its renumbered, redacted output.
// Number is 1-based and dense within one redaction run: it is the canonical
// processing order shared by redaction, extraction and reconciliation.
type FileMapping struct {
	Number       int    `json:"number"`
	OriginalName string `json:"original_name"`
	MaskedName   string `json:"masked_name"`
}

// RedactionArea is an axis-aligned rectangle in page coordinate space
// (origin top-left, units in points) whose content is permanently removed.
type RedactionArea struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// DefaultRedactionAreas covers the name, date-of-birth and
// business-registration-number regions on the first page.
var DefaultRedactionAreas = []RedactionArea{
	{X1: 190, Y1: 122, X2: 270, Y2: 135},
	{X1: 430, Y1: 122, X2: 510, Y2: 135},
	{X1: 60, Y1: 255, X2: 170, Y2: 355},
}

// ProcessedFile describes one successfully redacted output file.
type ProcessedFile struct {
	OriginalName string `json:"original_name"`
	MaskedName   string `json:"masked_name"`
	SizeBytes    int64  `json:"size"`
}

// RedactionResult is the payload of a completed redaction job.
type RedactionResult struct {
	ProcessedFiles []ProcessedFile `json:"processed_files"`
	FileMapping    []FileMapping   `json:"file_mapping"`
	TotalProcessed int             `json:"total_processed"`
	TargetFolder   string          `json:"target_folder"`
}

// Job is one tracked asynchronous unit of work. State lives in process
// memory only and is lost on restart.
type Job struct {
	ID        string      `json:"job_id"`
	Kind      JobKind     `json:"kind"`
	Status    JobStatus   `json:"status"`
	Progress  int         `json:"progress"`
	Message   string      `json:"message"`
	Error     string      `json:"error,omitempty"`
	LogOutput string      `json:"log_output,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// PersonalInfoEntry aligns a de-identification code with the order the
// extraction step consumed the file. Order equals the FileMapping number
// when a mapping exists, otherwise the sorted listing index.
type PersonalInfoEntry struct {
	Order            int    `json:"order"`
	Code             string `json:"code"`
	OriginalFilename string `json:"original_filename"`
}

// ExtractedRecord is one taxable-income row extracted from one document.
// Fields maps the fixed extraction field names to string values.
type ExtractedRecord struct {
	FileName  string            `json:"file_name"`
	RowNumber int               `json:"row_number"`
	Fields    map[string]string `json:"fields"`
}
