package services

// ReportHeader opens every deployment impact report.
const ReportHeader = "# Deployment Impact Analysis\n\n"

// PersistentCommentHeader marks the comment that is edited in place on re-runs.
const PersistentCommentHeader = "## Deployment Impact Analysis 🚀"

// FormatReport prefixes the model output with the report header.
func FormatReport(text string) string {
	return ReportHeader + text
}
