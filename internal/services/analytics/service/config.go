package service

// Config holds the report parameters
type Config struct {
	LineID     string
	TopN       int
	ReportPath string
}
