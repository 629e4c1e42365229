package types

// OutputFormat selects how command results are printed
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// GlobalFlags holds the persistent flags shared by every command
type GlobalFlags struct {
	Config       string
	OutputFormat OutputFormat
	LogFile      string
	Quiet        bool
	Verbose      bool
	Debug        bool
	JSON         bool
}

// CLIError is the machine-readable error shape
type CLIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"httpStatus,omitempty"`
	ExitCode   int                    `json:"exitCode,omitempty"`
	Retryable  bool                   `json:"retryable"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// CLIWarning is a non-fatal note attached to output
type CLIWarning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// CLIOutput is the JSON envelope for every command result
type CLIOutput struct {
	SchemaVersion string       `json:"schemaVersion"`
	TraceID       string       `json:"traceId"`
	Command       string       `json:"command"`
	Data          interface{}  `json:"data"`
	Warnings      []CLIWarning `json:"warnings"`
	Errors        []CLIError   `json:"errors"`
}

// RequestType classifies a Galaxy API call for logging
type RequestType string

const (
	RequestTypeAuth      RequestType = "auth"
	RequestTypeList      RequestType = "list"
	RequestTypeGet       RequestType = "get"
	RequestTypeMutation  RequestType = "mutation"
	RequestTypeUploadRef RequestType = "upload_link"
)

// RequestContext carries per-call metadata through the API layer
type RequestContext struct {
	LibraryID   string
	FolderID    string
	Path        string
	RequestType RequestType
	TraceID     string
}
