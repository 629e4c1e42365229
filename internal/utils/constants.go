package utils

import "time"

// Galaxy defaults
const (
	DefaultGalaxyURL          = "http://localhost"
	DefaultAdminEmail         = "admin@galaxy.org"
	DefaultAdminPassword      = "admin"
	DefaultDataDir            = "/project_data"
	DefaultLibraryName        = "Project Data"
	DefaultLibraryDescription = "Data for current genome annotation project"
)

// Environment variables set by the surrounding Galaxy container
const (
	EnvAdminUser     = "GALAXY_DEFAULT_ADMIN_USER"
	EnvAdminPassword = "GALAXY_DEFAULT_ADMIN_PASSWORD"
)

// Upload options for filesystem-link registration
const (
	LinkDataOnly       = "link_to_files"
	UploadOptionPaths  = "upload_paths"
	CreateTypeFolder   = "folder"
	CreateTypeFile     = "file"
	DefaultFileType    = "auto"
	DefaultDBKey       = "?"
	APIKeyHeader       = "x-api-key"
	KeyringServiceName = "gxlib"
)

// Pacing
const (
	DefaultFolderPause  = 1 * time.Second
	DefaultPollInterval = 3 * time.Second
	DefaultSettleDelay  = 10 * time.Second
)

// Queue status command
const (
	DefaultQueueCommand       = "qstat"
	DefaultQueueEmptyExitCode = 153
)

// DefaultRequestTimeoutSeconds bounds a single Galaxy HTTP request
const DefaultRequestTimeoutSeconds = 60

// Schema version
const SchemaVersion = "1.0"
