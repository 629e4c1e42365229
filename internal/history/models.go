package history

import "time"

// Run statuses
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one recorded import
type Run struct {
	ID               string    `json:"id"`
	DataDir          string    `json:"dataDir"`
	GalaxyURL        string    `json:"galaxyUrl"`
	LibraryName      string    `json:"libraryName"`
	LibraryID        string    `json:"libraryId,omitempty"`
	DeletedLibraries []string  `json:"deletedLibraries,omitempty"`
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt,omitempty"`
}

// Folder is one library folder created by a run
type Folder struct {
	RunID     string    `json:"runId"`
	Path      string    `json:"path"`
	FolderID  string    `json:"folderId"`
	FileCount int       `json:"fileCount"`
	CreatedAt time.Time `json:"createdAt"`
}
