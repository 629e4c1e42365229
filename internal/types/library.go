package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Library is a Galaxy data library
type Library struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Synopsis     string `json:"synopsis,omitempty"`
	Deleted      bool   `json:"deleted"`
	RootFolderID string `json:"root_folder_id,omitempty"`
}

// LibraryFolder is a folder inside a data library
type LibraryFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// LibraryDataset is a dataset entry registered in a library folder
type LibraryDataset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// FolderEntry is one scanned directory and the files directly inside it
type FolderEntry struct {
	Path  string   `json:"path"`
	Files []string `json:"files"`
}

// Joined returns the file list in the newline-separated form Galaxy expects
func (e FolderEntry) Joined() string {
	return strings.Join(e.Files, "\n")
}

// FolderResult records what was created for one FolderEntry
type FolderResult struct {
	Path      string            `json:"path"`
	FolderID  string            `json:"folderId"`
	FileCount int               `json:"fileCount"`
	Datasets  []*LibraryDataset `json:"datasets,omitempty"`
}

// ImportResult summarises one import run
type ImportResult struct {
	DataDir          string         `json:"dataDir"`
	LibraryID        string         `json:"libraryId,omitempty"`
	LibraryName      string         `json:"libraryName"`
	DeletedLibraries []string       `json:"deletedLibraries,omitempty"`
	Folders          []FolderResult `json:"folders"`
	QueueWaitMs      int64          `json:"queueWaitMs"`
	Skipped          bool           `json:"skipped,omitempty"`
}

// FileCount returns the number of files linked across all folders
func (r *ImportResult) FileCount() int {
	total := 0
	for _, f := range r.Folders {
		total += f.FileCount
	}
	return total
}

func (r *ImportResult) Headers() []string {
	return []string{"Folder", "Folder ID", "Files"}
}

func (r *ImportResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.Folders))
	for _, f := range r.Folders {
		rows = append(rows, []string{f.Path, f.FolderID, strconv.Itoa(f.FileCount)})
	}
	return rows
}

func (r *ImportResult) EmptyMessage() string {
	return fmt.Sprintf("No files found under %s", r.DataDir)
}

func (r *ImportResult) AsTableRenderer() TableRenderer {
	return r
}

// ServerVersion is the reply of /api/version
type ServerVersion struct {
	Major string `json:"version_major"`
	Minor string `json:"version_minor"`
}

func (v ServerVersion) String() string {
	if v.Minor == "" {
		return v.Major
	}
	return v.Major + "." + v.Minor
}

// User is the authenticated Galaxy account
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
