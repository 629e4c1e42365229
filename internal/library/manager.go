// Package library rebuilds a Galaxy data library and fills it with folders
// of filesystem-linked datasets.
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

// LibraryClient is the subset of the Galaxy API the manager needs
type LibraryClient interface {
	ListLibraries(ctx context.Context, name string) ([]*types.Library, error)
	DeleteLibrary(ctx context.Context, id string) error
	CreateLibrary(ctx context.Context, name, description string) (*types.Library, error)
	CreateFolder(ctx context.Context, libraryID, name string) (*types.LibraryFolder, error)
	LinkFiles(ctx context.Context, libraryID, folderID string, paths []string) ([]*types.LibraryDataset, error)
}

// Manager handles library operations
type Manager struct {
	client LibraryClient
	logger logging.Logger
	sleep  utils.SleepFunc
}

// NewManager creates a new library manager. A nil sleep uses
// utils.SleepWithContext.
func NewManager(client LibraryClient, logger logging.Logger, sleep utils.SleepFunc) *Manager {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	if sleep == nil {
		sleep = utils.SleepWithContext
	}
	return &Manager{client: client, logger: logger, sleep: sleep}
}

// Rebuild deletes every live library called name and creates a fresh one.
// It returns the new library and the ids that were deleted.
func (m *Manager) Rebuild(ctx context.Context, name, description string) (*types.Library, []string, error) {
	existing, err := m.client.ListLibraries(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("list libraries named %q: %w", name, err)
	}

	var deleted []string
	for _, lib := range existing {
		if lib.Deleted {
			continue
		}
		m.logger.Info("Deleting existing library",
			logging.F("libraryId", lib.ID),
			logging.F("name", lib.Name),
		)
		if err := m.client.DeleteLibrary(ctx, lib.ID); err != nil {
			return nil, deleted, fmt.Errorf("delete library %s: %w", lib.ID, err)
		}
		deleted = append(deleted, lib.ID)
	}

	lib, err := m.client.CreateLibrary(ctx, name, description)
	if err != nil {
		return nil, deleted, fmt.Errorf("create library %q: %w", name, err)
	}
	m.logger.Info("Created library",
		logging.F("libraryId", lib.ID),
		logging.F("name", name),
	)
	return lib, deleted, nil
}

// Populate creates one folder per entry, named after the entry's local path,
// and links the entry's files into it. Each upload is followed by pause.
// The first failure stops the run; folders created so far are left in place.
func (m *Manager) Populate(ctx context.Context, libraryID string, entries []types.FolderEntry, pause time.Duration) ([]types.FolderResult, error) {
	results := make([]types.FolderResult, 0, len(entries))

	for _, entry := range entries {
		if entry.Path == "" || len(entry.Files) == 0 {
			continue
		}

		m.logger.Info("Creating folder",
			logging.F("path", entry.Path),
			logging.F("files", len(entry.Files)),
		)
		folder, err := m.client.CreateFolder(ctx, libraryID, entry.Path)
		if err != nil {
			return results, fmt.Errorf("create folder %s: %w", entry.Path, err)
		}

		m.logger.Debug("Linking files", logging.F("folderId", folder.ID), logging.F("paths", entry.Joined()))
		datasets, err := m.client.LinkFiles(ctx, libraryID, folder.ID, entry.Files)
		if err != nil {
			return results, fmt.Errorf("link files into %s: %w", entry.Path, err)
		}

		results = append(results, types.FolderResult{
			Path:      entry.Path,
			FolderID:  folder.ID,
			FileCount: len(entry.Files),
			Datasets:  datasets,
		})

		if err := m.sleep(ctx, pause); err != nil {
			return results, err
		}
	}

	return results, nil
}
