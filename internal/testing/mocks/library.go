package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dl-alexandre/gxlib/internal/types"
)

// MockLibraryClient is an in-memory Galaxy library API. Every call is
// appended to Calls as "Method arg..." so tests can assert ordering; the
// *Func hooks override the default behaviour.
type MockLibraryClient struct {
	mu sync.Mutex

	Libraries []*types.Library
	Calls     []string

	ListLibrariesFunc func(name string) ([]*types.Library, error)
	DeleteLibraryFunc func(id string) error
	CreateLibraryFunc func(name, description string) (*types.Library, error)
	CreateFolderFunc  func(libraryID, name string) (*types.LibraryFolder, error)
	LinkFilesFunc     func(libraryID, folderID string, paths []string) ([]*types.LibraryDataset, error)

	nextID int
}

// NewMockLibraryClient creates a client seeded with libraries
func NewMockLibraryClient(libraries ...*types.Library) *MockLibraryClient {
	return &MockLibraryClient{Libraries: libraries}
}

func (m *MockLibraryClient) record(call string, args ...string) {
	if len(args) > 0 {
		call += " " + strings.Join(args, " ")
	}
	m.Calls = append(m.Calls, call)
}

func (m *MockLibraryClient) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s%d", prefix, m.nextID)
}

// ListLibraries mocks listing libraries by name
func (m *MockLibraryClient) ListLibraries(ctx context.Context, name string) ([]*types.Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListLibraries", name)
	if m.ListLibrariesFunc != nil {
		return m.ListLibrariesFunc(name)
	}
	var out []*types.Library
	for _, lib := range m.Libraries {
		if name == "" || lib.Name == name {
			out = append(out, lib)
		}
	}
	return out, nil
}

// DeleteLibrary mocks deleting a library
func (m *MockLibraryClient) DeleteLibrary(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteLibrary", id)
	if m.DeleteLibraryFunc != nil {
		return m.DeleteLibraryFunc(id)
	}
	for _, lib := range m.Libraries {
		if lib.ID == id {
			lib.Deleted = true
		}
	}
	return nil
}

// CreateLibrary mocks creating a library
func (m *MockLibraryClient) CreateLibrary(ctx context.Context, name, description string) (*types.Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateLibrary", name)
	if m.CreateLibraryFunc != nil {
		return m.CreateLibraryFunc(name, description)
	}
	lib := &types.Library{ID: m.id("lib-"), Name: name, Description: description, RootFolderID: m.id("F")}
	m.Libraries = append(m.Libraries, lib)
	return lib, nil
}

// CreateFolder mocks creating a folder
func (m *MockLibraryClient) CreateFolder(ctx context.Context, libraryID, name string) (*types.LibraryFolder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateFolder", libraryID, name)
	if m.CreateFolderFunc != nil {
		return m.CreateFolderFunc(libraryID, name)
	}
	return &types.LibraryFolder{ID: m.id("F"), Name: name}, nil
}

// LinkFiles mocks a filesystem-link upload
func (m *MockLibraryClient) LinkFiles(ctx context.Context, libraryID, folderID string, paths []string) ([]*types.LibraryDataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("LinkFiles", libraryID, folderID, strings.Join(paths, ","))
	if m.LinkFilesFunc != nil {
		return m.LinkFilesFunc(libraryID, folderID, paths)
	}
	datasets := make([]*types.LibraryDataset, 0, len(paths))
	for _, p := range paths {
		datasets = append(datasets, &types.LibraryDataset{ID: m.id("D"), Name: p})
	}
	return datasets, nil
}

// CallNames returns the method name of each recorded call
func (m *MockLibraryClient) CallNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		names[i], _, _ = strings.Cut(c, " ")
	}
	return names
}

// CountCalls returns how many times method was called
func (m *MockLibraryClient) CountCalls(method string) int {
	n := 0
	for _, name := range m.CallNames() {
		if name == method {
			n++
		}
	}
	return n
}

// MockStatusChecker replays a scripted sequence of queue polls. When the
// script runs out the last step repeats.
type MockStatusChecker struct {
	mu    sync.Mutex
	Steps []StatusStep
	Polls int
}

// StatusStep is one scripted Pending result
type StatusStep struct {
	Pending int
	Err     error
}

// Pending mocks a queue status poll
func (m *MockStatusChecker) Pending(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Polls++
	if len(m.Steps) == 0 {
		return 0, nil
	}
	i := m.Polls - 1
	if i >= len(m.Steps) {
		i = len(m.Steps) - 1
	}
	return m.Steps[i].Pending, m.Steps[i].Err
}

// Sleeper records requested pauses instead of waiting
type Sleeper struct {
	mu     sync.Mutex
	Pauses []time.Duration
}

// Sleep records d and returns immediately, or ctx.Err() if ctx is done
func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Pauses = append(s.Pauses, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Total returns the sum of all recorded pauses
func (s *Sleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.Pauses {
		total += d
	}
	return total
}
