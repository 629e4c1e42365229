package library

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	testhelpers "github.com/dl-alexandre/gxlib/internal/testing"
	"github.com/dl-alexandre/gxlib/internal/testing/mocks"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

var _ LibraryClient = (*mocks.MockLibraryClient)(nil)

func TestNewManager(t *testing.T) {
	client := mocks.NewMockLibraryClient()
	manager := NewManager(client, nil, nil)

	if manager.client != client {
		t.Error("Manager client not set correctly")
	}
	if manager.logger == nil || manager.sleep == nil {
		t.Error("Manager defaults not initialized")
	}
}

func TestRebuild_DeletesEachLiveMatchThenCreatesOnce(t *testing.T) {
	client := mocks.NewMockLibraryClient(
		testhelpers.TestLibrary("a", "Project Data", false),
		testhelpers.TestLibrary("b", "Project Data", false),
		testhelpers.TestLibrary("c", "Project Data", true),
		testhelpers.TestLibrary("d", "Other", false),
	)
	manager := NewManager(client, nil, nil)

	lib, deleted, err := manager.Rebuild(context.Background(), "Project Data", "Data for current genome annotation project")
	testhelpers.AssertNoError(t, err, "rebuild")

	wantCalls := []string{
		"ListLibraries Project Data",
		"DeleteLibrary a",
		"DeleteLibrary b",
		"CreateLibrary Project Data",
	}
	if !reflect.DeepEqual(client.Calls, wantCalls) {
		t.Errorf("calls = %v, want %v", client.Calls, wantCalls)
	}
	if !reflect.DeepEqual(deleted, []string{"a", "b"}) {
		t.Errorf("deleted = %v", deleted)
	}
	testhelpers.AssertEqual(t, lib.Name, "Project Data", "library name")
	testhelpers.AssertEqual(t, lib.Description, "Data for current genome annotation project", "description")
}

func TestRebuild_NoExistingLibrary(t *testing.T) {
	client := mocks.NewMockLibraryClient()
	manager := NewManager(client, nil, nil)

	_, deleted, err := manager.Rebuild(context.Background(), "Project Data", "")
	testhelpers.AssertNoError(t, err, "rebuild")
	testhelpers.AssertEqual(t, len(deleted), 0, "deleted count")
	testhelpers.AssertEqual(t, client.CountCalls("CreateLibrary"), 1, "create calls")
}

func TestRebuild_DeleteFailureStops(t *testing.T) {
	client := mocks.NewMockLibraryClient(testhelpers.TestLibrary("a", "Project Data", false))
	client.DeleteLibraryFunc = func(id string) error {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodePermissionDenied, "not an admin").Build())
	}
	manager := NewManager(client, nil, nil)

	_, _, err := manager.Rebuild(context.Background(), "Project Data", "")
	if utils.ExitCodeFor(err) != utils.ExitPermissionDenied {
		t.Errorf("Rebuild() error = %v, want PERMISSION_DENIED", err)
	}
	testhelpers.AssertEqual(t, client.CountCalls("CreateLibrary"), 0, "create calls")
}

func TestPopulate(t *testing.T) {
	client := mocks.NewMockLibraryClient()
	sleeper := &mocks.Sleeper{}
	manager := NewManager(client, nil, sleeper.Sleep)

	entries := []types.FolderEntry{
		{Path: "/data/genome", Files: []string{"/data/genome/chr1.fa", "/data/genome/chr2.fa"}},
		{Path: "/data/empty"},
		{Path: "", Files: []string{"/orphan"}},
		{Path: "/data/reads", Files: []string{"/data/reads/r1.fastq"}},
	}

	results, err := manager.Populate(context.Background(), "lib-1", entries, time.Second)
	testhelpers.AssertNoError(t, err, "populate")

	testhelpers.AssertEqual(t, len(results), 2, "result count")
	testhelpers.AssertEqual(t, results[0].Path, "/data/genome", "first folder")
	testhelpers.AssertEqual(t, results[0].FileCount, 2, "first folder files")
	testhelpers.AssertEqual(t, len(results[0].Datasets), 2, "first folder datasets")
	testhelpers.AssertEqual(t, results[1].Path, "/data/reads", "second folder")

	wantNames := []string{"CreateFolder", "LinkFiles", "CreateFolder", "LinkFiles"}
	if !reflect.DeepEqual(client.CallNames(), wantNames) {
		t.Errorf("calls = %v, want %v", client.Calls, wantNames)
	}
	if client.Calls[1] != "LinkFiles lib-1 "+results[0].FolderID+" /data/genome/chr1.fa,/data/genome/chr2.fa" {
		t.Errorf("link call = %q", client.Calls[1])
	}
	if !reflect.DeepEqual(sleeper.Pauses, []time.Duration{time.Second, time.Second}) {
		t.Errorf("pauses = %v", sleeper.Pauses)
	}
}

func TestPopulate_FailureAbortsWithoutCleanup(t *testing.T) {
	client := mocks.NewMockLibraryClient()
	calls := 0
	client.LinkFilesFunc = func(libraryID, folderID string, paths []string) ([]*types.LibraryDataset, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("upload rejected")
		}
		return nil, nil
	}
	manager := NewManager(client, nil, (&mocks.Sleeper{}).Sleep)

	entries := []types.FolderEntry{
		{Path: "/a", Files: []string{"/a/1"}},
		{Path: "/b", Files: []string{"/b/1"}},
		{Path: "/c", Files: []string{"/c/1"}},
	}
	results, err := manager.Populate(context.Background(), "lib", entries, time.Second)
	testhelpers.AssertError(t, err, "populate")
	testhelpers.AssertEqual(t, len(results), 1, "completed folders")
	testhelpers.AssertEqual(t, client.CountCalls("CreateFolder"), 2, "folders attempted")
	testhelpers.AssertEqual(t, client.CountCalls("DeleteLibrary"), 0, "cleanup calls")
}

func TestPopulate_Cancelled(t *testing.T) {
	client := mocks.NewMockLibraryClient()
	manager := NewManager(client, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	entries := []types.FolderEntry{{Path: "/a", Files: []string{"/a/1"}}, {Path: "/b", Files: []string{"/b/1"}}}

	_, err := manager.Populate(ctx, "lib", entries, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Populate() error = %v, want context.Canceled", err)
	}
	testhelpers.AssertEqual(t, client.CountCalls("CreateFolder"), 1, "folders before cancel")
}
