package mocks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	testhelpers "github.com/dl-alexandre/gxlib/internal/testing"
	"github.com/dl-alexandre/gxlib/internal/testing/mocks"
	"github.com/dl-alexandre/gxlib/internal/types"
)

func TestMockLibraryClient_RecordsCalls(t *testing.T) {
	client := mocks.NewMockLibraryClient(&types.Library{ID: "old", Name: "Project Data"})
	ctx := testhelpers.TestContext()

	libs, err := client.ListLibraries(ctx, "Project Data")
	testhelpers.AssertNoError(t, err, "listing libraries")
	testhelpers.AssertEqual(t, len(libs), 1, "library count")

	testhelpers.AssertNoError(t, client.DeleteLibrary(ctx, "old"), "deleting library")
	testhelpers.AssertEqual(t, client.Libraries[0].Deleted, true, "deleted flag")

	lib, err := client.CreateLibrary(ctx, "Project Data", "desc")
	testhelpers.AssertNoError(t, err, "creating library")
	testhelpers.AssertNotNil(t, lib, "new library")

	folder, err := client.CreateFolder(ctx, lib.ID, "/data/a")
	testhelpers.AssertNoError(t, err, "creating folder")

	datasets, err := client.LinkFiles(ctx, lib.ID, folder.ID, []string{"/data/a/1", "/data/a/2"})
	testhelpers.AssertNoError(t, err, "linking files")
	testhelpers.AssertEqual(t, len(datasets), 2, "dataset count")

	want := []string{"ListLibraries", "DeleteLibrary", "CreateLibrary", "CreateFolder", "LinkFiles"}
	got := client.CallNames()
	if len(got) != len(want) {
		t.Fatalf("CallNames() = %v, want %v", got, want)
	}
	for i := range want {
		testhelpers.AssertEqual(t, got[i], want[i], "call order")
	}
	testhelpers.AssertEqual(t, client.CountCalls("LinkFiles"), 1, "LinkFiles calls")
}

func TestMockLibraryClient_Hooks(t *testing.T) {
	client := mocks.NewMockLibraryClient()
	client.CreateFolderFunc = func(libraryID, name string) (*types.LibraryFolder, error) {
		return nil, errors.New("boom")
	}

	_, err := client.CreateFolder(context.Background(), "lib", "/x")
	testhelpers.AssertError(t, err, "hooked CreateFolder")
}

func TestMockStatusChecker_Script(t *testing.T) {
	sentinel := errors.New("done")
	checker := &mocks.MockStatusChecker{Steps: []mocks.StatusStep{{Pending: 2}, {Err: sentinel}}}
	ctx := context.Background()

	n, err := checker.Pending(ctx)
	testhelpers.AssertNoError(t, err, "first poll")
	testhelpers.AssertEqual(t, n, 2, "first poll pending")

	for i := 0; i < 2; i++ {
		if _, err := checker.Pending(ctx); !errors.Is(err, sentinel) {
			t.Errorf("poll %d error = %v, want sentinel", i+2, err)
		}
	}
	testhelpers.AssertEqual(t, checker.Polls, 3, "poll count")
}

func TestSleeper(t *testing.T) {
	var s mocks.Sleeper
	testhelpers.AssertNoError(t, s.Sleep(context.Background(), time.Second), "sleep")
	testhelpers.AssertNoError(t, s.Sleep(context.Background(), 2*time.Second), "sleep")
	testhelpers.AssertEqual(t, s.Total(), 3*time.Second, "total")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	testhelpers.AssertError(t, s.Sleep(ctx, time.Second), "cancelled sleep")
}
