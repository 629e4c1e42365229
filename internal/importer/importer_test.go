package importer

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dl-alexandre/gxlib/internal/config"
	"github.com/dl-alexandre/gxlib/internal/history"
	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/queue"
	testhelpers "github.com/dl-alexandre/gxlib/internal/testing"
	"github.com/dl-alexandre/gxlib/internal/testing/mocks"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

type fixture struct {
	cfg     *config.Config
	client  *mocks.MockLibraryClient
	checker *mocks.MockStatusChecker
	sleeper *mocks.Sleeper
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, dataDir string) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	return &fixture{
		cfg:     cfg,
		client:  mocks.NewMockLibraryClient(testhelpers.TestLibrary("old", utils.DefaultLibraryName, false)),
		checker: &mocks.MockStatusChecker{Steps: []mocks.StatusStep{{Pending: 3}, {Err: queue.ErrQueueEmpty}}},
		sleeper: &mocks.Sleeper{},
		logs:    &bytes.Buffer{},
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Client:  f.client,
		Checker: f.checker,
		Logger:  logging.NewConsoleLogger(logging.ConsoleLoggerConfig{Writer: f.logs, Level: logging.DEBUG}),
		Sleep:   f.sleeper.Sleep,
		RunID:   "run-test",
	}
}

func TestRun_FullImport(t *testing.T) {
	root := testhelpers.TestDataTree(t, map[string]string{
		"genome/chr1.fa":     ">chr1",
		"genome/chr2.fa":     ">chr2",
		"reads/sample.fastq": "@r1",
	})
	f := newFixture(t, root)

	result, err := Run(context.Background(), f.cfg, f.deps())
	testhelpers.AssertNoError(t, err, "run")

	wantCalls := []string{
		"ListLibraries", "DeleteLibrary", "CreateLibrary",
		"CreateFolder", "LinkFiles",
		"CreateFolder", "LinkFiles",
	}
	if !reflect.DeepEqual(f.client.CallNames(), wantCalls) {
		t.Errorf("calls = %v, want %v", f.client.Calls, wantCalls)
	}
	if f.client.Calls[3] != "CreateFolder "+result.LibraryID+" "+filepath.Join(root, "genome") {
		t.Errorf("first folder call = %q", f.client.Calls[3])
	}

	wantPauses := []time.Duration{time.Second, time.Second, 3 * time.Second, 10 * time.Second}
	if !reflect.DeepEqual(f.sleeper.Pauses, wantPauses) {
		t.Errorf("pauses = %v, want %v", f.sleeper.Pauses, wantPauses)
	}
	testhelpers.AssertEqual(t, f.checker.Polls, 2, "queue polls")

	testhelpers.AssertEqual(t, result.Skipped, false, "skipped")
	testhelpers.AssertEqual(t, len(result.Folders), 2, "folders")
	testhelpers.AssertEqual(t, result.FileCount(), 3, "files")
	if !reflect.DeepEqual(result.DeletedLibraries, []string{"old"}) {
		t.Errorf("DeletedLibraries = %v", result.DeletedLibraries)
	}
	if !strings.Contains(f.logs.String(), "Finished importing data.") {
		t.Errorf("completion not logged:\n%s", f.logs.String())
	}
}

func TestRun_EmptyRootTouchesNothing(t *testing.T) {
	f := newFixture(t, t.TempDir())

	result, err := Run(context.Background(), f.cfg, f.deps())
	testhelpers.AssertNoError(t, err, "run")

	testhelpers.AssertEqual(t, len(f.client.Calls), 0, "remote calls")
	testhelpers.AssertEqual(t, f.checker.Polls, 0, "queue polls")
	testhelpers.AssertEqual(t, len(f.sleeper.Pauses), 0, "pauses")
	testhelpers.AssertEqual(t, result.Skipped, true, "skipped")
	testhelpers.AssertEqual(t, f.client.Libraries[0].Deleted, false, "existing library kept")
}

func TestRun_MissingRootWarns(t *testing.T) {
	f := newFixture(t, filepath.Join(t.TempDir(), "absent"))

	result, err := Run(context.Background(), f.cfg, f.deps())
	testhelpers.AssertNoError(t, err, "run")
	testhelpers.AssertEqual(t, result.Skipped, true, "skipped")
	testhelpers.AssertEqual(t, len(f.client.Calls), 0, "remote calls")
	if !strings.Contains(f.logs.String(), "Data directory does not exist") {
		t.Errorf("missing root not reported:\n%s", f.logs.String())
	}
}

func TestRun_ExcludedTreeIsEmpty(t *testing.T) {
	root := testhelpers.TestDataTree(t, map[string]string{"tmp/a": "x"})
	f := newFixture(t, root)
	f.cfg.Exclude = []string{"tmp/"}

	result, err := Run(context.Background(), f.cfg, f.deps())
	testhelpers.AssertNoError(t, err, "run")
	testhelpers.AssertEqual(t, result.Skipped, true, "skipped")
}

func TestRun_UploadFailureStopsBeforeQueue(t *testing.T) {
	root := testhelpers.TestDataTree(t, map[string]string{"a/1": "", "b/1": ""})
	f := newFixture(t, root)
	f.client.LinkFilesFunc = func(libraryID, folderID string, paths []string) ([]*types.LibraryDataset, error) {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodePermissionDenied, "path paste disabled").Build())
	}

	result, err := Run(context.Background(), f.cfg, f.deps())
	if utils.ExitCodeFor(err) != utils.ExitPermissionDenied {
		t.Fatalf("Run() error = %v, want PERMISSION_DENIED", err)
	}
	testhelpers.AssertEqual(t, f.client.CountCalls("CreateFolder"), 1, "folders attempted")
	testhelpers.AssertEqual(t, f.checker.Polls, 0, "queue polls")
	testhelpers.AssertNotNil(t, result, "partial result")
	testhelpers.AssertEqual(t, result.LibraryID != "", true, "library id kept")
}

func TestRun_QueueErrorPropagates(t *testing.T) {
	root := testhelpers.TestDataTree(t, map[string]string{"a/1": ""})
	f := newFixture(t, root)
	qErr := utils.NewAppError(utils.NewCLIError(utils.ErrCodeQueueError, "qstat exited with status 1").Build())
	f.checker.Steps = []mocks.StatusStep{{Err: qErr}}

	_, err := Run(context.Background(), f.cfg, f.deps())
	if !errors.Is(err, qErr) || utils.ExitCodeFor(err) != utils.ExitQueueError {
		t.Errorf("Run() error = %v, want queue error", err)
	}
	if strings.Contains(f.logs.String(), "Finished importing data.") {
		t.Error("completion logged despite queue failure")
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	root := testhelpers.TestDataTree(t, map[string]string{"a/1": "", "a/2": "", "b/1": ""})
	f := newFixture(t, root)

	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	testhelpers.AssertNoError(t, err, "open history")
	t.Cleanup(func() { _ = db.Close() })

	deps := f.deps()
	deps.History = db
	result, err := Run(context.Background(), f.cfg, deps)
	testhelpers.AssertNoError(t, err, "run")

	ctx := context.Background()
	runs, err := db.ListRuns(ctx, 5)
	testhelpers.AssertNoError(t, err, "list runs")
	testhelpers.AssertEqual(t, len(runs), 1, "runs")
	testhelpers.AssertEqual(t, runs[0].ID, "run-test", "run id")
	testhelpers.AssertEqual(t, runs[0].Status, history.StatusSucceeded, "status")
	testhelpers.AssertEqual(t, runs[0].LibraryID, result.LibraryID, "library id")

	folders, err := db.ListFolders(ctx, "run-test")
	testhelpers.AssertNoError(t, err, "list folders")
	testhelpers.AssertEqual(t, len(folders), 2, "folders")
	testhelpers.AssertEqual(t, folders[0].FileCount, 2, "files in a")
}

func TestRun_RecordsFailedHistory(t *testing.T) {
	root := testhelpers.TestDataTree(t, map[string]string{"a/1": ""})
	f := newFixture(t, root)
	f.client.CreateLibraryFunc = func(name, description string) (*types.Library, error) {
		return nil, errors.New("boom")
	}

	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	testhelpers.AssertNoError(t, err, "open history")
	t.Cleanup(func() { _ = db.Close() })

	deps := f.deps()
	deps.History = db
	_, err = Run(context.Background(), f.cfg, deps)
	testhelpers.AssertError(t, err, "run")

	runs, err := db.ListRuns(context.Background(), 5)
	testhelpers.AssertNoError(t, err, "list runs")
	testhelpers.AssertEqual(t, runs[0].Status, history.StatusFailed, "status")
	if !strings.Contains(runs[0].Error, "boom") {
		t.Errorf("error = %q", runs[0].Error)
	}
}

func TestRun_RequiresDeps(t *testing.T) {
	if _, err := Run(context.Background(), nil, Deps{}); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := Run(context.Background(), config.DefaultConfig(), Deps{}); err == nil {
		t.Error("expected error for missing client")
	}
}
