// Package importer runs one end-to-end load of a data directory into a
// Galaxy data library.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dl-alexandre/gxlib/internal/config"
	"github.com/dl-alexandre/gxlib/internal/history"
	"github.com/dl-alexandre/gxlib/internal/library"
	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/queue"
	"github.com/dl-alexandre/gxlib/internal/scanner"
	"github.com/dl-alexandre/gxlib/internal/scanner/exclude"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/google/uuid"
)

// Deps are the capabilities a run depends on
type Deps struct {
	Client  library.LibraryClient
	Checker queue.StatusChecker
	Logger  logging.Logger
	// Sleep replaces every pause in the run; nil sleeps for real
	Sleep utils.SleepFunc
	// History, when non-nil, receives an audit record of the run
	History *history.DB
	// RunID identifies the run in logs and history; generated when empty
	RunID string
}

// Run scans cfg.DataDir, rebuilds the library, links every folder's files,
// waits for the queue to drain and then for the settle delay. When the scan
// finds no files nothing remote is touched.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (result *types.ImportResult, err error) {
	if cfg == nil {
		return nil, errors.New("importer: nil config")
	}
	if deps.Client == nil || deps.Checker == nil {
		return nil, errors.New("importer: library client and status checker are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = utils.SleepWithContext
	}
	runID := deps.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	logger = logger.WithTraceID(runID)

	result = &types.ImportResult{
		DataDir:     cfg.DataDir,
		LibraryName: cfg.LibraryName,
		Folders:     []types.FolderResult{},
	}

	rec := &recorder{db: deps.History, runID: runID, logger: logger}
	rec.start(ctx, cfg)
	defer func() { rec.finish(ctx, err) }()

	if _, statErr := os.Stat(cfg.DataDir); errors.Is(statErr, fs.ErrNotExist) {
		logger.Warn("Data directory does not exist", logging.F("dataDir", cfg.DataDir))
	}

	logger.Info("Scanning data directory", logging.F("dataDir", cfg.DataDir))
	entries, err := scanner.Scan(ctx, cfg.DataDir, exclude.New(cfg.Exclude))
	if err != nil {
		return result, err
	}
	if len(entries) == 0 {
		logger.Info("No files found; leaving library untouched", logging.F("dataDir", cfg.DataDir))
		result.Skipped = true
		return result, nil
	}
	logger.Debug("Scan complete", logging.F("folders", len(entries)))

	manager := library.NewManager(deps.Client, logger, sleep)
	lib, deleted, err := manager.Rebuild(ctx, cfg.LibraryName, cfg.LibraryDescription)
	result.DeletedLibraries = deleted
	if err != nil {
		return result, err
	}
	result.LibraryID = lib.ID
	rec.library(ctx, lib.ID, deleted)

	folders, err := manager.Populate(ctx, lib.ID, entries, cfg.GetFolderPause())
	result.Folders = append(result.Folders, folders...)
	for _, f := range folders {
		rec.folder(ctx, f)
	}
	if err != nil {
		return result, err
	}

	logger.Info("Waiting for queued jobs to finish")
	waiter := queue.NewWaiter(deps.Checker, cfg.GetPollInterval(),
		queue.WithTimeout(cfg.GetQueueTimeout()),
		queue.WithSleep(sleep),
		queue.WithLogger(logger),
	)
	waitStart := time.Now()
	err = waiter.Wait(ctx)
	result.QueueWaitMs = time.Since(waitStart).Milliseconds()
	if err != nil {
		return result, fmt.Errorf("wait for queue: %w", err)
	}

	if err := sleep(ctx, cfg.GetSettleDelay()); err != nil {
		return result, err
	}
	logger.Info("Finished importing data.",
		logging.F("libraryId", lib.ID),
		logging.F("folders", len(result.Folders)),
		logging.F("files", result.FileCount()),
	)
	return result, nil
}

// recorder writes history rows; failures there are logged and never fail
// the import.
type recorder struct {
	db     *history.DB
	runID  string
	logger logging.Logger
}

func (r *recorder) start(ctx context.Context, cfg *config.Config) {
	if r.db == nil {
		return
	}
	r.warn("start", r.db.StartRun(ctx, history.Run{
		ID:          r.runID,
		DataDir:     cfg.DataDir,
		GalaxyURL:   cfg.GalaxyURL,
		LibraryName: cfg.LibraryName,
	}))
}

func (r *recorder) library(ctx context.Context, libraryID string, deleted []string) {
	if r.db == nil {
		return
	}
	r.warn("library", r.db.SetLibrary(ctx, r.runID, libraryID, deleted))
}

func (r *recorder) folder(ctx context.Context, f types.FolderResult) {
	if r.db == nil {
		return
	}
	r.warn("folder", r.db.RecordFolder(ctx, history.Folder{
		RunID:     r.runID,
		Path:      f.Path,
		FolderID:  f.FolderID,
		FileCount: f.FileCount,
	}))
}

func (r *recorder) finish(ctx context.Context, runErr error) {
	if r.db == nil {
		return
	}
	// the run's context may already be cancelled
	r.warn("finish", r.db.FinishRun(context.WithoutCancel(ctx), r.runID, runErr))
}

func (r *recorder) warn(step string, err error) {
	if err != nil {
		r.logger.Warn("History write failed", logging.F("step", step), logging.F("error", err.Error()))
	}
}
