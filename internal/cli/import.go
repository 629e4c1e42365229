package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dl-alexandre/gxlib/internal/api"
	"github.com/dl-alexandre/gxlib/internal/auth"
	"github.com/dl-alexandre/gxlib/internal/config"
	"github.com/dl-alexandre/gxlib/internal/history"
	"github.com/dl-alexandre/gxlib/internal/importer"
	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/queue"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// importOptions are the flags that override config for an import
type importOptions struct {
	dataDir      string
	url          string
	libraryName  string
	exclude      []string
	lockFile     string
	historyDB    string
	queueTimeout int
}

// loadConfig builds the run configuration: defaults, config file,
// environment, then any flag the user set explicitly.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.Config)
	if err != nil {
		return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build(), err)
	}

	if err := applyFlags(cmd, cfg, a.opts, a.flags); err != nil {
		return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build(), err)
	}
	a.cfg = cfg
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, opts importOptions, flags types.GlobalFlags) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if changed("url") {
		cfg.GalaxyURL = opts.url
	}
	if changed("library-name") {
		cfg.LibraryName = opts.libraryName
	}
	if changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, opts.exclude...)
	}
	if changed("lock-file") {
		cfg.LockFile = opts.lockFile
	}
	if changed("history-db") {
		cfg.HistoryDB = opts.historyDB
	}
	if changed("queue-timeout") {
		cfg.QueueTimeout = opts.queueTimeout
	}
	if flags.Verbose {
		cfg.LogLevel = "verbose"
	}
	if flags.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg.Validate()
}

// resolvePassword falls back to the OS keyring when neither the config file
// nor the environment supplied a password.
func resolvePassword(cfg *config.Config, store auth.PasswordStore, logger logging.Logger) {
	if cfg.PasswordSource != config.SourceDefault {
		return
	}
	if secret := auth.LookupPassword(store, cfg.AdminEmail); secret != "" {
		cfg.AdminPassword = secret
		cfg.PasswordSource = config.SourceKeyring
	}
	logger.Debug("Using admin credentials",
		logging.F("email", cfg.AdminEmail),
		logging.F("passwordSource", cfg.PasswordSource),
	)
}

// acquireLock takes an exclusive, non-blocking lock on path
func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
			fmt.Sprintf("create lock directory: %v", err)).Build(), err)
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, utils.WrapAppError(utils.NewCLIError(utils.ErrCodeLocked,
			fmt.Sprintf("acquire lock %s: %v", path, err)).Build(), err)
	}
	if !locked {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeLocked,
			"another import is running").
			WithContext("lockFile", path).
			Build())
	}
	return lock, nil
}

func (a *app) httpClient() *http.Client {
	client := &http.Client{Timeout: a.cfg.GetRequestTimeout()}
	if a.debugTransport != nil {
		client.Transport = a.debugTransport
	}
	return client
}

// tokenSource prefers a configured API key over the baseauth exchange
func (a *app) tokenSource(ctx context.Context, httpClient *http.Client) oauth2.TokenSource {
	cfg := a.cfg
	if cfg.APIKey != "" {
		a.logger.Debug("Using configured API key")
		return api.NewAPIKeyTokenSource(cfg.APIKey)
	}
	return api.NewPasswordTokenSource(ctx, cfg.GalaxyURL, cfg.AdminEmail, cfg.AdminPassword, httpClient)
}

func (a *app) runImport(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	cfg := a.cfg
	runID := uuid.New().String()
	logger := a.logger.WithTraceID(runID)
	out := a.output(cmd).WithTraceID(runID)

	defer func() {
		if err != nil {
			_ = out.WriteError("import", utils.ToCLIError(err))
			err = &reportedError{err: err}
		}
	}()

	if cfg.LockFile != "" {
		lock, lockErr := acquireLock(cfg.LockFile)
		if lockErr != nil {
			return lockErr
		}
		defer func() { _ = lock.Unlock() }()
		logger.Debug("Acquired run lock", logging.F("lockFile", cfg.LockFile))
	}

	var db *history.DB
	if cfg.HistoryDB != "" {
		db, err = history.Open(cfg.HistoryDB)
		if err != nil {
			return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
				fmt.Sprintf("open history database %s: %v", cfg.HistoryDB, err)).Build(), err)
		}
		defer db.Close()
	}

	resolvePassword(cfg, a.passwords, logger)

	httpClient := a.httpClient()
	client := api.NewClient(cfg.GalaxyURL, a.tokenSource(ctx, httpClient), httpClient, logger)

	checker := a.statusChecker
	if checker == nil {
		checker = queue.NewCommandChecker(cfg.QueueCommand, cfg.QueueEmptyExitCode)
	}

	result, err := importer.Run(ctx, cfg, importer.Deps{
		Client:  client,
		Checker: checker,
		Logger:  logger,
		History: db,
		RunID:   runID,
	})
	if err != nil {
		return err
	}

	if result.Skipped {
		out.AddWarning("NO_FILES", fmt.Sprintf("no files found under %s; library left untouched", cfg.DataDir), "info")
	}
	return out.WriteSuccess("import", result)
}
