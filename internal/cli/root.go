package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dl-alexandre/gxlib/internal/auth"
	"github.com/dl-alexandre/gxlib/internal/config"
	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/queue"
	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/dl-alexandre/gxlib/pkg/version"
	"github.com/spf13/cobra"
)

// skipConfigAnnotation marks commands that run without loading config
const skipConfigAnnotation = "gxlib/skip-config"

// app is the state shared by every command of one invocation
type app struct {
	flags types.GlobalFlags
	opts  importOptions

	cfg            *config.Config
	logger         logging.Logger
	debugTransport *logging.DebugTransport

	passwords auth.PasswordStore
	// statusChecker overrides the queue command; used by tests
	statusChecker queue.StatusChecker
}

func newApp() *app {
	return &app{
		logger:    logging.NewNoOpLogger(),
		passwords: auth.NewKeyringStore(""),
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gxlib",
		Short: "Load a data directory into a Galaxy data library",
		Long: `gxlib registers every file under a data directory as a linked dataset in a
Galaxy data library, one library folder per directory, then waits for the
cluster queue to drain.

The library is deleted and recreated on every run.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateGlobalFlags(); err != nil {
				return err
			}
			if cmd.Annotations[skipConfigAnnotation] != "" {
				return nil
			}
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			return a.initLogger()
		},
		RunE: a.runImport,
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).
			WithContext("suggestedAction", "run '"+cmd.CommandPath()+" --help' for usage").
			Build(), err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar((*string)(&a.flags.OutputFormat), "output", string(types.OutputFormatTable), "Output format (json, table)")
	pf.BoolVar(&a.flags.JSON, "json", false, "Output in JSON format (alias for --output json)")
	pf.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "Suppress console logging")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&a.flags.Debug, "debug", false, "Log every Galaxy HTTP request")
	pf.StringVar(&a.flags.Config, "config", "", "Path to configuration file")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "Also write JSON logs to this file")
	pf.StringVar(&a.opts.historyDB, "history-db", "", "Record runs in this SQLite database")

	f := rootCmd.Flags()
	f.StringVar(&a.opts.dataDir, "data-dir", "", "Directory to import (default /project_data)")
	f.StringVar(&a.opts.url, "url", "", "Galaxy base URL (default http://localhost)")
	f.StringVar(&a.opts.libraryName, "library-name", "", "Name of the library to rebuild (default \"Project Data\")")
	f.StringArrayVar(&a.opts.exclude, "exclude", nil, "Skip paths matching this pattern (repeatable)")
	f.StringVar(&a.opts.lockFile, "lock-file", "", "Refuse to run while another import holds this lock")
	f.IntVar(&a.opts.queueTimeout, "queue-timeout", 0, "Give up waiting for the queue after this many seconds (0 waits forever)")

	rootCmd.AddCommand(newVersionCommand(a))
	rootCmd.AddCommand(newAuthCommand(a))
	rootCmd.AddCommand(newHistoryCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(newAboutCommand(a))

	return rootCmd
}

func (a *app) validateGlobalFlags() error {
	// Handle --json flag as alias for --output json
	if a.flags.JSON {
		a.flags.OutputFormat = types.OutputFormatJSON
	}

	if a.flags.OutputFormat != types.OutputFormatJSON && a.flags.OutputFormat != types.OutputFormatTable {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid output format: %s", a.flags.OutputFormat)).Build())
	}
	return nil
}

func (a *app) initLogger() error {
	logConfig := logging.DefaultLogConfig()
	logConfig.Level = logging.ParseLevel(a.cfg.LogLevel)
	logConfig.OutputFile = a.flags.LogFile
	logConfig.EnableConsole = !a.flags.Quiet
	logConfig.EnableDebug = a.flags.Debug
	if a.flags.Verbose {
		logConfig.Level = logging.DEBUG
	}
	if a.flags.OutputFormat == types.OutputFormatJSON && !a.flags.Verbose && !a.flags.Debug {
		// keep stdout/stderr machine readable; errors still reach the envelope
		logConfig.EnableConsole = false
	}

	logger, transport, err := logging.NewDebugLoggerWithTransport(logConfig)
	if err != nil {
		return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("failed to initialize logger: %v", err)).Build(), err)
	}
	a.logger = logger
	a.debugTransport = transport
	return nil
}

func (a *app) output(cmd *cobra.Command) *OutputWriter {
	return NewOutputWriter(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.flags.OutputFormat, a.flags.Quiet, a.flags.Verbose)
}

// run executes one invocation and returns the process exit code
func run(ctx context.Context, a *app, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	executed, err := cmd.ExecuteContextC(ctx)
	if closeErr := a.logger.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == nil {
		return utils.ExitSuccess
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		format := a.flags.OutputFormat
		if format == "" {
			format = types.OutputFormatTable
		}
		w := NewOutputWriter(stdout, stderr, format, a.flags.Quiet, a.flags.Verbose)
		name := cmd.Name()
		if executed != nil {
			name = executed.Name()
		}
		_ = w.WriteError(name, utils.ToCLIError(err))
	}
	return utils.ExitCodeFor(err)
}

// reportedError marks an error whose envelope has already been written
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the command line and returns the process exit code.
// SIGINT and SIGTERM cancel the run.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, newApp(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
