package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dl-alexandre/gxlib/internal/config"
	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/spf13/cobra"
)

// configView is the effective configuration with its file location
type configView struct {
	Path   string         `json:"path"`
	Exists bool           `json:"exists"`
	Config *config.Config `json:"config,omitempty"`
}

func (v *configView) Headers() []string {
	return []string{"Key", "Value"}
}

func (v *configView) Rows() [][]string {
	rows := [][]string{{"config file", v.Path}}
	if !v.Exists {
		rows[0][1] += " (not found)"
	}
	c := v.Config
	if c == nil {
		return rows
	}
	return append(rows,
		[]string{"galaxy_url", c.GalaxyURL},
		[]string{"admin_email", c.AdminEmail},
		[]string{"admin_password", c.AdminPassword + " (" + c.PasswordSource + ")"},
		[]string{"api_key", c.APIKey},
		[]string{"data_dir", c.DataDir},
		[]string{"library_name", c.LibraryName},
		[]string{"library_description", c.LibraryDescription},
		[]string{"exclude", strings.Join(c.Exclude, ", ")},
		[]string{"folder_pause_ms", strconv.Itoa(c.FolderPauseMs)},
		[]string{"poll_interval_ms", strconv.Itoa(c.PollIntervalMs)},
		[]string{"settle_delay_ms", strconv.Itoa(c.SettleDelayMs)},
		[]string{"queue_command", strings.Join(c.QueueCommand, " ")},
		[]string{"queue_empty_exit_code", strconv.Itoa(c.QueueEmptyExitCode)},
		[]string{"queue_timeout", strconv.Itoa(c.QueueTimeout)},
		[]string{"request_timeout", strconv.Itoa(c.RequestTimeout)},
		[]string{"log_level", c.LogLevel},
		[]string{"lock_file", c.LockFile},
		[]string{"history_db", c.HistoryDB},
	)
}

func (v *configView) EmptyMessage() string {
	return "No configuration"
}

func newConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long: `Inspect or create the gxlib configuration file.

Settings are resolved from defaults, then the config file, then the
environment, then command-line flags.`,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Display the configuration an import would run with. The admin password is masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolvePassword(a.cfg, a.passwords, a.logger)
			view, err := a.configView()
			if err != nil {
				return err
			}
			view.Config = a.cfg.Redacted()
			return a.output(cmd).WriteSuccess("config show", view)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			skipConfigAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.configView()
			if err != nil {
				return err
			}
			return a.output(cmd).WriteSuccess("config path", view)
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write the default settings to the config file so they can be edited.
The admin password is not written; use the environment or 'gxlib auth
set-password' instead.`,
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			skipConfigAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.configView()
			if err != nil {
				return err
			}
			if view.Exists && !force {
				return utils.NewAppError(utils.NewCLIError(utils.ErrCodeConflict,
					fmt.Sprintf("config file %s already exists", view.Path)).
					WithContext("suggestedAction", "pass --force to overwrite it").
					Build())
			}

			cfg := config.DefaultConfig()
			cfg.AdminPassword = ""
			if err := cfg.Save(view.Path); err != nil {
				return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidPath, err.Error()).
					WithContext("path", view.Path).
					Build(), err)
			}

			out := a.output(cmd)
			out.Log("Configuration written to %s", view.Path)
			view.Exists = true
			view.Config = cfg
			return out.WriteSuccess("config init", view)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(showCmd, pathCmd, initCmd)
	return configCmd
}

// configView reports the file named by --config, or the default location
func (a *app) configView() (*configView, error) {
	path := a.flags.Config
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return nil, utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build(), err)
		}
	}
	_, err := os.Stat(path)
	return &configView{Path: path, Exists: !errors.Is(err, fs.ErrNotExist)}, nil
}
