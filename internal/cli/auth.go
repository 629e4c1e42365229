package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dl-alexandre/gxlib/internal/auth"
	"github.com/dl-alexandre/gxlib/internal/config"
	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// authStatus is the result of the auth commands
type authStatus struct {
	Email          string `json:"email"`
	PasswordSource string `json:"passwordSource"`
	Stored         bool   `json:"stored"`
	Backend        string `json:"backend"`
}

func (s *authStatus) String() string {
	stored := "no"
	if s.Stored {
		stored = "yes"
	}
	return fmt.Sprintf("email: %s\npassword source: %s\nstored in %s: %s", s.Email, s.PasswordSource, s.Backend, stored)
}

func newAuthCommand(a *app) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored Galaxy admin password",
		Long: `Store the Galaxy admin password in the OS keyring.

The stored password is used only when neither GALAXY_DEFAULT_ADMIN_PASSWORD
nor the config file provides one.`,
	}

	var fromStdin bool
	setCmd := &cobra.Command{
		Use:   "set-password",
		Short: "Store the admin password in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, fromStdin)
			if err != nil {
				return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build(), err)
			}
			if err := a.passwords.Set(a.cfg.AdminEmail, password); err != nil {
				return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeAuthRequired, err.Error()).
					WithContext("backend", a.passwords.Name()).
					Build(), err)
			}
			a.logger.Info("Stored admin password", logging.F("email", a.cfg.AdminEmail))
			return a.output(cmd).WriteSuccess("auth set-password", a.authStatus())
		},
	}
	setCmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "Read the password from standard input")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored admin password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := a.output(cmd)
			err := a.passwords.Delete(a.cfg.AdminEmail)
			switch {
			case errors.Is(err, auth.ErrNotFound):
				out.AddWarning("NOT_STORED", "no password was stored for "+a.cfg.AdminEmail, "info")
			case err != nil:
				return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeAuthRequired, err.Error()).
					WithContext("backend", a.passwords.Name()).
					Build(), err)
			}
			return out.WriteSuccess("auth clear", a.authStatus())
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the admin password comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.output(cmd).WriteSuccess("auth status", a.authStatus())
		},
	}

	authCmd.AddCommand(setCmd, clearCmd, statusCmd)
	return authCmd
}

func (a *app) authStatus() *authStatus {
	stored := auth.LookupPassword(a.passwords, a.cfg.AdminEmail) != ""
	source := a.cfg.PasswordSource
	if source == config.SourceDefault && stored {
		source = config.SourceKeyring
	}
	return &authStatus{
		Email:          a.cfg.AdminEmail,
		PasswordSource: source,
		Stored:         stored,
		Backend:        a.passwords.Name(),
	}
}

// readPassword prompts without echo on a terminal, otherwise reads one line
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Galaxy admin password: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return validatePassword(string(secret))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return validatePassword(strings.TrimRight(line, "\r\n"))
}

func validatePassword(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("password must not be empty")
	}
	return secret, nil
}
