package cli

import (
	"os"

	"github.com/dl-alexandre/gxlib/internal/api"
	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/spf13/cobra"
)

// aboutInfo describes the Galaxy server and account an import would use
type aboutInfo struct {
	GalaxyURL      string `json:"galaxyUrl"`
	ServerVersion  string `json:"serverVersion"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	PasswordSource string `json:"passwordSource"`
	DataDir        string `json:"dataDir"`
	DataDirExists  bool   `json:"dataDirExists"`
}

func (i *aboutInfo) Headers() []string {
	return []string{"Key", "Value"}
}

func (i *aboutInfo) Rows() [][]string {
	exists := "yes"
	if !i.DataDirExists {
		exists = "no"
	}
	return [][]string{
		{"galaxy", i.GalaxyURL},
		{"version", i.ServerVersion},
		{"user", i.Username + " <" + i.Email + ">"},
		{"password source", i.PasswordSource},
		{"data dir", i.DataDir},
		{"data dir exists", exists},
	}
}

func (i *aboutInfo) EmptyMessage() string {
	return ""
}

func newAboutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Check the Galaxy server and admin credentials",
		Long: `Contact the configured Galaxy server, report its version and log in with
the admin credentials without changing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			resolvePassword(cfg, a.passwords, a.logger)

			httpClient := a.httpClient()
			client := api.NewClient(cfg.GalaxyURL, a.tokenSource(ctx, httpClient), httpClient, a.logger)

			v, err := client.Version(ctx)
			if err != nil {
				return err
			}
			user, err := client.WhoAmI(ctx)
			if err != nil {
				return err
			}
			a.logger.Debug("Galaxy reachable",
				logging.F("version", v.String()),
				logging.F("user", user.Email),
			)

			info, statErr := os.Stat(cfg.DataDir)
			return a.output(cmd).WriteSuccess("about", &aboutInfo{
				GalaxyURL:      cfg.GalaxyURL,
				ServerVersion:  v.String(),
				Email:          user.Email,
				Username:       user.Username,
				PasswordSource: cfg.PasswordSource,
				DataDir:        cfg.DataDir,
				DataDirExists:  statErr == nil && info.IsDir(),
			})
		},
	}
}
