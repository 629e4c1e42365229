package cli

import (
	"github.com/dl-alexandre/gxlib/pkg/version"
	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "Print the version, commit and build information of gxlib",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			skipConfigAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.output(cmd).WriteSuccess("version", version.Get())
		},
	}
}
