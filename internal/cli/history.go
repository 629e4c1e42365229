package cli

import (
	"strconv"
	"time"

	"github.com/dl-alexandre/gxlib/internal/history"
	"github.com/dl-alexandre/gxlib/internal/utils"
	"github.com/spf13/cobra"
)

type runTable []history.Run

func (t runTable) Headers() []string {
	return []string{"Run", "Started", "Status", "Library", "Deleted", "Error"}
}

func (t runTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.LibraryID,
			strconv.Itoa(len(r.DeletedLibraries)),
			truncate(r.Error, 50),
		})
	}
	return rows
}

func (t runTable) EmptyMessage() string {
	return "No runs recorded"
}

type folderTable []history.Folder

func (t folderTable) Headers() []string {
	return []string{"Folder", "Folder ID", "Files"}
}

func (t folderTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, f := range t {
		rows = append(rows, []string{f.Path, f.FolderID, strconv.Itoa(f.FileCount)})
	}
	return rows
}

func (t folderTable) EmptyMessage() string {
	return "No folders recorded for this run"
}

func newHistoryCommand(a *app) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded import runs",
		Long: `List the runs recorded in the history database (--history-db or
history_db in the config file). With --run, list the folders one run created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.HistoryDB == "" {
				return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
					"no history database configured").
					WithContext("suggestedAction", "pass --history-db or set history_db in the config file").
					Build())
			}
			db, err := history.Open(a.cfg.HistoryDB)
			if err != nil {
				return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeInvalidPath, err.Error()).Build(), err)
			}
			defer db.Close()

			out := a.output(cmd)
			if runID != "" {
				folders, err := db.ListFolders(cmd.Context(), runID)
				if err != nil {
					return err
				}
				return out.WriteSuccess("history", folderTable(folders))
			}
			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return out.WriteSuccess("history", runTable(runs))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the folders created by this run")
	return cmd
}
