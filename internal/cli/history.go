package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"codonvm/internal/store"
	"codonvm/internal/trace"
)

// runJSON is the --json shape of an archived run
type runJSON struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Genome       string    `json:"genome"`
	Mode         string    `json:"mode,omitempty"`
	Tokens       int       `json:"tokens"`
	Snapshots    int       `json:"snapshots"`
	Instructions int       `json:"instructions"`
	Fingerprint  string    `json:"fingerprint"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRunJSON(r store.Run) runJSON {
	return runJSON{
		ID:           r.ID,
		UUID:         r.UUID,
		Genome:       r.Genome,
		Mode:         r.Mode,
		Tokens:       r.Tokens,
		Snapshots:    r.Snapshots,
		Instructions: r.Instructions,
		Fingerprint:  r.Fingerprint,
		Error:        r.Error,
		CreatedAt:    r.CreatedAt,
	}
}

func addStoreFlag(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "run database (default: store.path or "+DefaultStorePath+")")
}

func (a *app) newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var runs []store.Run
			if fp, _ := cmd.Flags().GetString("fingerprint"); fp != "" {
				runs, err = s.FindByFingerprint(contextOf(cmd), fp)
			} else {
				limit, _ := cmd.Flags().GetInt("limit")
				runs, err = s.ListRuns(contextOf(cmd), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				rows := make([]runJSON, len(runs))
				for i, r := range runs {
					rows[i] = toRunJSON(r)
				}
				return writeJSON(out, rows)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tGENOME\tSNAPSHOTS\tINSTR\tFINGERPRINT\tWHEN\tRESULT")
			for _, r := range runs {
				result := "ok"
				if r.Failed() {
					result = r.Error
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.12s\t%s\t%s\n",
					r.ID, r.Genome, r.Snapshots, r.Instructions, r.Fingerprint,
					humanize.Time(r.CreatedAt), result)
			}
			return tw.Flush()
		},
	}
	addStoreFlag(cmd)
	cmd.Flags().IntP("limit", "n", 20, "number of runs to list, 0 for all")
	cmd.Flags().String("fingerprint", "", "only runs with this trace fingerprint")
	cmd.Flags().Bool("json", false, "print runs as JSON")
	return cmd
}

func (a *app) newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show RUN",
		Short: "Print the snapshot table of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			run, states, err := loadRun(contextOf(cmd), s, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %d %s (%s) %s\n", run.ID, run.Genome, run.UUID, humanize.Time(run.CreatedAt))
			if run.Failed() {
				fmt.Fprintf(out, "fault: %s\n", run.Error)
			}
			return trace.WriteTable(out, states)
		},
	}
	addStoreFlag(cmd)
	return cmd
}

func (a *app) newRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm RUN",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run ID %q", args[0])
			}
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteRun(contextOf(cmd), id)
		},
	}
	addStoreFlag(cmd)
	return cmd
}
