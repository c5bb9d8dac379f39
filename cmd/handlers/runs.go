package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"healthpage/internal/store"
)

// NewRunsCmd creates the command that lists recorded runs
func NewRunsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List recent runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				out := cmd.OutOrStdout()

				if len(args) == 1 {
					run, err := s.GetRun(args[0])
					if err != nil {
						return err
					}
					if run == nil {
						return fmt.Errorf("run %s not found", args[0])
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(run)
				}

				runs, err := s.ListRuns(limit)
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(out).Encode(runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, mutedStyle.Render("No runs recorded yet."))
					return nil
				}
				for _, r := range runs {
					fmt.Fprintf(out, "%s  %s  %3d %-6s  %-16s %s\n",
						r.CreatedAt.Local().Format("2006-01-02 15:04"),
						mutedStyle.Render(r.ID[:min(8, len(r.ID))]),
						r.Age, r.Gender, r.Status, r.OutputPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}
