package handlers

import (
	"github.com/spf13/cobra"

	"healthpage/internal/tui"
)

// NewFormCmd creates the terminal form command
func NewFormCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Launch the terminal form",
		Long:  `Enter age and gender in an interactive terminal form and generate the page from there.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := buildPipeline(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer orch.Close()

			return tui.Start(cmd.Context(), orch)
		},
	}
}
