package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthpage/internal/pipeline"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		age     int
		gender  string
		preview bool
		rawOut  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a personalized health tips page",
		Long: `Run the full pipeline for one profile and write the page to render.output_file.

Examples:
  healthpage generate --age 65 --gender male
  healthpage generate --age 16 --gender female --preview --raw-out raw.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, _, err := buildPipeline(cmd.Context(), func(b *pipeline.Builder) {
				if rawOut != "" {
					b.WithRawOutput(rawOut)
				}
				if noCache {
					b.WithoutCache()
				}
			})
			if err != nil {
				return err
			}
			defer orch.Close()

			res, err := orch.Run(cmd.Context(), pipeline.Request{Age: age, Gender: gender})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatResult(res, preview))
			return nil
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "Age of the reader (0-120)")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender of the reader (male or female)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Print the iframe preview snippet")
	cmd.Flags().StringVar(&rawOut, "raw-out", "", "Also save the unprocessed model output to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the caption and embedding caches")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("gender")

	return cmd
}
