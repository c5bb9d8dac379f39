package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"healthpage/internal/normalize"
	"healthpage/internal/pipeline"
)

// NewNormalizeCmd creates the normalize command
func NewNormalizeCmd() *cobra.Command {
	var (
		age     int
		gender  string
		output  string
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "normalize <raw-file>",
		Short: "Extract and normalize a saved model response",
		Long: `Apply extraction, the HTML validity gate and the normalization passes to raw
model output saved earlier, without fetching tips or calling any model.

The profile selects the page title and palette.

Examples:
  healthpage normalize raw.html --age 65 --gender male
  healthpage normalize raw.html --age 30 --gender female -o page.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			unmatched, err := normalize.ParseUnmatchedPolicy(cfg.Render.UnmatchedContent)
			if err != nil {
				return err
			}

			pc := pipeline.DefaultConfig()
			pc.OutputPath = cfg.Render.OutputFile
			if output != "" {
				pc.OutputPath = output
			}
			pc.ImageWidth = cfg.Render.ImageWidth
			pc.Unmatched = unmatched
			pc.MarkdownExport = cfg.Render.MarkdownExport

			orch := pipeline.NewOrchestrator(nil, nil, nil, nil, nil, pc)
			res, err := orch.Render(cmd.Context(), pipeline.Request{Age: age, Gender: gender}, string(raw))
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatResult(res, preview))
			return nil
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "Age of the reader (0-120)")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender of the reader (male or female)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default render.output_file)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Print the iframe preview snippet")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("gender")

	return cmd
}
