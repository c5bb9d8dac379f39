package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthpage/internal/captions"
	"healthpage/internal/logger"
	"healthpage/internal/pipeline"
)

// NewCaptionsCmd creates the captions command
func NewCaptionsCmd() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "captions [dir]",
		Short: "Caption the images used for matching",
		Long: `Caption every .jpg, .jpeg and .png file in dir (default images.directory) with the
configured captioner and print the results. Captions are cached by file content, so a
later generate run reuses them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.Images.Directory
			if len(args) == 1 {
				dir = args[0]
			}

			builder := pipeline.NewBuilder(cfg)
			if noCache {
				builder.WithoutCache()
			}
			collector, closeFn, err := builder.BuildCollector(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					logger.Error("Failed to release captioning resources", err)
				}
			}()

			result, err := collector.Collect(cmd.Context(), dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🖼️  %d captioned images in %s", len(result), dir)))
			for _, asset := range captions.Assets(result) {
				fmt.Fprintf(out, "  %s\n    %s\n", asset.Path, mutedStyle.Render(asset.Caption))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Caption every image again")
	return cmd
}
