package handlers

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"healthpage/internal/logger"
	"healthpage/internal/store"
)

// NewCacheCmd creates the cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the caption and embedding cache",
		Long:  `Inspect, clean, and manage the SQLite cache for image captions and text embeddings.`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())
	cacheCmd.AddCommand(newCacheCleanupCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics and storage information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				stats, err := s.GetCacheStats()
				if err != nil {
					return fmt.Errorf("failed to get cache statistics: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, headerStyle.Render("📊 Cache Statistics"))
				fmt.Fprintf(out, "🖼️  Captions cached: %d\n", stats.CaptionCount)
				fmt.Fprintf(out, "🔢 Embeddings cached: %d\n", stats.EmbeddingCount)
				fmt.Fprintf(out, "📄 Runs recorded: %d\n", stats.RunCount)
				fmt.Fprintf(out, "💾 Cache size: %.2f MB\n", float64(stats.CacheSize)/1024/1024)
				if !stats.LastUpdated.IsZero() {
					fmt.Fprintf(out, "📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintln(out, mutedStyle.Render(s.Path()))
				return nil
			})
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached captions and embeddings (run history is kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				fmt.Fprint(cmd.OutOrStdout(), "⚠️  This will remove all cached captions and embeddings. Continue? [y/N]: ")
				response, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				response = strings.ToLower(strings.TrimSpace(response))
				if response != "y" && response != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache clear cancelled")
					return nil
				}
			}

			return withStore(func(s *store.Store) error {
				if err := s.ClearCache(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Cache cleared successfully"))
				return nil
			})
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func newCacheCleanupCmd() *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove cache entries older than --max-age",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.Store) error {
				if err := s.CleanupOldCache(maxAge); err != nil {
					return fmt.Errorf("failed to clean up cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Removed entries older than "+maxAge.String()))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 30*24*time.Hour, "Maximum age of cache entries to keep")
	return cmd
}

// withStore opens the configured cache database for the duration of fn.
func withStore(fn func(*store.Store) error) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	s, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		return fmt.Errorf("failed to initialize cache store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	return fn(s)
}
