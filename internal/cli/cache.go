package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/cache"
)

// cacheCommand groups the cache maintenance subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
		Long: `Manage the on-disk cache of layouts and rendered artifacts.

Layouts are keyed by graph content and layout options, artifacts by layout
and style options. Entries expire on their own; clear removes them now.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached layouts and renderings",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCacheDir(func(dir string, fc *cache.FileCache) error {
					n, err := fc.Clear()
					if err != nil {
						return err
					}
					printSuccess("Cleared %s", count(n, "cached entry", "cached entries"))
					printDetail("Directory: %s", dir)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show the cache size",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCacheDir(func(dir string, fc *cache.FileCache) error {
					n, size, err := fc.Usage()
					if err != nil {
						return err
					}
					printKeyValue("Directory", dir)
					printKeyValue("Entries", fmt.Sprintf("%d", n))
					printKeyValue("Size", humanBytes(size))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory path",
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

// withCacheDir opens the cache directory, reporting an empty cache when it
// does not exist yet.
func withCacheDir(fn func(dir string, fc *cache.FileCache) error) error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	return fn(dir, fc)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
