package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/islandlink/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the solution and plot cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached solutions and plots",
		Long: `Remove all entries from the file cache. Redis entries expire on their
own and are not touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != cache.BackendFile {
				printInfo("Cache backend is %s; nothing to clear", c.Config.Cache.Backend)
				return nil
			}
			fc, err := cache.NewFileCache(c.Config.Cache.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Dir == "" {
				return fmt.Errorf("no cache directory configured")
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Config.Cache.Dir)
			return nil
		},
	}
}
