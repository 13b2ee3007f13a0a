package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqgraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph and variant-table cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached graphs and variant tables",
		Long: `Delete the local cache directory's entries. A shared redis or mongo
cache is not cleared; entries there expire on their own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.config.Cache.Shared() {
				printWarning(c.out, "Cache is shared (%s); entries expire by TTL", sharedCacheURL(c.config.Cache.RedisURL, c.config.Cache.MongoURI))
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(c.out, "Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess(c.out, "Cleared %d cached entries", n)
			printDetail(c.out, "Directory: %s", dir)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory, or the shared cache URL when one is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.config.Cache.Shared() {
				fmt.Fprintln(c.out, sharedCacheURL(c.config.Cache.RedisURL, c.config.Cache.MongoURI))
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}

// sharedCacheURL returns the URL of the backend newCache would use.
func sharedCacheURL(redisURL, mongoURI string) string {
	if redisURL != "" {
		return redisURL
	}
	return mongoURI
}
