package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/resolve"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the rating cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := ctx.client().CacheStats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd, response)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records:          %d\n", response.Stats.TotalRecords)
			fmt.Fprintf(out, "With provider id: %d\n", response.Stats.WithExternalID)
			if !response.Stats.NewestUpdate.IsZero() {
				fmt.Fprintf(out, "Newest update:    %s\n", response.Stats.NewestUpdate.Format(time.RFC3339))
			}
			if !response.Stats.OldestUpdate.IsZero() {
				fmt.Fprintf(out, "Oldest update:    %s\n", response.Stats.OldestUpdate.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the raw JSON response")
	return cmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached rating records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := ctx.client().CacheList(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd, response)
			}

			rows := make([][]string, len(response.Records))
			for i, record := range response.Records {
				rows[i] = []string{
					record.Key,
					resolve.DisplayTitle(record.Title),
					formatYear(record.Year),
					formatRating(record),
					formatVotes(record.VoteCount),
					record.UpdatedAt.Format(time.RFC3339),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Title", "Year", "Rating", "Votes", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of records to show (0 for all)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the raw JSON response")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached rating record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yesFlag {
				return fmt.Errorf("refusing to clear the cache without --yes")
			}
			if err := ctx.client().CacheClear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yesFlag, "yes", false, "Confirm clearing the cache")
	return cmd
}
