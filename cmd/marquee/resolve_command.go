package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/ratings"
	"marquee/internal/resolve"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var keyFlag string
	var typeFlag string
	var verifyFlag float64
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "resolve TITLE...",
		Short: "Resolve titles to rating records through the daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyFlag != "" && len(args) > 1 {
				return errors.New("--key is only valid with a single title")
			}

			items := make([]api.BatchItem, len(args))
			for i, title := range args {
				item := api.BatchItem{Key: title, Title: title, EntityType: typeFlag}
				if keyFlag != "" {
					item.Key = keyFlag
				}
				if cmd.Flags().Changed("verify") {
					rating := verifyFlag
					item.VerificationRating = &rating
				}
				items[i] = item
			}

			response, err := ctx.client().ResolveBatch(cmd.Context(), items)
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd, response)
			}

			rows := make([][]string, len(response.Results))
			for i, entry := range response.Results {
				rows[i] = resolveRow(entry)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Title", "Year", "Rating", "Critic", "Votes", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			if response.StoreError != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: results were not persisted: %s\n", response.StoreError)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keyFlag, "key", "", "Stable cache key for the title (defaults to the title itself)")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Entity type hint: movie or series")
	cmd.Flags().Float64Var(&verifyFlag, "verify", 0, "Independently observed rating used to sanity-check the match")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the raw JSON response")
	return cmd
}

func resolveRow(entry api.ResolutionEntry) []string {
	if entry.Data == nil {
		return []string{entry.Key, "", "", "", "", "", "error: " + entry.Error}
	}
	record := entry.Data
	return []string{
		entry.Key,
		resolve.DisplayTitle(record.Title),
		formatYear(record.Year),
		formatRating(*record),
		record.SecondaryRating,
		formatVotes(record.VoteCount),
		entry.Source,
	}
}

func formatYear(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func formatRating(record ratings.Record) string {
	if !record.HasRating() {
		return ""
	}
	return strconv.FormatFloat(record.Rating, 'f', 1, 64)
}

func formatVotes(votes int64) string {
	if votes <= 0 {
		return ""
	}
	return strconv.FormatInt(votes, 10)
}
