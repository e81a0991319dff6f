package main

import (
	"context"

	"github.com/spf13/cobra"

	"saveatlas/internal/steam"
	"saveatlas/internal/wiki"
)

func newBulkCommand(ctx *commandContext) *cobra.Command {
	var (
		full          bool
		recentChanges bool
		missingPages  bool
		limit         int
		from          string
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Refresh the caches and rebuild the manifest",
		Long: `Refresh the caches and rebuild the manifest.

The default pass re-fetches every article flagged outdated, pulls
storefront data for the affected apps, and regenerates the manifest.
Use --recent-changes to flag articles edited since the last checkpoint
first, and --full to re-fetch everything regardless of staleness.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				if recentChanges {
					if err := s.wiki.FlagRecentChanges(runCtx, s.meta); err != nil {
						return err
					}
				}
				if missingPages {
					if err := s.wiki.AddNewArticles(runCtx); err != nil {
						return err
					}
				}

				if err := s.wiki.Refresh(runCtx, wiki.RefreshOptions{
					OutdatedOnly: !full,
					Limit:        limit,
					From:         from,
				}); err != nil {
					return err
				}

				s.steam.TransitionStatesFrom(s.wiki)
				if err := s.steam.Refresh(runCtx, steam.RefreshOptions{
					OutdatedOnly: !full,
				}); err != nil {
					return err
				}

				return s.rebuild()
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Re-fetch every article instead of only outdated ones")
	cmd.Flags().BoolVar(&recentChanges, "recent-changes", false, "Scan recent wiki changes before refreshing")
	cmd.Flags().BoolVar(&missingPages, "missing-pages", false, "Walk the games category for articles the cache lacks")
	cmd.Flags().IntVar(&limit, "limit", 0, "Cap the number of articles refreshed (0 means no cap)")
	cmd.Flags().StringVar(&from, "from", "", "Resume the refresh at the given title")

	return cmd
}
