package main

import (
	"context"

	"github.com/spf13/cobra"

	"saveatlas/internal/steam"
	"saveatlas/internal/wiki"
)

func newSoloCommand(ctx *commandContext) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "solo [title]...",
		Short: "Rebuild specific games",
		Long: `Rebuild specific games.

Each named article is re-fetched along with its storefront record, then
the manifest is regenerated. With --local the fetches are skipped and
the manifest is rebuilt from cached data only. With no titles the
manifest is rebuilt for every cached game.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(runCtx context.Context, s *session) error {
				if !local && len(args) > 0 {
					if err := s.wiki.Refresh(runCtx, wiki.RefreshOptions{Titles: args}); err != nil {
						return err
					}

					var appIDs []uint32
					for _, title := range args {
						if entry, ok := s.wiki.Get(title); ok && entry.Steam != 0 {
							appIDs = append(appIDs, entry.Steam)
						}
					}
					s.steam.TransitionStatesFrom(s.wiki)
					if len(appIDs) > 0 {
						if err := s.steam.Refresh(runCtx, steam.RefreshOptions{AppIDs: appIDs}); err != nil {
							return err
						}
					}
				}

				return s.rebuild()
			})
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Rebuild from cached data without fetching")

	return cmd
}
