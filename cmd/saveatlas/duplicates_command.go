package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"saveatlas/internal/manifest"
	"saveatlas/internal/resource"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List games that share an identical manifest entry",
		Long: `List games that share an identical manifest entry.

Entries whose file paths carry a <game> or <base> placeholder are
skipped since those resolve differently per game. Matching groups
usually point at wiki articles that share a data page by mistake.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.inspectSession(cmd, func(_ context.Context, s *session) error {
				groups := map[string][]string{}

			games:
				for title, game := range s.manifest {
					for file := range game.Files {
						if strings.Contains(file, manifest.PlaceholderGame) ||
							strings.Contains(file, manifest.PlaceholderBase) {
							continue games
						}
					}
					key, err := resource.Marshal(game)
					if err != nil {
						return err
					}
					groups[string(key)] = append(groups[string(key)], title)
				}

				keys := make([]string, 0, len(groups))
				for key := range groups {
					keys = append(keys, key)
				}
				sort.Strings(keys)

				for _, key := range keys {
					titles := groups[key]
					if len(titles) < 2 {
						continue
					}
					sort.Strings(titles)

					lines := make([]string, 0, len(titles))
					for _, title := range titles {
						var pageID uint64
						if entry, ok := s.wiki.Get(title); ok {
							pageID = entry.PageID
						}
						lines = append(lines, fmt.Sprintf("[%d] %s", pageID, title))
					}
					fmt.Fprintf(cmd.OutOrStdout(), "\nSame manifest entry:\n  - %s\n", strings.Join(lines, "\n  - "))
				}
				return nil
			})
		},
	}
}
