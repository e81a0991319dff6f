package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the manifest and caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.inspectSession(cmd, func(_ context.Context, s *session) error {
				documented := 0
				for _, game := range s.manifest {
					if len(game.Files) > 0 || len(game.Registry) > 0 {
						documented++
					}
				}

				out := cmd.OutOrStdout()
				undocumented := strconv.Itoa(len(s.manifest) - documented)
				if shouldColorize(out) {
					undocumented = text.FgYellow.Sprint(undocumented)
				}

				rows := [][]string{
					{"Games in manifest", strconv.Itoa(len(s.manifest))},
					{"With files or registry", strconv.Itoa(documented)},
					{"Without files or registry", undocumented},
					{"Games in wiki cache", strconv.Itoa(s.wiki.Len())},
					{"Apps in steam cache", strconv.Itoa(s.steam.Len())},
				}

				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}
