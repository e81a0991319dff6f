package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"saveatlas/internal/steam"
	"saveatlas/internal/wiki"
)

func newIrregularCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "irregular",
		Short: "List cached records with unparseable data",
		Long: `List cached records with unparseable data.

Wiki articles whose save templates use unknown macros or do not parse,
and storefront records carrying unrecognized cloud-save fields, need a
human to look at the source page before the data can be trusted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.inspectSession(cmd, func(_ context.Context, s *session) error {
				var rows [][]string

				mapper := s.wiki.Mapper()
				s.wiki.Each(func(title string, entry *wiki.Entry) {
					var reasons []string
					if entry.Malformed {
						reasons = append(reasons, "malformed")
					}
					if entry.AnyIrregularPaths(mapper) {
						reasons = append(reasons, "irregular paths")
					}
					if len(reasons) > 0 {
						rows = append(rows, []string{"wiki", title, strings.Join(reasons, ", ")})
					}
				})

				s.steam.Each(func(appID uint32, entry *steam.Entry) {
					if entry.Irregular {
						rows = append(rows, []string{"steam", strconv.FormatUint(uint64(appID), 10), "unrecognized fields"})
					}
				})

				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "no irregular records")
					return nil
				}

				fmt.Fprintln(out, renderTable(
					[]string{"Source", "Record", "Problem"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}
