package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Validate the manifest against its schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.inspectSession(cmd, func(_ context.Context, s *session) error {
				if err := s.validate(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "manifest is valid")
				return nil
			})
		},
	}
}
