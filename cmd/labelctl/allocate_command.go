package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAllocateCommand(ctx *commandContext) *cobra.Command {
	var imageID int64

	cmd := &cobra.Command{
		Use:   "allocate <project-id>",
		Short: "Reserve the next unlabeled image for labeling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			lease, err := ctx.client().allocate(cmd.Context(), projectID, imageID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if lease == nil {
				fmt.Fprintln(out, "No eligible images; everything is labeled or currently leased.")
				return nil
			}
			if ctx.jsonOutput() {
				return printJSON(out, lease)
			}
			fmt.Fprintf(out, "Leased image %d in project %d (stamped %s)\n",
				lease.ImageID, lease.ProjectID, lease.LastEdited)
			return nil
		},
	}

	cmd.Flags().Int64Var(&imageID, "image", 0, "Reserve a specific image instead of scanning")
	return cmd
}
