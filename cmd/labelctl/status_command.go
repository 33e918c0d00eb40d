package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon runtime information",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, status)
			}
			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"PID", fmt.Sprintf("%d", status.PID)},
				{"Database", status.DatabasePath},
				{"Lock file", status.LockFilePath},
				{"Lease timeout", status.LeaseTimeout},
				{"Uploads base", status.UploadsBase},
				{"Auth", yesNo(status.AuthConfigred)},
			}
			if status.StartedAt != "" {
				rows = append(rows, []string{"Started", status.StartedAt})
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <project-id>",
		Short: "Show per-project labeling progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			summary, err := ctx.client().stats(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, summary)
			}
			rows := [][]string{{
				fmt.Sprintf("%d", summary.ProjectID),
				fmt.Sprintf("%d", summary.Total),
				fmt.Sprintf("%d", summary.Labeled),
				fmt.Sprintf("%d", summary.Unlabeled),
				fmt.Sprintf("%d", summary.Leased),
			}}
			fmt.Fprintln(out, renderTable(
				[]string{"Project", "Total", "Labeled", "Unlabeled", "Leased"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight}))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
