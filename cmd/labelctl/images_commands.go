package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"labeld/internal/api"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Import, inspect, and manage images",
	}

	imagesCmd.AddCommand(newImagesImportCommand(ctx))
	imagesCmd.AddCommand(newImagesStubCommand(ctx))
	imagesCmd.AddCommand(newImagesListCommand(ctx))
	imagesCmd.AddCommand(newImagesLabeledCommand(ctx))
	imagesCmd.AddCommand(newImagesUnlabeledCommand(ctx))
	imagesCmd.AddCommand(newImagesShowCommand(ctx))
	imagesCmd.AddCommand(newImagesFindCommand(ctx))
	imagesCmd.AddCommand(newImagesDeleteCommand(ctx))
	imagesCmd.AddCommand(newImagesMoveCommand(ctx))
	imagesCmd.AddCommand(newImagesRehomeCommand(ctx))

	return imagesCmd
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}

func parseIDs(args []string, what string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg, what)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newImagesImportCommand(ctx *commandContext) *cobra.Command {
	var callback string

	cmd := &cobra.Command{
		Use:   "import <project-id> <url>...",
		Short: "Register images by URL",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			req := api.ImportRequest{}
			if strings.TrimSpace(callback) != "" {
				for _, url := range args[1:] {
					req.Entries = append(req.Entries, api.ImportEntry{URL: url, CallbackURL: callback})
				}
			} else {
				req.URLs = args[1:]
			}

			result, err := ctx.client().importImages(cmd.Context(), projectID, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, result)
			}
			fmt.Fprint(out, batchReport(out, result))
			return nil
		},
	}

	cmd.Flags().StringVar(&callback, "callback", "", "Callback URL recorded for every imported image")
	return cmd
}

func newImagesStubCommand(ctx *commandContext) *cobra.Command {
	var localPath string

	cmd := &cobra.Command{
		Use:   "stub <project-id> <filename>",
		Short: "Register an image whose file already sits on daemon-local disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			image, err := ctx.client().registerStub(cmd.Context(), projectID,
				api.StubRequest{Filename: args[1], LocalPath: localPath})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, image)
			}
			fmt.Fprintf(out, "Created image %d with link %s\n", image.ID, image.Link)
			return nil
		},
	}

	cmd.Flags().StringVar(&localPath, "local-path", "", "Path of the file on the daemon host")
	return cmd
}

func newImagesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List every image in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			images, err := ctx.client().list(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, images)
			}
			fmt.Fprintln(out, imageTable(out, images))
			return nil
		},
	}
}

func newImagesLabeledCommand(ctx *commandContext) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "labeled <project-id>",
		Short: "List completed images, most recently edited first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			images, err := ctx.client().listLabeled(cmd.Context(), projectID, page, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, images)
			}
			fmt.Fprintln(out, imageTable(out, images))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 50, "Images per page")
	return cmd
}

func newImagesUnlabeledCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "unlabeled <project-id>",
		Short: "List the pending labeling queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			stubs, err := ctx.client().listUnlabeled(cmd.Context(), projectID, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, stubs)
			}
			rows := make([][]string, 0, len(stubs))
			for _, stub := range stubs {
				rows = append(rows, []string{fmt.Sprintf("%d", stub.ID), stub.ExternalLink})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Source"}, rows,
				[]columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows")
	return cmd
}

func newImagesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <image-id>",
		Short: "Show one image including its label document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := parseID(args[0], "image id")
			if err != nil {
				return err
			}
			image, err := ctx.client().describe(cmd.Context(), imageID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), image)
		},
	}
}

func newImagesFindCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "find <project-id> <original-name>",
		Short: "Find an image by its original file name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			image, err := ctx.client().lookup(cmd.Context(), projectID, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), image)
		},
	}
}

func newImagesDeleteCommand(ctx *commandContext) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "delete <image-id>...",
		Short: "Delete images; with --project, one scoped bulk statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "image id")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if projectID > 0 {
				deleted, err := ctx.client().deleteByIDs(cmd.Context(), projectID, ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %d of %d images from project %d\n", deleted, len(ids), projectID)
				return nil
			}

			for _, id := range ids {
				if err := ctx.client().deleteImage(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted image %d\n", id)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Scope the delete to this project")
	return cmd
}

func newImagesMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <old-project-id> <new-project-id> <image-id>...",
		Short: "Move images between projects",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldProjectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			newProjectID, err := parseID(args[1], "project id")
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[2:], "image id")
			if err != nil {
				return err
			}

			moved, err := ctx.client().move(cmd.Context(), oldProjectID,
				api.MoveRequest{IDs: ids, NewProjectID: newProjectID})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d of %d images to project %d\n", moved, len(ids), newProjectID)
			return nil
		},
	}
}

func newImagesRehomeCommand(ctx *commandContext) *cobra.Command {
	var callback string

	cmd := &cobra.Command{
		Use:   "rehome <project-id> <image-id>=<url>...",
		Short: "Re-home existing images onto a project with fresh provenance",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			req := api.RehomeRequest{}
			for _, arg := range args[1:] {
				idPart, url, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected <image-id>=<url>, got %q", arg)
				}
				id, err := parseID(idPart, "image id")
				if err != nil {
					return err
				}
				req.Entries = append(req.Entries, api.RehomeEntry{ID: id, URL: url, CallbackURL: callback})
			}

			result, err := ctx.client().rehome(cmd.Context(), projectID, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.jsonOutput() {
				return printJSON(out, result)
			}
			fmt.Fprint(out, batchReport(out, result))
			return nil
		},
	}

	cmd.Flags().StringVar(&callback, "callback", "", "Callback URL recorded for every re-homed image")
	return cmd
}
