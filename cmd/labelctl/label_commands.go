package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLabelCommand(ctx *commandContext) *cobra.Command {
	labelCmd := &cobra.Command{
		Use:   "label",
		Short: "Submit label documents and manage completion state",
	}

	labelCmd.AddCommand(newLabelSubmitCommand(ctx))
	labelCmd.AddCommand(newLabelDoneCommand(ctx))
	labelCmd.AddCommand(newLabelReopenCommand(ctx))

	return labelCmd
}

// readDocument accepts an inline JSON object, @file, or "-" for stdin.
func readDocument(arg string, stdin io.Reader) (json.RawMessage, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read document from stdin: %w", err)
		}
		return json.RawMessage(data), nil
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("read document file: %w", err)
		}
		return json.RawMessage(data), nil
	default:
		return json.RawMessage(arg), nil
	}
}

func newLabelSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <image-id> <document|@file|->",
		Short: "Save a label document, renewing the image's lease",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := parseID(args[0], "image id")
			if err != nil {
				return err
			}
			doc, err := readDocument(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := ctx.client().submitLabel(cmd.Context(), imageID, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved label for image %d\n", imageID)
			return nil
		},
	}
}

func newLabelDoneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "done <image-id>",
		Short: "Mark an image labeled, removing it from the allocation pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := parseID(args[0], "image id")
			if err != nil {
				return err
			}
			if err := ctx.client().setLabeled(cmd.Context(), imageID, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image %d marked labeled\n", imageID)
			return nil
		},
	}
}

func newLabelReopenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <image-id>",
		Short: "Clear the labeled flag so the image can be allocated again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := parseID(args[0], "image id")
			if err != nil {
				return err
			}
			if err := ctx.client().setLabeled(cmd.Context(), imageID, false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image %d reopened\n", imageID)
			return nil
		},
	}
}
