package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"

	"labeld/internal/api"
	"labeld/internal/naming"
)

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func colorize(w io.Writer, color text.Color, value string) string {
	if !shouldColorize(w) {
		return value
	}
	return color.Sprint(value)
}

func formatLink(image api.Image) string {
	if image.Link != "" && image.Link != "stub" {
		return image.Link
	}
	if image.ExternalLink != "" {
		return image.ExternalLink
	}
	return image.Link
}

func labeledMark(w io.Writer, labeled bool) string {
	if labeled {
		return colorize(w, text.FgGreen, "yes")
	}
	return colorize(w, text.FgYellow, "no")
}

func imageTable(w io.Writer, images []api.Image) string {
	rows := make([][]string, 0, len(images))
	for _, image := range images {
		rows = append(rows, []string{
			fmt.Sprintf("%d", image.ID),
			image.OriginalName,
			formatLink(image),
			labeledMark(w, image.Labeled),
			image.LastEdited,
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Link", "Labeled", "Last Edited"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func batchReport(w io.Writer, result api.BatchResult) string {
	out := fmt.Sprintf("Batch %s: %d created, %d failed\n", result.BatchID, len(result.Created), len(result.Failed))
	rows := make([][]string, 0, len(result.Created))
	for _, created := range result.Created {
		rows = append(rows, []string{
			fmt.Sprintf("%d", created.ID),
			created.Name,
			naming.DisplayName(created.Name),
			created.Link,
		})
	}
	if len(rows) > 0 {
		out += renderTable([]string{"ID", "Name", "Title", "Link"}, rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}) + "\n"
	}
	for _, failed := range result.Failed {
		out += colorize(w, text.FgRed, fmt.Sprintf("failed [%d] %s: %s\n", failed.Index, failed.URL, failed.Error))
	}
	return out
}
