package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/pagination"
)

var (
	titleColor = color.New(color.Bold)
	dimColor   = color.New(color.Faint)
	errorColor = color.New(color.FgRed)
)

// newTable creates a borderless, left aligned table.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

// printListTable prints articles as a table
func printListTable(w io.Writer, items []articles.Article) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No articles to display.")
		return nil
	}

	table := newTable(w)
	table.Header([]string{"ID", "Published", "Site", "Title"})

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			articles.FormatTimestamp(item.PublishedAt),
			item.NewsSite,
			truncate(item.Title, 70),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// printListJSON prints articles in JSON format
func printListJSON(w io.Writer, items []articles.Article) error {
	if items == nil {
		items = []articles.Article{}
	}
	output := map[string]any{
		"items": items,
		"total": len(items),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(data))
	return nil
}

// printListCompact prints one article per line
func printListCompact(w io.Writer, items []articles.Article) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No articles to display.")
		return nil
	}

	for _, item := range items {
		fmt.Fprintf(w, "%d %s (%s)\n", item.ID, item.Title, item.NewsSite)
	}
	return nil
}

// printList prints articles in the named format.
func printList(w io.Writer, format string, items []articles.Article) error {
	switch format {
	case "table", "":
		return printListTable(w, items)
	case "json":
		return printListJSON(w, items)
	case "compact":
		return printListCompact(w, items)
	default:
		return fmt.Errorf("unknown format %q (want table, json or compact)", format)
	}
}

// printArticle prints the full article.
func printArticle(w io.Writer, d articles.ArticleDetail) {
	titleColor.Fprintln(w, d.Title)
	fmt.Fprintln(w, strings.Repeat("=", min(len(d.Title), 80)))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Site:      %s\n", d.NewsSite)
	if names := d.AuthorNames(); len(names) > 0 {
		fmt.Fprintf(w, "Authors:   %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "Published: %s\n", articles.FormatTimestamp(d.PublishedAt))
	if d.UpdatedAt != "" && d.UpdatedAt != d.PublishedAt {
		fmt.Fprintf(w, "Updated:   %s\n", articles.FormatTimestamp(d.UpdatedAt))
	}
	fmt.Fprintf(w, "URL:       %s\n", d.URL)
	dimColor.Fprintf(w, "ID:        %d\n", d.ID)

	if d.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wrapText(d.Summary, 80))
	}
}

// printRow prints the stored pagination row.
func printRow(w io.Writer, row *pagination.Row) error {
	if row == nil {
		fmt.Fprintln(w, "No pagination state stored; the next list starts from the beginning.")
		return nil
	}

	offset := "end of results"
	if row.Offset != nil {
		offset = strconv.Itoa(*row.Offset)
	}

	table := newTable(w)
	table.Header([]string{"Row", "Total", "Next Offset"})
	if err := table.Append([]string{
		strconv.FormatInt(row.ID, 10),
		strconv.FormatInt(row.Count, 10),
		offset,
	}); err != nil {
		return err
	}
	return table.Render()
}

// printError prints a failed outcome's error.
func printError(w io.Writer, err *outcome.Error) {
	if err == nil {
		return
	}
	errorColor.Fprintf(w, "Error %s: %s\n", err.Code, err.Message)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// wrapText wraps text to a maximum line width
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n")
}
