package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/listing"
	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func sampleArticles() []articles.Article {
	return []articles.Article{
		{ID: 101, Title: "Starship flies again", NewsSite: "SpaceNews", PublishedAt: "2024-03-14T15:09:26Z"},
		{ID: 102, Title: "Artemis update", NewsSite: "NASA", PublishedAt: "2024-03-15T08:00:00Z"},
	}
}

// TestWrapText verifies words are wrapped at the width without splitting
// them.
func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox jumps over the lazy dog", 15)
	assert.Equal(t, "the quick brown\nfox jumps over\nthe lazy dog", got)

	assert.Equal(t, "", wrapText("", 10))
	assert.Equal(t, "unbreakableword", wrapText("unbreakableword", 5))
}

// TestTruncate verifies long strings are cut with an ellipsis.
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

// TestPrintListTable verifies every article appears in the table.
func TestPrintListTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printList(&buf, "table", sampleArticles()))

	out := buf.String()
	assert.Contains(t, out, "101")
	assert.Contains(t, out, "Starship flies again")
	assert.Contains(t, out, "NASA")
	assert.Contains(t, out, "14/03/2024 03:09 PM")
}

// TestPrintListJSON verifies the JSON output carries the items and their
// count.
func TestPrintListJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printList(&buf, "json", sampleArticles()))

	var out struct {
		Items []articles.Article `json:"items"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, sampleArticles(), out.Items)
}

// TestPrintListCompact verifies one line per article.
func TestPrintListCompact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printList(&buf, "compact", sampleArticles()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "101 Starship flies again (SpaceNews)", lines[0])
}

// TestPrintList_Empty verifies the empty message for text formats.
func TestPrintList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printList(&buf, "compact", nil))
	assert.Equal(t, "No articles to display.\n", buf.String())

	buf.Reset()
	require.NoError(t, printList(&buf, "json", nil))
	assert.Contains(t, buf.String(), `"items": []`)
}

// TestPrintList_UnknownFormat verifies an unknown format is rejected.
func TestPrintList_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := printList(&buf, "yaml", sampleArticles())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
	assert.Empty(t, buf.String())
}

// TestPrintArticle verifies the detail view shows authors, timestamps and
// the wrapped summary.
func TestPrintArticle(t *testing.T) {
	var buf bytes.Buffer
	printArticle(&buf, articles.ArticleDetail{
		ID:          7,
		Title:       "Launch",
		Authors:     []articles.Author{{Name: "Ada"}, {Name: "Grace"}},
		URL:         "https://example.com/launch",
		NewsSite:    "SpaceNews",
		Summary:     "Liftoff happened on time.",
		PublishedAt: "2024-03-14T15:09:26Z",
		UpdatedAt:   "2024-03-14T16:00:00Z",
	})

	out := buf.String()
	assert.Contains(t, out, "Launch\n======")
	assert.Contains(t, out, "Authors:   Ada, Grace")
	assert.Contains(t, out, "Published: 14/03/2024 03:09 PM")
	assert.Contains(t, out, "Updated:   14/03/2024 04:00 PM")
	assert.Contains(t, out, "ID:        7")
	assert.Contains(t, out, "Liftoff happened on time.")
}

// TestPrintRow verifies both a stored offset and the end of results.
func TestPrintRow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRow(&buf, nil))
	assert.Contains(t, buf.String(), "No pagination state stored")

	offset := 20
	buf.Reset()
	require.NoError(t, printRow(&buf, &pagination.Row{ID: 3, Count: 120, Offset: &offset}))
	assert.Contains(t, buf.String(), "120")
	assert.Contains(t, buf.String(), "20")

	buf.Reset()
	require.NoError(t, printRow(&buf, &pagination.Row{ID: 4, Count: 120}))
	assert.Contains(t, buf.String(), "end of results")
}

// TestPrintError verifies the code and message are printed.
func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, &outcome.Error{Code: "408", Message: "timeout"})
	assert.Equal(t, "Error 408: timeout\n", buf.String())

	buf.Reset()
	printError(&buf, nil)
	assert.Empty(t, buf.String())
}

// TestSnapshotPrinter_AppendsOnlyNewItems verifies a load more prints only
// the articles it added.
func TestSnapshotPrinter_AppendsOnlyNewItems(t *testing.T) {
	var out, errOut bytes.Buffer
	printer := snapshotPrinter(&out, &errOut, "compact")

	items := sampleArticles()
	printer(listing.Snapshot{Phase: listing.PhaseLoading})
	printer(listing.Snapshot{Phase: listing.PhaseSuccess, Items: items[:1]})
	assert.Equal(t, "101 Starship flies again (SpaceNews)\n", out.String())

	out.Reset()
	printer(listing.Snapshot{Phase: listing.PhaseLoading, Appending: true, Items: items[:1]})
	printer(listing.Snapshot{Phase: listing.PhaseSuccess, Items: items})
	assert.Equal(t, "102 Artemis update (NASA)\n", out.String())

	out.Reset()
	printer(listing.Snapshot{Phase: listing.PhaseLoading, Appending: true, Items: items})
	printer(listing.Snapshot{Phase: listing.PhaseSuccess, Items: items})
	assert.Equal(t, "No more articles.\n", out.String())

	assert.Contains(t, errOut.String(), "Loading...")
}

// TestSnapshotPrinter_Error verifies failures go to the error writer.
func TestSnapshotPrinter_Error(t *testing.T) {
	var out, errOut bytes.Buffer
	printer := snapshotPrinter(&out, &errOut, "compact")

	printer(listing.Snapshot{Phase: listing.PhaseError, Err: &outcome.Error{Code: "5", Message: "no network connection"}})
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error 5: no network connection")
}
