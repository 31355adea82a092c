package articles

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PublishedLayout is the timestamp layout the API uses.
const PublishedLayout = "2006-01-02T15:04:05Z"

// DisplayLayout is how timestamps are shown to readers.
const DisplayLayout = "02/01/2006 03:04 PM"

// CleanSummary strips HTML markup from an article summary and collapses
// whitespace. Plain text passes through unchanged apart from whitespace.
func CleanSummary(summary string) string {
	if !strings.ContainsAny(summary, "<&") {
		return strings.Join(strings.Fields(summary), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return strings.Join(strings.Fields(summary), " ")
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// FormatTimestamp renders an API timestamp for display in UTC. Values that
// do not parse are returned as they are.
func FormatTimestamp(ts string) string {
	t, err := time.Parse(PublishedLayout, ts)
	if err != nil {
		// Some records carry fractional seconds or an offset
		t, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return ts
		}
	}
	return t.UTC().Format(DisplayLayout)
}
