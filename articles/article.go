package articles

// Article is the summary of a news article as shown in a list.
type Article struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ImageURL    string `json:"image_url"`
	NewsSite    string `json:"news_site"`
	PublishedAt string `json:"published_at"`
}

// Author is a named author of an article.
type Author struct {
	Name string `json:"name"`
}

// ArticleDetail is the full article, fetched individually and never cached.
type ArticleDetail struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Authors     []Author `json:"authors"`
	URL         string   `json:"url"`
	NewsSite    string   `json:"news_site"`
	ImageURL    string   `json:"image_url"`
	Summary     string   `json:"summary"`
	PublishedAt string   `json:"published_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// AuthorNames returns the author names in order.
func (d ArticleDetail) AuthorNames() []string {
	names := make([]string, 0, len(d.Authors))
	for _, a := range d.Authors {
		names = append(names, a.Name)
	}
	return names
}

// Page is one batch of articles plus the locator of the next batch. Next is
// nil on the last page.
type Page struct {
	Count int64     `json:"count"`
	Next  *string   `json:"next,omitempty"`
	Items []Article `json:"items"`
}
