package remote

import "github.com/pevans/sfnews/articles"

// PageDTO is the payload of GET /articles.
type PageDTO struct {
	Count    int64        `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []ArticleDTO `json:"results"`
}

// ArticleDTO is a single article record as the API returns it.
type ArticleDTO struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Authors     []AuthorDTO `json:"authors"`
	URL         string      `json:"url"`
	ImageURL    string      `json:"image_url"`
	NewsSite    string      `json:"news_site"`
	Summary     string      `json:"summary"`
	PublishedAt string      `json:"published_at"`
	UpdatedAt   string      `json:"updated_at"`
	Featured    bool        `json:"featured"`
	Launches    []LaunchDTO `json:"launches"`
	Events      []EventDTO  `json:"events"`
}

// AuthorDTO is an article author with optional social links.
type AuthorDTO struct {
	Name    string     `json:"name"`
	Socials *SocialDTO `json:"socials"`
}

// SocialDTO lists an author's social profiles. Every field is optional.
type SocialDTO struct {
	X         string `json:"x,omitempty"`
	Youtube   string `json:"youtube,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Mastodon  string `json:"mastodon,omitempty"`
	Bluesky   string `json:"bluesky,omitempty"`
}

// LaunchDTO references a launch related to an article.
type LaunchDTO struct {
	LaunchID string `json:"launch_id"`
	Provider string `json:"provider"`
}

// EventDTO references an event related to an article.
type EventDTO struct {
	EventID  int64  `json:"event_id"`
	Provider string `json:"provider"`
}

// ToArticle converts the record to a list summary.
func (a ArticleDTO) ToArticle() articles.Article {
	return articles.Article{
		ID:          a.ID,
		Title:       a.Title,
		ImageURL:    a.ImageURL,
		NewsSite:    a.NewsSite,
		PublishedAt: a.PublishedAt,
	}
}

// ToDetail converts the record to a full article. The summary is cleaned of
// markup.
func (a ArticleDTO) ToDetail() articles.ArticleDetail {
	authors := make([]articles.Author, 0, len(a.Authors))
	for _, au := range a.Authors {
		authors = append(authors, articles.Author{Name: au.Name})
	}

	return articles.ArticleDetail{
		ID:          a.ID,
		Title:       a.Title,
		Authors:     authors,
		URL:         a.URL,
		NewsSite:    a.NewsSite,
		ImageURL:    a.ImageURL,
		Summary:     articles.CleanSummary(a.Summary),
		PublishedAt: a.PublishedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToPage converts the payload to a domain page, keeping result order.
func (p PageDTO) ToPage() articles.Page {
	items := make([]articles.Article, 0, len(p.Results))
	for _, r := range p.Results {
		items = append(items, r.ToArticle())
	}

	return articles.Page{
		Count: p.Count,
		Next:  p.Next,
		Items: items,
	}
}
