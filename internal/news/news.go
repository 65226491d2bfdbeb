// Package news fetches weather and disaster-related headlines for an area
// from the GNews API. Failures degrade to an empty list rather than an
// error; news is a best-effort enrichment.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const maxArticles = 6

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Article is one headline, trimmed to what the frontend renders.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Image       string `json:"image"`
}

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Local returns up to six disaster-related headlines mentioning the place.
func (c *Client) Local(ctx context.Context, place string) []Article {
	query := fmt.Sprintf("%s weather OR disaster OR flood OR landslide OR rainfall OR storm", place)
	params := url.Values{
		"q":      {query},
		"lang":   {"en"},
		"max":    {fmt.Sprint(maxArticles)},
		"apikey": {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("news fetch failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("news fetch rejected", "status", resp.StatusCode)
		return nil
	}

	var data gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil
	}

	articles := make([]Article, 0, maxArticles)
	for i, a := range data.Articles {
		if i >= maxArticles {
			break
		}
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Image:       a.Image,
		})
	}
	return articles
}
