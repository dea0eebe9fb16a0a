// Package newsapi is a thin client for the NewsAPI top-headlines endpoint.
// Article payloads pass through unchanged; there is no caching and no
// retry, only a bounded client timeout.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("news provider rejected the api key")
	ErrRateLimited  = errors.New("news provider rate limit exceeded")
	ErrUnavailable  = errors.New("news provider unreachable")
	ErrProvider     = errors.New("news provider error")
)

const defaultQuery = "latest news"

type Article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

type headlinesResponse struct {
	Status   string    `json:"status"`
	Articles []Article `json:"articles"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// TopHeadlines forwards the free-text query (defaulted when blank) and the
// optional category. "general" is the provider default and is omitted.
func (c *Client) TopHeadlines(ctx context.Context, query, category string) ([]Article, error) {
	const op = "gateway.newsapi.TopHeadlines"

	query = strings.TrimSpace(query)
	if query == "" {
		query = defaultQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("apiKey", c.apiKey)
	if category != "" && category != "general" {
		params.Set("category", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/top-headlines?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}
	defer httpResp.Body.Close()

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
	case httpResp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: status %d: %w", op, httpResp.StatusCode, ErrProvider)
	}

	var resp headlinesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", op, ErrProvider)
	}

	return resp.Articles, nil
}
