package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/webwhiz/webwhiz/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Web fetches generic web pages and extracts their main text content.
type Web struct {
	client *http.Client
}

func NewWeb(timeout time.Duration) *Web {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Web{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads link and runs readability extraction over the HTML.
// Network and HTTP errors propagate to the caller; there is no retry.
func (w *Web) Fetch(ctx context.Context, link string) (domain.Page, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return domain.Page{}, fmt.Errorf("invalid link %q: %w", link, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return domain.Page{}, fmt.Errorf("build request for %q: %w", link, err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch %q: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Page{}, fmt.Errorf("fetch %q: unexpected status %d", link, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return domain.Page{}, fmt.Errorf("extract content from %q: %w", link, err)
	}

	return domain.Page{
		URL:   link,
		Title: article.Title,
		Text:  article.TextContent,
	}, nil
}
