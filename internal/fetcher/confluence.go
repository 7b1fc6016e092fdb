package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/webwhiz/webwhiz/internal/domain"
)

// Confluence fetches wiki pages over the Confluence REST API using
// per-session credentials.
type Confluence struct {
	client    *http.Client
	pageLimit int
}

func NewConfluence(timeout time.Duration, pageLimit int) *Confluence {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if pageLimit <= 0 {
		pageLimit = 50
	}
	return &Confluence{
		client:    &http.Client{Timeout: timeout},
		pageLimit: pageLimit,
	}
}

type confluencePage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
	Body struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
}

// FetchPages loads the pages named by creds.PageID (comma separated,
// capped at the configured limit) with basic auth against creds.BaseURL.
// Auth and network failures propagate unmodified.
func (c *Confluence) FetchPages(ctx context.Context, creds domain.WikiCredentials) ([]domain.Page, error) {
	ids := splitPageIDs(creds.PageID, c.pageLimit)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no page ids in credentials: %w", domain.ErrInvalidRequest)
	}

	pages := make([]domain.Page, 0, len(ids))
	for _, id := range ids {
		page, err := c.fetchPage(ctx, creds, id)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (c *Confluence) fetchPage(ctx context.Context, creds domain.WikiCredentials, pageID string) (domain.Page, error) {
	endpoint := fmt.Sprintf("%s/rest/api/content/%s?expand=body.storage",
		strings.TrimRight(creds.BaseURL, "/"), pageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Page{}, fmt.Errorf("build wiki request for page %s: %w", pageID, err)
	}
	req.SetBasicAuth(creds.Username, creds.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch wiki page %s: %w", pageID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Page{}, fmt.Errorf("fetch wiki page %s: unexpected status %d", pageID, resp.StatusCode)
	}

	var page confluencePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return domain.Page{}, fmt.Errorf("decode wiki page %s: %w", pageID, err)
	}

	return domain.Page{
		URL:   strings.TrimRight(creds.BaseURL, "/") + page.Links.WebUI,
		Title: page.Title,
		Text:  stripTags(page.Body.Storage.Value),
	}, nil
}

func splitPageIDs(raw string, limit int) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		ids = append(ids, id)
		if len(ids) == limit {
			break
		}
	}
	return ids
}

// stripTags reduces Confluence storage-format HTML to plain text.
// Block-level tags become newlines so the chunker can still find
// paragraph boundaries.
func stripTags(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	inTag := false
	tagStart := 0
	for i, r := range src {
		switch {
		case r == '<':
			inTag = true
			tagStart = i
		case r == '>' && inTag:
			inTag = false
			tag := strings.ToLower(strings.TrimLeft(src[tagStart+1:i], "/"))
			switch {
			case strings.HasPrefix(tag, "p"), strings.HasPrefix(tag, "br"),
				strings.HasPrefix(tag, "h1"), strings.HasPrefix(tag, "h2"),
				strings.HasPrefix(tag, "h3"), strings.HasPrefix(tag, "li"),
				strings.HasPrefix(tag, "div"), strings.HasPrefix(tag, "tr"):
				b.WriteByte('\n')
			}
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(html.UnescapeString(b.String()))
}
