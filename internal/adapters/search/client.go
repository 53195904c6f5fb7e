package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"morpheus/internal/adapters/config"
	"morpheus/internal/metrics"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

// userAgent is sent with every search request so the engine serves the
// plain HTML result page.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// resultSelector is the structural selector for organic result blocks.
const resultSelector = "div.g"

// Client performs one HTTP GET per search and extracts result snippets.
type Client struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a search client from configuration.
func NewClient(cfg config.SearchConfig) *Client {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.ReqPerMinute/60.0), 1),
		log:        logger.Get().With("component", "search_client"),
	}
}

// Search fetches the result page for the term and returns the top snippets
// formatted as "Result:" blocks.
func (c *Client) Search(ctx context.Context, term string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		// A cancelled context is the caller's fault, not throttling.
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), "search rate limit wait")
		}
		return "", errors.Wrap(errors.ErrRateLimited, err.Error())
	}

	reqURL := fmt.Sprintf("%s?q=%s", c.baseURL, url.QueryEscape(term))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "create search request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return "", errors.Wrap(errors.ErrExternal, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return "", errors.Wrapf(errors.ErrExternal, "search engine returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "parse search results")
	}

	metrics.SearchRequests.WithLabelValues("success").Inc()
	c.log.Debugw("Search page fetched", "term", term, "status", resp.StatusCode)

	return c.extractSnippets(doc), nil
}

// extractSnippets walks the fixed result selector and concatenates up to
// maxResults snippet texts.
func (c *Client) extractSnippets(doc *goquery.Document) string {
	var formatted []string

	doc.Find(resultSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= c.maxResults {
			return false
		}
		text := strings.TrimSpace(s.Text())
		if text != "" {
			formatted = append(formatted, fmt.Sprintf("Result:\n%s", text))
		}
		return true
	})

	return strings.Join(formatted, "\n\n")
}

// ParseSnippets extracts snippets from raw markup. Split out from Search so
// the selector logic is testable without a network call.
func (c *Client) ParseSnippets(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", errors.Wrap(err, "parse search results")
	}
	return c.extractSnippets(doc), nil
}
