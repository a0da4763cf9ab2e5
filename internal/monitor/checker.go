package monitor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/urlhandler"
	"github.com/rs/zerolog"
)

// PageChecker fetches one reference page, strips boilerplate, and reduces it
// to a content hash over the visible text.
type PageChecker struct {
	httpClient *http.Client
	logger     zerolog.Logger
	cfg        *config.MonitorConfig
}

// NewPageChecker creates a new PageChecker.
func NewPageChecker(client *http.Client, logger zerolog.Logger, cfg *config.MonitorConfig) *PageChecker {
	return &PageChecker{
		httpClient: client,
		logger:     logger.With().Str("component", "PageChecker").Logger(),
		cfg:        cfg,
	}
}

// PageSnapshot is the reduced observation of one page.
type PageSnapshot struct {
	URL   string
	Title string
	Hash  string
	// Text is the normalized visible text the hash was computed over; kept
	// so a later observation can produce a change summary.
	Text string
}

// CheckPage fetches and reduces one page. The URL is validated against the
// SSRF policy before any network traffic happens.
func (pc *PageChecker) CheckPage(ctx context.Context, pageURL string) (*PageSnapshot, error) {
	if err := urlhandler.ValidateTarget(pageURL); err != nil {
		pc.logger.Warn().Err(err).Str("url", pageURL).Msg("Page blocked by URL policy")
		return nil, errorwrapper.WrapError(err, "page URL rejected")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "creating request for "+pageURL)
	}
	req.Header.Set("User-Agent", pc.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(pageURL, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		pc.logger.Debug().Str("url", pageURL).Int("status", resp.StatusCode).Msg("Non-OK status, skipping page")
		return nil, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, "unexpected status", pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(pc.cfg.MaxContentSize)))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read page body for "+pageURL)
	}

	return pc.reduce(pageURL, body)
}

// reduce parses the markup, removes boilerplate, and hashes the remaining
// visible text.
func (pc *PageChecker) reduce(pageURL string, body []byte) (*PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse page markup for "+pageURL)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No Title"
	}

	for _, tag := range pc.cfg.IgnoreTags {
		doc.Find(tag).Remove()
	}
	for _, selector := range pc.cfg.IgnoreSelectors {
		doc.Find(selector).Remove()
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	hash := sha256.Sum256([]byte(text))

	return &PageSnapshot{
		URL:   pageURL,
		Title: title,
		Hash:  fmt.Sprintf("%x", hash),
		Text:  text,
	}, nil
}
