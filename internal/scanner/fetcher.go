package scanner

import (
	"context"
	"io"
	"net/http"

	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/rs/zerolog"
)

// ErrNotModified signals that a conditional request was answered with 304
// and the resource body was not transferred.
var ErrNotModified = errorwrapper.NewError("content not modified")

// FeedFetcher fetches feed resources with support for conditional GETs.
type FeedFetcher struct {
	httpClient *http.Client
	logger     zerolog.Logger
	cfg        *config.ScannerConfig
}

// NewFeedFetcher creates a new FeedFetcher.
func NewFeedFetcher(client *http.Client, logger zerolog.Logger, cfg *config.ScannerConfig) *FeedFetcher {
	return &FeedFetcher{
		httpClient: client,
		logger:     logger.With().Str("component", "FeedFetcher").Logger(),
		cfg:        cfg,
	}
}

// FetchFeedInput holds parameters for FetchFeed.
type FetchFeedInput struct {
	URL string
	// ConditionalHeaders come from the HTTP cache ledger (If-None-Match,
	// If-Modified-Since).
	ConditionalHeaders map[string]string
}

// FetchFeedResult holds the response of a feed fetch.
type FetchFeedResult struct {
	Body       []byte
	Header     http.Header
	StatusCode int
}

// FetchFeed fetches one feed resource. A 304 response returns the result
// (headers only) together with ErrNotModified so the caller can count the
// cache hit and skip parsing.
func (f *FeedFetcher) FetchFeed(ctx context.Context, input FetchFeedInput) (*FetchFeedResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "creating request for "+input.URL)
	}

	req.Header.Set("User-Agent", f.cfg.UserAgent)
	for name, value := range input.ConditionalHeaders {
		req.Header.Set(name, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(input.URL, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	result := &FetchFeedResult{
		Header:     resp.Header,
		StatusCode: resp.StatusCode,
	}

	if resp.StatusCode == http.StatusNotModified {
		f.logger.Debug().Str("url", input.URL).Msg("Content not modified (304)")
		return result, ErrNotModified
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return result, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(bodyBytes), input.URL)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read response body for "+input.URL)
	}
	result.Body = bodyBytes

	f.logger.Debug().Str("url", input.URL).Int("size", len(result.Body)).Msg("Feed fetched")
	return result, nil
}
