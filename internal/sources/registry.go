package sources

import (
	"strings"

	"github.com/aleister1102/maftyintel/internal/urlhandler"
	"github.com/rs/zerolog"
)

// recognizedListKeys are the mapping keys whose values contribute feed URLs
// when the sources document is a categorized mapping.
var recognizedListKeys = []string{
	"rss_feeds", "youtube_feeds", "official_sites", "feeds", "sources", "urls",
}

// referencePagesKey holds the non-syndicated pages watched by the page-change
// monitor; they are not feeds and are kept out of the scan list.
const referencePagesKey = "official_sites_reference_(not_rss)"

// Registry is the normalized view of the sources document: a flat,
// deduplicated list of feed URLs plus the reference pages for the monitor.
// Normalization happens once at load time; downstream components never see
// the raw document shapes.
type Registry struct {
	FeedURLs       []string
	ReferencePages []string
}

// Normalize converts an untyped sources document into a Registry. The
// document may be a flat list (of URL strings or objects with a url/link
// field) or a mapping with recognized keys holding such lists. Anything that
// is not an http(s) URL is dropped; duplicates collapse to their first
// occurrence, preserving order.
func Normalize(doc any, logger zerolog.Logger) Registry {
	var reg Registry

	switch typed := doc.(type) {
	case nil:
		return reg
	case []any:
		reg.FeedURLs = collectURLs(typed)
	case map[string]any:
		var raw []any
		for _, key := range recognizedListKeys {
			if list, ok := typed[key].([]any); ok {
				raw = append(raw, list...)
			}
		}
		reg.FeedURLs = collectURLs(raw)

		if pages, ok := typed[referencePagesKey].([]any); ok {
			reg.ReferencePages = collectURLs(pages)
		}
	default:
		logger.Warn().Msg("Sources document has an unrecognized shape, treating as empty")
	}

	return reg
}

// collectURLs extracts valid http(s) URLs from a heterogeneous list,
// deduplicating case-sensitively in first-seen order.
func collectURLs(items []any) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(candidate string) {
		if !strings.HasPrefix(strings.TrimSpace(candidate), "http://") &&
			!strings.HasPrefix(strings.TrimSpace(candidate), "https://") {
			return
		}
		normalized, err := urlhandler.NormalizeURL(candidate)
		if err != nil {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}

	for _, item := range items {
		switch entry := item.(type) {
		case string:
			add(entry)
		case map[string]any:
			if u, ok := entry["url"].(string); ok && u != "" {
				add(u)
			} else if u, ok := entry["link"].(string); ok && u != "" {
				add(u)
			}
		}
	}

	return out
}
