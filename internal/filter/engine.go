package filter

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"
)

// patternCache memoizes compiled keyword patterns. Keywords come from fixed
// vocabularies plus config, so the cache stays small and is never evicted.
var patternCache sync.Map // keyword string -> *regexp2.Regexp

// keywordPattern compiles the match pattern for a single keyword:
//
//   - keywords containing non-ASCII runes (CJK in practice) match as literal
//     substrings, since word boundaries are unreliable across such scripts;
//   - keywords in the agglutinative set match as literal substrings with an
//     optional trailing "s", so glued forms like "suitgundam" still hit;
//   - everything else is anchored with Unicode-aware boundaries, takes an
//     optional trailing "s", and carries a negative look-behind for a colon,
//     which keeps numeric keywords like "00" from matching inside "12:00".
//
// regexp2 is required here: RE2 supports neither look-behind nor a \b that
// understands accented letters ("episódio").
func keywordPattern(keyword string) *regexp2.Regexp {
	if cached, ok := patternCache.Load(keyword); ok {
		return cached.(*regexp2.Regexp)
	}

	escaped := regexp.QuoteMeta(keyword)

	var pattern string
	switch {
	case containsNonASCII(keyword):
		pattern = escaped
	case isAgglutinative(keyword):
		pattern = escaped + `s?`
	default:
		pattern = `(?<!:)\b` + escaped + `s?\b`
	}

	compiled := regexp2.MustCompile(pattern, regexp2.IgnoreCase)
	patternCache.Store(keyword, compiled)
	return compiled
}

func containsNonASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

func isAgglutinative(keyword string) bool {
	_, ok := agglutinativeKeywords[keyword]
	return ok
}

// ContainsAny reports whether any keyword's pattern is found in text. An
// empty keyword list never matches. The function never errors: a match
// failure on one pattern just counts as no match.
func ContainsAny(text string, keywords []string) bool {
	if text == "" || len(keywords) == 0 {
		return false
	}
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		matched, err := keywordPattern(keyword).MatchString(text)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// Engine decides whether a feed item is relevant to a destination's
// configured topic filters. It is a pure matcher: no side effects and safe
// for concurrent use.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a new filter engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "FilterEngine").Logger(),
	}
}

// Matches evaluates a title/summary pair against one destination:
//
//  1. destinations with no filters configured receive nothing;
//  2. the blacklist rejects unconditionally, before relevance matching;
//  3. the item must hit the core vocabulary at all;
//  4. the wildcard filter accepts everything past the gates;
//  5. otherwise the first selected category whose keyword set matches wins.
func (e *Engine) Matches(dest models.DestinationConfig, title, summary string) bool {
	if len(dest.Filters) == 0 {
		return false
	}

	content := strings.ToLower(StripMarkup(title) + " " + StripMarkup(summary))

	if ContainsAny(content, Blacklist) {
		return false
	}

	if !ContainsAny(content, CoreVocabulary) {
		return false
	}

	for _, f := range dest.Filters {
		if f == WildcardFilter {
			return true
		}
	}

	for _, f := range dest.Filters {
		keywords, ok := CategoryKeywords[f]
		if !ok {
			e.logger.Debug().Str("filter", f).Msg("Unknown filter selected by destination, skipping")
			continue
		}
		if ContainsAny(content, keywords) {
			return true
		}
	}

	return false
}
