package filter

import (
	"net/url"
	"strings"

	"github.com/dlclark/regexp2"
)

// SourceRules narrows noisy high-volume sources: when a rule exists for a
// source, an item's title must satisfy the rule's pattern before any
// destination matching runs. Rules are data, keyed by a stable source
// identifier, so new sources are added without touching matching logic.
type SourceRules struct {
	rules map[string]*regexp2.Regexp
}

// defaultSourceRulePatterns restricts the official U.C. ENGAGE YouTube
// channels, which publish far more gameplay noise than story content, to
// story and episode uploads.
var defaultSourceRulePatterns = map[string]string{
	"UC7wu64jFsV02bbu6UHUd7JA": `(?i)(UCE|ENGAGE|エンゲージ|story|cutscene|アニメ|epis[oó]dio|episode|第\d+話)`,
	"UC7wu64jGxCwSuxOR7XfS88g": `(?i)(UCE|ENGAGE|エンゲージ|story|cutscene|アニメ|epis[oó]dio|episode|第\d+話)`,
}

// NewSourceRules compiles the default rule table plus any overrides supplied
// by configuration. An override with an invalid pattern is skipped.
func NewSourceRules(overrides map[string]string) *SourceRules {
	rules := make(map[string]*regexp2.Regexp, len(defaultSourceRulePatterns)+len(overrides))
	for id, pattern := range defaultSourceRulePatterns {
		rules[id] = regexp2.MustCompile(pattern, 0)
	}
	for id, pattern := range overrides {
		compiled, err := regexp2.Compile(pattern, 0)
		if err != nil {
			continue
		}
		rules[id] = compiled
	}
	return &SourceRules{rules: rules}
}

// TitleAllowed reports whether an item title from the given source passes the
// source's rule. Sources without a rule always pass.
func (sr *SourceRules) TitleAllowed(sourceID, title string) bool {
	rule, ok := sr.rules[sourceID]
	if !ok {
		return true
	}
	matched, err := rule.MatchString(title)
	return err == nil && matched
}

// SourceIDFromURL derives the stable source identifier for a resource URL:
// the channel_id query parameter for YouTube feed URLs, the hostname
// otherwise.
func SourceIDFromURL(resourceURL string) string {
	parsed, err := url.Parse(resourceURL)
	if err != nil {
		return resourceURL
	}
	if channelID := parsed.Query().Get("channel_id"); channelID != "" {
		return channelID
	}
	return strings.ToLower(parsed.Hostname())
}
