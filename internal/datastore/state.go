package datastore

import (
	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
)

// CleanKind selects which persisted state a bulk-clear operation targets.
type CleanKind string

const (
	CleanDedup      CleanKind = "dedup"
	CleanHTTPCache  CleanKind = "http_cache"
	CleanPageHashes CleanKind = "page_hashes"
	CleanAll        CleanKind = "all"
)

// StateStats summarizes the persisted state documents so operators can audit
// the effect of maintenance operations.
type StateStats struct {
	HistoryEntries int `json:"history_entries"`
	HTTPCacheURLs  int `json:"http_cache_urls"`
	PageHashSites  int `json:"page_hash_sites"`
}

// Stats computes entry counts for each state document.
func (s *JSONStore) Stats() StateStats {
	var stats StateStats

	var history []string
	_ = s.LoadInto(DocHistory, &history)
	stats.HistoryEntries = len(history)

	var httpCache map[string]any
	_ = s.LoadInto(DocHTTPCache, &httpCache)
	stats.HTTPCacheURLs = len(httpCache)

	var pageHashes map[string]string
	_ = s.LoadInto(DocPageHashes, &pageHashes)
	stats.PageHashSites = len(pageHashes)

	return stats
}

// Clean resets the selected state documents and returns the stats observed
// before the reset. An unrecognized kind is rejected before anything is
// touched, so a bad request never applies a partial mutation. Each affected
// document is backed up first when it exists.
func (s *JSONStore) Clean(kind CleanKind) (StateStats, error) {
	var docs []string
	switch kind {
	case CleanDedup:
		docs = []string{DocHistory}
	case CleanHTTPCache:
		docs = []string{DocHTTPCache}
	case CleanPageHashes:
		docs = []string{DocPageHashes}
	case CleanAll:
		docs = []string{DocHistory, DocHTTPCache, DocPageHashes}
	default:
		return StateStats{}, errorwrapper.NewValidationError("clean_kind", string(kind), "unknown clean kind")
	}

	before := s.Stats()

	for _, doc := range docs {
		if s.fileManager.FileExists(s.Path(doc)) {
			if _, err := s.Backup(doc); err != nil {
				s.logger.Warn().Err(err).Str("document", doc).Msg("Backup before clean failed, continuing")
			}
		}

		var empty any
		if doc == DocHistory {
			empty = []string{}
		} else {
			empty = map[string]any{}
		}
		if err := s.Save(doc, empty); err != nil {
			return before, errorwrapper.WrapError(err, "failed to reset document "+doc)
		}
		s.logger.Info().Str("document", doc).Str("kind", string(kind)).Msg("State document reset")
	}

	return before, nil
}
