package models

// PageChange describes one monitored page whose content hash moved since the
// last observation.
type PageChange struct {
	Title string
	URL   string
	Note  string
	// DiffSummary is a short human-readable character delta when the
	// previous normalized text was available for comparison, empty
	// otherwise.
	DiffSummary string
}
