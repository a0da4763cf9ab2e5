package models

// FeedItem is one entry extracted from a syndicated resource.
type FeedItem struct {
	// SourceURL is the resource the item was parsed from.
	SourceURL string
	// Link is the canonical link of the item and serves as its identity in
	// the dispatch ledger.
	Link         string
	Title        string
	Summary      string
	ThumbnailURL string
}
