package httpcache

import "net/http"

// Validators holds the cache validators recorded for one resource. A record
// with both fields empty carries no information and is equivalent to absence.
type Validators struct {
	ETag         string `json:"etag,omitempty" yaml:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
}

// Empty reports whether the record carries no validators.
func (v Validators) Empty() bool {
	return v.ETag == "" && v.LastModified == ""
}

// Ledger maps resource URLs to their recorded cache validators. It backs the
// conditional-request negotiation of the feed scanner and is persisted as
// http_cache.json between cycles.
type Ledger map[string]Validators

// NewLedger creates an empty cache ledger.
func NewLedger() Ledger {
	return make(Ledger)
}

// HeadersFor builds the conditional request headers for a resource. The
// returned map is empty when nothing is on record.
func (l Ledger) HeadersFor(url string) map[string]string {
	headers := make(map[string]string)
	validators, ok := l[url]
	if !ok {
		return headers
	}
	if validators.ETag != "" {
		headers["If-None-Match"] = validators.ETag
	}
	if validators.LastModified != "" {
		headers["If-Modified-Since"] = validators.LastModified
	}
	return headers
}

// Update records the validators found in a fresh response. Header lookup is
// case-insensitive (http.Header canonicalizes). Fields absent from the
// response leave the stored values untouched so a server that stops sending
// one validator does not clear it.
func (l Ledger) Update(url string, responseHeaders http.Header) {
	validators := l[url]

	if etag := responseHeaders.Get("ETag"); etag != "" {
		validators.ETag = etag
	}
	if lastModified := responseHeaders.Get("Last-Modified"); lastModified != "" {
		validators.LastModified = lastModified
	}

	if validators.Empty() {
		return
	}
	l[url] = validators
}
