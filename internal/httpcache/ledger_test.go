package httpcache

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const feedURL = "https://example.com/feed.xml"

func TestLedger_HeadersForUnknownURL(t *testing.T) {
	l := NewLedger()
	assert.Empty(t, l.HeadersFor(feedURL))
}

func TestLedger_UpdateThenHeadersFor(t *testing.T) {
	l := NewLedger()

	resp := http.Header{}
	resp.Set("ETag", `"abc123"`)
	resp.Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
	l.Update(feedURL, resp)

	headers := l.HeadersFor(feedURL)
	assert.Equal(t, `"abc123"`, headers["If-None-Match"])
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", headers["If-Modified-Since"])
}

func TestLedger_PartialValidators(t *testing.T) {
	l := NewLedger()

	resp := http.Header{}
	resp.Set("ETag", `"only-etag"`)
	l.Update(feedURL, resp)

	headers := l.HeadersFor(feedURL)
	assert.Equal(t, `"only-etag"`, headers["If-None-Match"])
	assert.NotContains(t, headers, "If-Modified-Since")
}

func TestLedger_AbsentHeaderDoesNotClearStoredValidator(t *testing.T) {
	l := NewLedger()

	first := http.Header{}
	first.Set("ETag", `"v1"`)
	first.Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
	l.Update(feedURL, first)

	// Server stops sending Last-Modified; the stored value must survive.
	second := http.Header{}
	second.Set("ETag", `"v2"`)
	l.Update(feedURL, second)

	headers := l.HeadersFor(feedURL)
	assert.Equal(t, `"v2"`, headers["If-None-Match"])
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", headers["If-Modified-Since"])
}

func TestLedger_ResponseWithoutValidatorsRecordsNothing(t *testing.T) {
	l := NewLedger()
	l.Update(feedURL, http.Header{})
	assert.Empty(t, l)
}

func TestValidators_Empty(t *testing.T) {
	assert.True(t, Validators{}.Empty())
	assert.False(t, Validators{ETag: `"x"`}.Empty())
	assert.False(t, Validators{LastModified: "y"}.Empty())
}
