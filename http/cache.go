package http

import (
	"bytes"
	"net/http"
	"sync"
	"time"
)

// PageCache is a short-lived full-response cache for listing pages,
// keyed by request URI. It trades tens of seconds of staleness on the
// busiest pages for skipping their queries entirely. It is a pure
// decorator: nothing behind it may depend on it being there, and a
// zero TTL turns Wrap into the identity.
type PageCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	body        []byte
	contentType string
	expires     time.Time
}

// NewPageCache returns a PageCache holding responses for the given TTL.
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Wrap decorates a handler with the cache. Only successful GET
// responses are stored.
func (c *PageCache) Wrap(next http.Handler) http.Handler {
	if c.ttl <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		key := r.URL.RequestURI()
		if entry, ok := c.get(key); ok {
			w.Header().Set("Content-Type", entry.contentType)
			w.Write(entry.body)
			return
		}
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status == http.StatusOK {
			c.put(key, cacheEntry{
				body:        rec.body.Bytes(),
				contentType: rec.Header().Get("Content-Type"),
				expires:     time.Now().Add(c.ttl),
			})
		}
	})
}

func (c *PageCache) get(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		delete(c.entries, key)
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *PageCache) put(key string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// responseRecorder passes a response through to the client while
// keeping a copy of the body for the cache.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *responseRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}
