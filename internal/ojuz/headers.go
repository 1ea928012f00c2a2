package ojuz

import "net/http"

// baseHeaders is shared by every request of every session and must never be
// written to; per-request values go through mergeHeaders.
var baseHeaders = map[string]string{
	"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Connection": "keep-alive",
	"DNT":        "1",
}

// mergeHeaders builds a fresh header set: baseline, then the session user
// agent, then the per-call overrides.
func mergeHeaders(userAgent string, overrides map[string]string) http.Header {
	h := make(http.Header, len(baseHeaders)+len(overrides)+1)
	for k, v := range baseHeaders {
		h.Set(k, v)
	}
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	for k, v := range overrides {
		h.Set(k, v)
	}
	return h
}
