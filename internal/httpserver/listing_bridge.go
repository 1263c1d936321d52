package httpserver

import (
	"strings"

	"github.com/chorn/czhttpd/internal/listing"
)

// ListingDeps bundles the config the directory-listing path needs.
type ListingDeps struct {
	Options listing.Options
}

// ServeListing renders and streams chunked HTML when the on-disk cache
// is disabled, or renders through the cache and serves a complete
// identity response when it's enabled.
func ServeListing(deps ListingDeps) func(req *Request, dirPath string) *Response {
	return func(req *Request, dirPath string) *Response {
		urlPath := req.Path
		if deps.Options.CacheDir == "" {
			html, err := listing.Render(dirPath, urlPath, deps.Options)
			if err != nil {
				return errorResponse(500)
			}
			resp := NewResponse(200, ReasonFor(200))
			resp.AddHeader("Content-Type", "text/html")
			resp.Framing = FramingChunked
			resp.Chunks = chunksFromReader(strings.NewReader(html))
			return resp
		}

		html, err := listing.GetOrRender(dirPath, urlPath, deps.Options)
		if err != nil {
			return errorResponse(500)
		}
		return identityResponse(200, []byte(html), "text/html")
	}
}
