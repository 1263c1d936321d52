package httpserver

import (
	"strconv"

	"github.com/chorn/czhttpd/internal/compress"
)

// ApplyCompression gzip-encodes resp in place when it is an identity
// response eligible under cfg. Chunked responses (directory listings
// without a cache, CGI output) are left untouched — compressing a
// stream whose total size isn't known upfront is out of scope for this
// encoder.
func ApplyCompression(resp *Response, cfg compress.Config, acceptEncoding string) {
	if resp.Framing != FramingIdentity || cfg.MinSize < 0 {
		return
	}
	contentType := headerValue(resp, "Content-Type")
	if !compress.Eligible(cfg, contentType, int64(len(resp.Body)), acceptEncoding) {
		return
	}
	encoded, err := compress.Encode(cfg, resp.Body)
	if err != nil {
		return
	}
	resp.Body = encoded
	setHeader(resp, "Content-Length", strconv.Itoa(len(encoded)))
	resp.AddHeader("Content-Encoding", "gzip")
}

func headerValue(resp *Response, key string) string {
	for _, h := range resp.headers {
		if h.key == key {
			return h.value
		}
	}
	return ""
}

func setHeader(resp *Response, key, value string) {
	for i, h := range resp.headers {
		if h.key == key {
			resp.headers[i].value = value
			return
		}
	}
	resp.AddHeader(key, value)
}
