package httpserver

import (
	"net"
	"os"

	"github.com/chorn/czhttpd/internal/cgi"
)

// CGIOverrideHook adapts cgi.Execute into the OverrideHook contract: it
// runs only when the target is eligible for CGI execution, and
// otherwise delegates back to the static handler.
func CGIOverrideHook(cfg cgi.Config, onLog func(format string, args ...any)) OverrideHook {
	return func(req *Request, fsPath string, info os.FileInfo) (*Response, bool) {
		executable := info.Mode().Perm()&0111 != 0
		if !cgi.ShouldHandle(cfg, fsPath, executable) {
			return nil, false
		}

		result := cgi.Execute(cfg, cgi.Request{
			Method:      req.RawMethod,
			Path:        req.Path,
			ScriptPath:  fsPath,
			QueryString: req.QueryString,
			Header:      req.Header,
			Body:        req.Body,
			PeerAddr:    peerIP(req.Peer),
		})
		if result.Err != nil {
			if onLog != nil {
				onLog("cgi error: %v", result.Err)
			}
			return errorResponse(500), true
		}

		resp := NewResponse(result.Status, result.Reason)
		for _, h := range result.Headers {
			resp.AddHeader(h[0], h[1])
		}
		resp.Framing = FramingChunked
		resp.Chunks = result.Chunks
		return resp, true
	}
}

// peerIP strips the port from a host:port remote address, falling back
// to the original value if it isn't in that form.
func peerIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
