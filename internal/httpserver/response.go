package httpserver

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// reasonPhrases covers every status code this server writes on the wire.
var reasonPhrases = map[int]string{
	200: "OK",
	301: "Moved Permanently",
	304: "Not Modified",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	412: "Precondition Failed",
	413: "Payload Too Large",
	500: "Internal Server Error",
	501: "Not Implemented",
	503: "Service Unavailable",
	505: "HTTP Version Not Supported",
}

// ReasonFor returns the canonical reason phrase for status, or "" if
// this server never emits that status.
func ReasonFor(status int) string {
	return reasonPhrases[status]
}

const chunkSize = 8192

// writeResponse encodes resp onto w: status line, standard headers
// (Connection, Date, Server when serverSoftware is non-empty,
// Transfer-Encoding when chunked), handler
// headers in call order, blank line, then the framed body. headOnly
// suppresses all body bytes. Broken-pipe writes are swallowed silently
// — the caller learns only whether the connection must close.
func writeResponse(w *bufio.Writer, resp *Response, headOnly bool, keepAlive bool, serverSoftware string) (fatal bool) {
	reason := resp.Reason
	if reason == "" {
		reason = ReasonFor(resp.Status)
	}
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", resp.Status, reason); err != nil {
		return true
	}

	connToken := "close"
	if keepAlive {
		connToken = "keep-alive"
	}
	if writeHeaderLine(w, "Connection", connToken) {
		return true
	}
	if writeHeaderLine(w, "Date", time.Now().UTC().Format(time.RFC1123)) {
		return true
	}
	if serverSoftware != "" {
		if writeHeaderLine(w, "Server", serverSoftware) {
			return true
		}
	}
	if resp.Framing == FramingChunked {
		if writeHeaderLine(w, "Transfer-Encoding", "chunked") {
			return true
		}
	}
	for _, h := range resp.headers {
		if writeHeaderLine(w, h.key, h.value) {
			return true
		}
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return true
	}

	suppress := headOnly || resp.SuppressBody
	switch resp.Framing {
	case FramingIdentity:
		if !suppress {
			if _, err := w.Write(resp.Body); err != nil {
				return true
			}
		}
	case FramingChunked:
		if !suppress {
			if writeChunkedBody(w, resp.Chunks) {
				return true
			}
		} else {
			// drain so the producer goroutine, if any, doesn't block forever.
			for range resp.Chunks {
			}
		}
	case FramingNone:
		// nothing to write.
	}

	return w.Flush() != nil
}

func writeHeaderLine(w *bufio.Writer, key, value string) (fatal bool) {
	if _, err := fmt.Fprintf(w, "%s: %s\r\n", key, value); err != nil {
		return true
	}
	return false
}

func writeChunkedBody(w *bufio.Writer, chunks <-chan []byte) (fatal bool) {
	for chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%x\r\n", len(chunk)); err != nil {
			return true
		}
		if _, err := w.Write(chunk); err != nil {
			return true
		}
		if _, err := w.WriteString("\r\n"); err != nil {
			return true
		}
	}
	_, err := w.WriteString("0\r\n\r\n")
	return err != nil
}

// chunksFromReader turns an io.Reader into the chunk channel
// writeChunkedBody consumes, reading in chunkSize pieces until EOF.
func chunksFromReader(r io.Reader) <-chan []byte {
	out := make(chan []byte)
	go func() {
		defer close(out)
		buf := make([]byte, chunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				out <- chunk
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// identityResponse builds a Response whose framing is identity with a
// Content-Length header matching len(body) exactly.
func identityResponse(status int, body []byte, contentType string) *Response {
	resp := NewResponse(status, ReasonFor(status))
	if contentType != "" {
		resp.AddHeader("Content-Type", contentType)
	}
	resp.AddHeader("Content-Length", strconv.Itoa(len(body)))
	resp.Framing = FramingIdentity
	resp.Body = body
	return resp
}

// errorResponse builds the short synthesized-body error responses this
// server sends for the 4xx/5xx family.
func errorResponse(status int) *Response {
	body := []byte(fmt.Sprintf("%d %s\n", status, ReasonFor(status)))
	return identityResponse(status, body, "text/plain; charset=utf-8")
}

// writeErrorDirect writes a complete error response directly on a raw
// net.Conn, used by the acceptor when it has no worker/connection
// wrapper yet — the 503 overload path.
func writeErrorDirect(c net.Conn, status int) {
	w := bufio.NewWriter(c)
	resp := errorResponse(status)
	writeResponse(w, resp, false, false, "")
}
