package httpserver

import (
	"bufio"
	"net"
	"strings"

	"github.com/chorn/czhttpd/internal/logging"
)

// runWorker implements the per-connection loop: parse, validate, serve,
// decide keep-alive, repeat. It owns c end to end and always releases
// the semaphore slot and closes the connection on exit.
func (s *Server) runWorker(raw net.Conn) {
	defer s.sem.Release()
	defer raw.Close()

	c := newConn(raw, s.IdleTimeout, s.RecvTimeout)
	peer := raw.RemoteAddr().String()
	limits := parseLimits{IdleTimeout: s.IdleTimeout, RecvTimeout: s.RecvTimeout, MaxBodyBytes: s.MaxBodyBytes}

	for {
		req, perr, cleanClose := ParseRequest(c, limits)
		if cleanClose {
			return
		}
		if perr != nil {
			s.Logger.Logf("%s request error: %d", peer, perr.Status)
			return // the parser has already written the error response
		}
		req.Conn = raw
		req.Peer = peer

		resp := s.Route(req)

		acceptEncoding := req.Header["accept-encoding"]
		ApplyCompression(resp, s.Compress, acceptEncoding)

		keepAlive := s.decideKeepAlive(req, resp)

		w := bufio.NewWriter(raw)
		headOnly := req.Method == MethodHEAD
		fatal := writeResponse(w, resp, headOnly, keepAlive, s.ServerSoftware)

		logging.AccessLine(s.Logger, peer, req.RawMethod, req.RawURL, resp.Status)

		if fatal || !keepAlive {
			return
		}
	}
}

// statusesForcingClose are the error classes that always
// close the connection after their response: ClientProtocolError
// (400/505), the remaining ClientPolicyError codes other than 304/405
// (403/404/412/413/501), ServerError (500), and Overload (503).
var statusesForcingClose = map[int]bool{
	400: true, 403: true, 404: true, 412: true, 413: true,
	500: true, 501: true, 503: true, 505: true,
}

// decideKeepAlive implements step 6: continue looping iff
// keep-alive is enabled AND the client didn't ask for close AND the
// status isn't one of the error classes always closes after.
func (s *Server) decideKeepAlive(req *Request, resp *Response) bool {
	if !s.KeepAlive {
		return false
	}
	if conn, ok := req.Header["connection"]; ok && strings.EqualFold(conn, "close") {
		return false
	}
	return !statusesForcingClose[resp.Status]
}
