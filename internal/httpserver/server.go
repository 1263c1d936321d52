package httpserver

import (
	"net"
	"strconv"
	"time"

	"github.com/chorn/czhttpd/internal/compress"
	"github.com/chorn/czhttpd/internal/logging"
)

// Server owns the listen socket and the bounded pool of connection
// workers: a goroutine-per-connection accept loop with a hard ceiling
// on concurrently live connections, enforced by a semaphore.
type Server struct {
	Addr           string
	Port           uint16
	MaxConn        int
	KeepAlive      bool
	IdleTimeout    time.Duration
	RecvTimeout    time.Duration
	MaxBodyBytes   int64
	ServerSoftware string
	Compress       compress.Config

	Route  func(req *Request) *Response
	Logger logging.Logger

	listener net.Listener
	sem      *semaphore
	closing  chan struct{}
}

// Listen binds the configured port. rejects ports <= 1024
// at config-validation time, not here; Listen just binds whatever port
// it's given.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.Addr, strconv.Itoa(int(s.Port))))
	if err != nil {
		return err
	}
	s.listener = ln
	s.sem = newSemaphore(s.MaxConn)
	s.closing = make(chan struct{})
	return nil
}

// Serve runs the accept loop until the listener is closed by Shutdown.
func (s *Server) Serve() {
	for {
		c, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return
			default:
				continue
			}
		}
		if !s.sem.TryAcquire() {
			s.Logger.Logf("%s overload: %d", c.RemoteAddr(), 503)
			writeErrorDirect(c, 503)
			c.Close()
			continue
		}
		go s.runWorker(c)
	}
}

// Shutdown closes the listen socket; in-flight workers are not
// interrupted and keep serving their connections until those close.
func (s *Server) Shutdown() error {
	if s.closing != nil {
		close(s.closing)
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
