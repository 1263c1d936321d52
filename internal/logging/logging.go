// Package logging provides the server's append-only, thread-safe log
// sink. It is grounded on hexinfra-gorox's logger-registry pattern
// (RegisterLogger/Logger interface/noopLogger) generalized just enough
// to cover a file-or-stdout sink, since this server has no pluggable
// log backends beyond that.
package logging

import (
	"log"
	"os"
)

// Logger is the interface the rest of the server logs through.
type Logger interface {
	Logf(format string, args ...any)
	Close() error
}

// fileLogger wraps a standard library *log.Logger, whose Output method
// already serializes concurrent writers under one mutex — the server
// never needs to re-implement that guarantee, only to own the sink.
type fileLogger struct {
	std *log.Logger
	f   *os.File // nil when writing to an inherited stream (stdout)
}

// Open returns a Logger writing to path, or to os.Stdout if toStdout is
// true (set by the -v flag). An error is returned if the sink cannot be
// created.
func Open(path string, toStdout bool) (Logger, error) {
	if toStdout {
		return &fileLogger{std: log.New(os.Stdout, "", log.LstdFlags)}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &fileLogger{std: log.New(f, "", log.LstdFlags), f: f}, nil
}

func (l *fileLogger) Logf(format string, args ...any) {
	l.std.Printf(format, args...)
}

func (l *fileLogger) Close() error {
	if l.f != nil {
		return l.f.Close()
	}
	return nil
}

// Noop discards everything logged through it; used by tests that don't
// care about log output.
type Noop struct{}

func (Noop) Logf(string, ...any) {}
func (Noop) Close() error        { return nil }

// AccessLine formats the one-line-per-completed-request access record:
// peer address, method, URL, status code.
func AccessLine(logger Logger, peer, method, url string, status int) {
	logger.Logf("%s %s %s %d", peer, method, url, status)
}
