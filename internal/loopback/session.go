// Package loopback serves a handler on an ephemeral 127.0.0.1 port for the
// lifetime of one view. A Session is a scoped resource: whoever opens it must
// close it, and closing twice is harmless.
package loopback

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

var ErrClosed = errors.New("loopback: session closed")

type Session struct {
	srv  *http.Server
	ln   net.Listener
	url  string

	mu   sync.Mutex
	stop func() bool

	once sync.Once
	err  error
	done chan struct{}
	l    *slog.Logger
}

// Open starts serving h. Cancelling ctx closes the session.
func Open(ctx context.Context, h http.Handler) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Session{
		srv:  &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second},
		ln:   ln,
		url:  "http://" + ln.Addr().String() + "/",
		done: make(chan struct{}),
		l:    slog.Default().With(slog.String("module", "loopback")),
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("serve", slog.Any("err", err))
		}
	}()
	s.mu.Lock()
	s.stop = context.AfterFunc(ctx, func() { _ = s.Close() })
	s.mu.Unlock()
	s.l.Debug("opened", slog.String("url", s.url))
	return s, nil
}

// URL is the root URL of the session, with a trailing slash.
func (s *Session) URL() string { return s.url }

// Close shuts the server down and waits for it to stop. Only the first call
// does any work; later calls return the same result.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		stop := s.stop
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.err = s.srv.Shutdown(ctx)
		<-s.done
		s.l.Debug("closed", slog.String("url", s.url))
	})
	return s.err
}

// Closed reports whether Close has completed.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
