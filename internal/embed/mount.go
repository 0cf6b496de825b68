package embed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"incomedash/internal/loopback"
)

var ErrMounted = errors.New("embed: widget already mounted")

// Mount owns the loopback page showing one widget. Open acquires it, Close
// releases it; Close is safe to call on every exit path, in any state.
type Mount struct {
	w Widget

	mu sync.Mutex
	s  *loopback.Session
}

func NewMount(w Widget) *Mount {
	return &Mount{w: w}
}

// Handler serves the widget page at /.
func (m *Mount) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := m.w.WritePage(rw); err != nil {
			slog.Error("embed: write page", slog.Any("err", err))
		}
	})
	return r
}

// Open starts the page and returns its URL.
func (m *Mount) Open(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s != nil && !m.s.Closed() {
		return "", ErrMounted
	}
	s, err := loopback.Open(ctx, m.Handler())
	if err != nil {
		return "", err
	}
	m.s = s
	return s.URL(), nil
}

// URL is the page address, or "" when not mounted.
func (m *Mount) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil || m.s.Closed() {
		return ""
	}
	return m.s.URL()
}

func (m *Mount) Close() error {
	m.mu.Lock()
	s := m.s
	m.s = nil
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}
