// Package web serves the dashboard views over HTTP: the choropleth with its
// hover detail pane, the two ranking panels, the widget embed page and the
// chart-spec pages.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"incomedash/internal/chartspec"
	"incomedash/internal/dash"
	"incomedash/internal/data"
)

// Server holds the loaded data of one dashboard. Loads are retried on the
// next request until they succeed, after which the result is reused.
type Server struct {
	d     *dash.Dashboard
	specs chartspec.Renderer
	l     *slog.Logger

	// one lock per resource so a slow upstream only holds up its own views
	mdMu sync.Mutex
	md   *dash.MapData
	ciMu sync.Mutex
	ci   *data.CityIncome
}

func NewServer(d *dash.Dashboard) *Server {
	return &Server{
		d:     d,
		specs: chartspec.PlotlyRenderer{},
		l:     slog.Default().With(slog.String("module", "web")),
	}
}

// Handler returns the routed dashboard.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.l))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)
	r.Get("/map", s.handleMap)
	r.Get("/map.svg", s.handleMapSVG)
	r.Get("/detail/{state}.svg", s.handleDetailSVG)
	r.Get("/ranking", s.handleRanking)
	r.Get("/ranking/{kind}.svg", s.handleRankingSVG)
	r.Get("/widget", s.handleWidget)
	r.Route("/charts", func(r chi.Router) {
		r.Get("/", s.handleCharts)
		r.Get("/{name}", s.handleChart)
	})
	return r
}

// httpServer leaves room in WriteTimeout for a first request that has to
// wait out a full upstream fetch.
func (s *Server) httpServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.d.Config().HTTP.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := s.httpServer(addr)
	stop := context.AfterFunc(ctx, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.l.Error("shutdown", slog.Any("err", err))
		}
	})
	defer stop()

	s.l.Info("listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) mapData(ctx context.Context) (dash.MapData, error) {
	s.mdMu.Lock()
	defer s.mdMu.Unlock()
	if s.md != nil {
		return *s.md, nil
	}
	md, err := s.d.LoadMap(ctx)
	if err != nil {
		return dash.MapData{}, err
	}
	s.md = &md
	return md, nil
}

func (s *Server) cityIncome(ctx context.Context) (data.CityIncome, error) {
	s.ciMu.Lock()
	defer s.ciMu.Unlock()
	if s.ci != nil {
		return *s.ci, nil
	}
	ci, err := s.d.LoadRanking(ctx)
	if err != nil {
		return data.CityIncome{}, err
	}
	s.ci = &ci
	return ci, nil
}

func requestLogger(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("took", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
