package stats

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/moodmap/internal/heatmap"
	"github.com/ayoisaiah/moodmap/internal/models"
	"github.com/ayoisaiah/moodmap/internal/timeutil"
)

//go:embed web/*
var web embed.FS

var tpl = template.Must(
	template.New("index.html").Funcs(template.FuncMap{
		"color": func(e models.Emotion) template.CSS {
			//nolint:gosec // built from a fixed palette
			return template.CSS(heatmap.BaseColor(e).String())
		},
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},
	}).ParseFS(web, "web/index.html"),
)

// HistoryFunc returns the samples to report on.
type HistoryFunc func(ctx context.Context) ([]models.Sample, error)

type TemplateData struct {
	Summary Summary
	Span    string
	Since   string
	Until   string
}

type errorHandler func(w http.ResponseWriter, r *http.Request) error

func (h errorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h(w, r)
	if err != nil {
		slog.Error("stats request failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Server serves the analytics over HTTP.
type Server struct {
	history HistoryFunc
	now     func() time.Time
}

func NewServer(history HistoryFunc) *Server {
	return &Server{
		history: history,
		now:     time.Now,
	}
}

// Handler returns the router for the analytics pages.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/", errorHandler(s.Index))
	r.Method(http.MethodGet, "/api/summary", errorHandler(s.APISummary))

	return r
}

func (s *Server) summary(r *http.Request) (Summary, Options, error) {
	query := r.URL.Query()
	now := s.now()

	since, err := timeutil.Since(query.Get("since"), now)
	if err != nil {
		return Summary{}, Options{}, err
	}

	until, err := timeutil.Until(query.Get("until"), now)
	if err != nil {
		return Summary{}, Options{}, err
	}

	opts := Options{Since: since, Until: until}

	history, err := s.history(r.Context())
	if err != nil {
		return Summary{}, opts, err
	}

	return Compute(history, opts), opts, nil
}

func (s *Server) Index(w http.ResponseWriter, r *http.Request) error {
	sum, opts, err := s.summary(r)
	if err != nil {
		return err
	}

	data := &TemplateData{
		Summary: sum,
		Span:    sum.SpanString(),
	}

	if !opts.Since.IsZero() {
		data.Since = opts.Since.Format(time.RFC3339)
	}

	if !opts.Until.IsZero() {
		data.Until = opts.Until.Format(time.RFC3339)
	}

	var buf bytes.Buffer

	err = tpl.Execute(&buf, data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	_, err = w.Write(buf.Bytes())

	return err
}

func (s *Server) APISummary(w http.ResponseWriter, r *http.Request) error {
	sum, _, err := s.summary(r)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")

	return json.NewEncoder(w).Encode(sum)
}

// ListenAndServe serves the analytics on port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port uint) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	pterm.Info.Printfln("serving analytics on http://%s", srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
