// Package web serves the host page for the region selectors together with a
// small JSON API over the same dataset.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/adrianmross/region-select/pkg/regions"
	"github.com/adrianmross/region-select/pkg/selector"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// discardLog backs the per-request selectors; a load failure is logged once
// at startup, not on every page view.
var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// Server renders the selectors from a dataset loaded once at startup. When
// the load failed, loadErr is kept and every page carries the failure alert.
type Server struct {
	ds       *regions.Dataset
	loadErr  error
	settings selector.Settings
	title    string
	log      *slog.Logger
}

// New returns a Server. Exactly one of ds and loadErr is expected to be set.
func New(ds *regions.Dataset, loadErr error, settings selector.Settings, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		ds:       ds,
		loadErr:  loadErr,
		settings: settings.WithDefaults(),
		title:    "Jihohi da LGA",
		log:      log,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/nigeria.json", s.handleDataset).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/regions", s.handleRegions).Methods(http.MethodGet)
	api.HandleFunc("/regions/{region}/sub-regions", s.handleSubRegions).Methods(http.MethodGet)
	api.HandleFunc("/regions/{region}/options", s.handleOptions).Methods(http.MethodGet)
	return r
}

// Handler wraps the router with recovery, compression and access logging.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	var h http.Handler = s.Router()
	h = handlers.CompressHandler(h)
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("web server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type pageOption struct {
	Value    string
	Text     string
	Selected bool
}

type pageSelect struct {
	ID      string
	Options []pageOption
}

type page struct {
	Title     string
	Primary   pageSelect
	Secondary pageSelect
	Alert     string
}

func toPageSelect(s *selector.Select) pageSelect {
	out := pageSelect{ID: s.ID}
	for _, o := range s.Options() {
		out.Options = append(out.Options, pageOption{Value: o.Value, Text: o.Text, Selected: o.Value == s.Value() && o.Value != ""})
	}
	return out
}

func (s *Server) load(context.Context) (*regions.Dataset, error) {
	return s.ds, s.loadErr
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := page{Title: s.title}
	sel := selector.NewDefault(s.settings, selector.NotifierFunc(func(msg string) { p.Alert = msg }), discardLog)
	if err := sel.Initialize(r.Context(), s.load); err == nil {
		q := r.URL.Query()
		sel.Choose(q.Get(selector.PrimaryID), q.Get(selector.SecondaryID))
	}
	p.Primary = toPageSelect(sel.Primary)
	p.Secondary = toPageSelect(sel.Secondary)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, p); err != nil {
		s.log.Error("render index", "error", err)
	}
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.ds)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.ds.Regions())
}

func (s *Server) handleSubRegions(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	subs, ok := s.ds.SubRegions(mux.Vars(r)["region"])
	if !ok {
		subs = []string{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, selector.SecondaryOptions(s.ds, s.settings.Placeholder, mux.Vars(r)["region"]))
}

// available writes a 503 carrying the failure message when no dataset is loaded.
func (s *Server) available(w http.ResponseWriter) bool {
	if s.ds != nil {
		return true
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": s.settings.FailureMessage})
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
