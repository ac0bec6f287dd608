package viewer

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"owcs-analyzer/internal/export"
)

//go:embed templates/*
var templates embed.FS

var chartExtensions = []string{".png", ".svg"}

// Chart is one rendered image in the output directory
type Chart struct {
	File  string
	Title string
}

// PageData is rendered by the gallery template
type PageData struct {
	Manifest *export.Manifest
	HasData  bool
	Stale    bool
	Charts   []Chart
}

// Server serves an analyzer output directory
type Server struct {
	dir  string
	tmpl *template.Template
	log  *zap.SugaredLogger
}

// NewServer creates a viewer for dir
func NewServer(dir string, log *zap.SugaredLogger) (*Server, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{dir: dir, tmpl: tmpl, log: log.Named("viewer")}, nil
}

// Router returns the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/charts/{name}", s.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/api/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	return r
}

// Handler wraps the router with request logging
func (s *Server) Handler() http.Handler {
	access := zap.NewStdLog(s.log.Desugar().Named("access")).Writer()
	return handlers.LoggingHandler(access, s.Router())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	charts, err := s.charts()
	if err != nil {
		s.log.Errorf("Failed to list charts: %v", err)
		http.Error(w, "failed to list charts", http.StatusInternalServerError)
		return
	}

	data := PageData{Charts: charts}
	m, err := export.Verify(s.dir)
	switch {
	case err == nil:
		data.Manifest, data.HasData = m, true
	case errors.Is(err, export.ErrChecksumMismatch):
		data.Manifest, data.HasData, data.Stale = m, true, true
		s.log.Warnf("Serving stale export: %v", err)
	case !errors.Is(err, fs.ErrNotExist):
		s.log.Warnf("Ignoring unreadable export: %v", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Errorf("Failed to render index: %v", err)
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !isChartFile(name) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.dir, name))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.dir, export.DataFile)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "no report exported", http.StatusNotFound)
		return
	}
	if _, err := export.Verify(s.dir); errors.Is(err, export.ErrChecksumMismatch) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, path)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// charts lists chart images in the output directory, sorted by file name
func (s *Server) charts() ([]Chart, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var charts []Chart
	for _, e := range entries {
		if e.IsDir() || !isChartFile(e.Name()) {
			continue
		}
		charts = append(charts, Chart{File: e.Name(), Title: titleFromFile(e.Name())})
	}
	return charts, nil
}

// isChartFile accepts plain image file names only, never paths
func isChartFile(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(chartExtensions, strings.ToLower(filepath.Ext(name)))
}

// titleFromFile turns "top-20-most-banned-heroes.png" into "top 20 most banned heroes"
func titleFromFile(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, filepath.Ext(name)), "-", " ")
}
