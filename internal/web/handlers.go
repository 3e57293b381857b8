package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
)

const pageTitle = "Music Clustering Explorer"

// errInvalidLabel is returned when a cluster label cannot be parsed.
var errInvalidLabel = errors.New("cluster label must be an integer")

// Handlers contains HTTP handlers for the dashboard.
type Handlers struct {
	explorer  *explorer.Service
	templates *Templates
	log       logrus.FieldLogger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *explorer.Service, templates *Templates, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		explorer:  svc,
		templates: templates,
		log:       log,
	}
}

// Home redirects to the first cluster (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	ov := h.explorer.Overview()
	if !ov.Valid {
		h.renderError(w, r, http.StatusServiceUnavailable, ov.Message)
		return
	}
	if len(ov.Labels) == 0 {
		h.renderError(w, r, http.StatusServiceUnavailable, "Dataset contains no labelled songs.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/clusters/%d", ov.Labels[0]), http.StatusFound)
}

// Cluster renders the cluster page (GET /clusters/{label}).
// Query parameters profile, pca and songs toggle the optional sections.
func (h *Handlers) Cluster(w http.ResponseWriter, r *http.Request) {
	label, err := labelParam(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// One snapshot per request keeps every section on the same dataset
	// version. An invalid dataset halts the page before any aggregation runs.
	sn, err := h.explorer.Snapshot()
	if err != nil {
		h.renderError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	ov := sn.Overview()
	view := sn.Cluster(label)

	toggles := Toggles{
		Profile: toggleParam(r, "profile"),
		PCA:     toggleParam(r, "pca"),
		Songs:   toggleParam(r, "songs"),
	}

	data := ClusterPageData{
		PageData: PageData{
			Title:       fmt.Sprintf("Cluster %d | %s", label, pageTitle),
			CurrentPath: r.URL.Path,
			Flash: &FlashMessage{
				Type:    "info",
				Message: fmt.Sprintf("Cluster %d contains %s songs.", label, clustering.FormatCount(view.Count)),
			},
		},
		Labels:     ov.Labels,
		TotalSongs: ov.TotalSongs,
		Cluster:    view,
		Toggles:    toggles,
	}

	if toggles.Profile {
		data.Profile = newBarChart(view.Profile)
	}

	if toggles.PCA {
		proj, err := sn.Projection()
		if err != nil {
			data.ScatterError = err.Error()
		} else {
			data.Scatter = newScatterPlot(proj)
		}
	}

	if toggles.Songs {
		data.Songs = newSongTable(sn.Songs(label, 0))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "cluster", data); err != nil {
		h.log.WithError(err).Error("Rendering cluster page")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// SongsFragment renders a fresh random sample (GET /clusters/{label}/songs).
func (h *Handlers) SongsFragment(w http.ResponseWriter, r *http.Request) {
	label, err := labelParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := h.explorer.Songs(label, sizeParam(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.RenderPartial(w, "songs", newSongTable(table)); err != nil {
		h.log.WithError(err).Error("Rendering songs partial")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
}

// renderError renders the error page with the given status.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := ErrorPageData{
		PageData: PageData{
			Title:       pageTitle,
			CurrentPath: r.URL.Path,
			Flash:       &FlashMessage{Type: "error", Message: message},
		},
		Status:  status,
		Message: message,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "error", data); err != nil {
		h.log.WithError(err).Error("Rendering error page")
	}
}

// labelParam parses the {label} URL parameter.
func labelParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "label")
	label, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidLabel, raw)
	}
	return label, nil
}

// toggleParam reads an on/off query parameter. Sections are on unless
// explicitly switched off.
func toggleParam(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

// sizeParam reads the sample size from ?n=. Zero means the default.
func sizeParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
