package web

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"slices"

	"github.com/justestif/go-music-cluster-explorer/internal/clustering"
	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

// errorResponse is the JSON body of failed API calls.
type errorResponse struct {
	Error string `json:"error"`
}

type clustersResponse struct {
	Labels     []int `json:"labels"`
	TotalSongs int   `json:"total_songs"`
}

type clusterResponse struct {
	Label           int                 `json:"label"`
	Count           int                 `json:"count"`
	Title           string              `json:"title,omitempty"`
	Description     string              `json:"description"`
	Profile         map[string]*float64 `json:"profile"`
	Representatives []songResponse      `json:"representatives"`
}

type songResponse struct {
	TrackName *string             `json:"track_name,omitempty"`
	Artist    *string             `json:"artist,omitempty"`
	Cluster   *int                `json:"cluster"`
	Features  map[string]*float64 `json:"features"`
}

type songsResponse struct {
	Label     int            `json:"label"`
	Requested int            `json:"requested"`
	Songs     []songResponse `json:"songs"`
}

type pointResponse struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label *int    `json:"label"`
}

type projectionResponse struct {
	Points []pointResponse `json:"points"`
}

// APIClusters lists cluster labels (GET /api/clusters).
func (h *Handlers) APIClusters(w http.ResponseWriter, r *http.Request) {
	ov := h.explorer.Overview()
	if !ov.Valid {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: ov.Message})
		return
	}
	if notModified(w, r, ov.Version) {
		return
	}
	writeJSON(w, http.StatusOK, clustersResponse{Labels: ov.Labels, TotalSongs: ov.TotalSongs})
}

// APICluster returns one cluster's count, description and profile
// (GET /api/clusters/{label}).
func (h *Handlers) APICluster(w http.ResponseWriter, r *http.Request) {
	label, err := labelParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	view, err := h.explorer.Cluster(label)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	if notModified(w, r, view.Version) {
		return
	}

	resp := clusterResponse{
		Label:           view.Label,
		Count:           view.Count,
		Title:           view.Description.Title,
		Description:     view.Description.Summary,
		Profile:         profileJSON(view.Profile),
		Representatives: make([]songResponse, 0, len(view.Representatives)),
	}
	for _, rep := range view.Representatives {
		resp.Representatives = append(resp.Representatives, songJSON(rep.Song, true))
	}
	writeJSON(w, http.StatusOK, resp)
}

// APISongs returns a random sample of a cluster (GET /api/clusters/{label}/songs?n=).
// Samples are random on every call, so no ETag is set.
func (h *Handlers) APISongs(w http.ResponseWriter, r *http.Request) {
	label, err := labelParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	table, err := h.explorer.Songs(label, sizeParam(r))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	withText := slices.Contains(table.Columns, dataset.TrackNameColumn) ||
		slices.Contains(table.Columns, dataset.ArtistColumn)

	resp := songsResponse{
		Label:     table.Label,
		Requested: table.Requested,
		Songs:     make([]songResponse, 0, len(table.Songs)),
	}
	for _, s := range table.Songs {
		resp.Songs = append(resp.Songs, songJSON(s, withText))
	}
	writeJSON(w, http.StatusOK, resp)
}

// APIProjection returns the PCA projection of every song (GET /api/projection).
func (h *Handlers) APIProjection(w http.ResponseWriter, r *http.Request) {
	proj, err := h.explorer.Projection()
	if err != nil {
		status := http.StatusServiceUnavailable
		var missing *clustering.MissingFeatureError
		if errors.As(err, &missing) || errors.Is(err, clustering.ErrEmptyDataset) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	if notModified(w, r, proj.Version) {
		return
	}

	resp := projectionResponse{Points: make([]pointResponse, len(proj.Points))}
	for i, p := range proj.Points {
		resp.Points[i] = pointResponse{X: p.X, Y: p.Y, Label: p.Label}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health reports whether the dataset is usable (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ov := h.explorer.Overview()
	if !ov.Valid {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "invalid", "error": ov.Message})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": ov.Version})
}

// notModified sets the ETag for version and answers 304 when the client
// already has it.
func notModified(w http.ResponseWriter, r *http.Request, version string) bool {
	etag := `"` + version + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// profileJSON encodes NaN means as null, which JSON cannot represent.
func profileJSON(p clustering.Profile) map[string]*float64 {
	out := make(map[string]*float64, dataset.NumFeatures)
	for i, name := range dataset.FeatureNames {
		if m := p.Means[i]; !math.IsNaN(m) {
			out[name] = &m
		} else {
			out[name] = nil
		}
	}
	return out
}

func songJSON(s dataset.Song, withText bool) songResponse {
	resp := songResponse{
		Cluster:  s.Cluster,
		Features: make(map[string]*float64, dataset.NumFeatures),
	}
	if withText {
		resp.TrackName = &s.TrackName
		resp.Artist = &s.Artist
	}
	for i, v := range s.Values() {
		resp.Features[dataset.FeatureNames[i]] = v
	}
	return resp
}
