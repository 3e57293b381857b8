package web

import (
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
	webfs "github.com/justestif/go-music-cluster-explorer/web"
)

const header = "track_name,artist,danceability,energy,acousticness,instrumentalness,speechiness,tempo,valence,loudness,cluster\n"

const songsCSV = header +
	"Song A,Artist 1,0.5,0.8,0.1,0.0,0.05,120,0.6,-5,0\n" +
	"Song B,Artist 2,0.7,0.7,0.2,0.1,0.04,118,0.7,-6,0\n" +
	"Song C,Artist 3,0.9,0.9,0.1,0.0,0.06,126,0.8,-4,0\n" +
	"Song D,Artist 4,0.2,0.2,0.9,0.1,0.03,80,0.3,-15,1\n" +
	"Song E,Artist 5,0.4,0.3,0.8,0.2,0.03,84,0.2,-14,1\n"

func newTestServer(t *testing.T, content string) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "songs.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	templatesFS, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		t.Fatal(err)
	}
	staticFS, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		t.Fatal(err)
	}

	svc := explorer.New(dataset.NewCache(dataset.WithLogger(log)), path, explorer.WithLogger(log))
	srv, err := NewServer(ServerConfig{
		Explorer:    svc,
		Logger:      log,
		TemplatesFS: templatesFS,
		StaticFS:    staticFS,
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return srv
}

func get(t *testing.T, srv *Server, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresExplorer(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatal("expected error without explorer service")
	}
}

func TestHomeRedirectsToFirstCluster(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	rec := get(t, srv, "/")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/clusters/0" {
		t.Errorf("Location = %q, want /clusters/0", loc)
	}
}

func TestHomeWithoutLabels(t *testing.T) {
	unlabelled := header + "Song A,Artist 1,0.5,0.8,0.1,0.0,0.05,120,0.6,-5,\n"
	srv := newTestServer(t, unlabelled)

	rec := get(t, srv, "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestClusterPage(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	tests := []struct {
		name    string
		target  string
		want    []string
		notWant []string
	}{
		{
			name:   "all sections",
			target: "/clusters/0",
			want: []string{
				"Cluster 0 contains 3 songs.",
				"Feature Profile",
				"<svg",
				"Showing up to 30 random songs from Cluster 0.",
				"Song A",
			},
		},
		{
			name:    "sections switched off",
			target:  "/clusters/1?profile=0&pca=0&songs=0",
			want:    []string{"Cluster 1 contains 2 songs."},
			notWant: []string{"Feature Profile", "<svg", "Sample Songs"},
		},
		{
			name:   "unknown cluster",
			target: "/clusters/7?pca=0",
			want: []string{
				"Cluster 7 contains 0 songs.",
				"No feature data for this cluster.",
				"No songs in Cluster 7.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
			}
			body := rec.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body unexpectedly contains %q", s)
				}
			}
		})
	}
}

func TestClusterPageBadLabel(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	rec := get(t, srv, "/clusters/abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "cluster label must be an integer") {
		t.Errorf("body missing label error: %s", rec.Body.String())
	}
}

func TestClusterPageInvalidDataset(t *testing.T) {
	missingTempo := "danceability,energy,acousticness,instrumentalness,speechiness,valence,loudness,cluster\n" +
		"0.5,0.8,0.1,0.0,0.05,0.6,-5,0\n"
	srv := newTestServer(t, missingTempo)

	rec := get(t, srv, "/clusters/0")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "missing required column: tempo") {
		t.Errorf("body missing schema error: %s", body)
	}
	if strings.Contains(body, "Feature Profile") {
		t.Error("invalid dataset should not render cluster sections")
	}
}

func TestClusterPageProjectionError(t *testing.T) {
	withNull := songsCSV + "Song F,Artist 6,0.3,,0.5,0.0,0.02,100,0.5,-8,1\n"
	srv := newTestServer(t, withNull)

	rec := get(t, srv, "/clusters/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "energy") || !strings.Contains(body, "flash-error") {
		t.Errorf("expected projection error banner, got: %s", body)
	}
	if strings.Contains(body, "<svg") {
		t.Error("scatter plot should not render when projection fails")
	}
}

func TestSongsFragment(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	rec := get(t, srv, "/clusters/1/songs?n=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Showing up to 1 random songs from Cluster 1.") {
		t.Errorf("fragment missing hint: %s", body)
	}
	if strings.Count(body, "<tr>") != 2 {
		t.Errorf("expected header plus one row, got %d rows", strings.Count(body, "<tr>"))
	}
	if strings.Contains(body, "<html") {
		t.Error("fragment should not include the layout")
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	rec := get(t, srv, "/static/style.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAPIClusters(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	rec := get(t, srv, "/api/clusters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp clustersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalSongs != 5 {
		t.Errorf("TotalSongs = %d, want 5", resp.TotalSongs)
	}
	if len(resp.Labels) != 2 || resp.Labels[0] != 0 || resp.Labels[1] != 1 {
		t.Errorf("Labels = %v, want [0 1]", resp.Labels)
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	rec = get(t, srv, "/api/clusters", "If-None-Match", etag)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want %d", rec.Code, http.StatusNotModified)
	}
}

func TestAPICluster(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	tests := []struct {
		name          string
		target        string
		wantStatus    int
		wantCount     int
		wantNullMeans bool
	}{
		{name: "known cluster", target: "/api/clusters/1", wantStatus: http.StatusOK, wantCount: 2},
		{name: "unknown cluster", target: "/api/clusters/9", wantStatus: http.StatusOK, wantCount: 0, wantNullMeans: true},
		{name: "bad label", target: "/api/clusters/x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp clusterResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", resp.Count, tt.wantCount)
			}
			if len(resp.Profile) != dataset.NumFeatures {
				t.Fatalf("profile has %d features, want %d", len(resp.Profile), dataset.NumFeatures)
			}
			dance := resp.Profile["danceability"]
			if tt.wantNullMeans {
				if dance != nil {
					t.Errorf("danceability = %v, want null", *dance)
				}
				return
			}
			if dance == nil || *dance < 0.299 || *dance > 0.301 {
				t.Errorf("danceability = %v, want 0.3", dance)
			}
		})
	}
}

func TestAPISongs(t *testing.T) {
	srv := newTestServer(t, songsCSV)

	rec := get(t, srv, "/api/clusters/0/songs?n=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp songsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Requested != 2 || len(resp.Songs) != 2 {
		t.Fatalf("got %d songs (requested %d), want 2", len(resp.Songs), resp.Requested)
	}
	for _, s := range resp.Songs {
		if s.Cluster == nil || *s.Cluster != 0 {
			t.Errorf("song from wrong cluster: %v", s.Cluster)
		}
		if s.TrackName == nil || *s.TrackName == "" {
			t.Error("expected track name")
		}
	}
}

func TestAPISongsWithoutTextColumns(t *testing.T) {
	featuresOnly := "danceability,energy,acousticness,instrumentalness,speechiness,tempo,valence,loudness,cluster\n" +
		"0.5,0.8,0.1,0.0,0.05,120,0.6,-5,0\n" +
		"0.7,0.7,0.2,0.1,0.04,118,0.7,-6,0\n"
	srv := newTestServer(t, featuresOnly)

	rec := get(t, srv, "/api/clusters/0/songs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp songsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Songs) != 2 {
		t.Fatalf("got %d songs, want 2", len(resp.Songs))
	}
	for _, s := range resp.Songs {
		if s.TrackName != nil || s.Artist != nil {
			t.Errorf("text fields present without text columns: %+v", s)
		}
		if len(s.Features) != dataset.NumFeatures {
			t.Errorf("got %d features, want %d", len(s.Features), dataset.NumFeatures)
		}
	}
}

func TestAPIProjection(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStatus int
		wantPoints int
	}{
		{name: "complete dataset", content: songsCSV, wantStatus: http.StatusOK, wantPoints: 5},
		{
			name:       "null feature",
			content:    songsCSV + "Song F,Artist 6,0.3,,0.5,0.0,0.02,100,0.5,-8,1\n",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.content)

			rec := get(t, srv, "/api/projection")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp projectionResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if len(resp.Points) != tt.wantPoints {
				t.Errorf("got %d points, want %d", len(resp.Points), tt.wantPoints)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStatus int
	}{
		{name: "valid", content: songsCSV, wantStatus: http.StatusOK},
		{name: "ragged", content: header + "only,two\n", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.content)
			rec := get(t, srv, "/healthz")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
