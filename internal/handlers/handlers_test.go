package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"media-browser/internal/config"
	"media-browser/internal/enrichment"
	"media-browser/internal/media"
	"media-browser/internal/pipeline"
)

// fakeClient writes a placeholder thumbnail for every request.
type fakeClient struct {
	mu    sync.Mutex
	calls int
	// gate, when set, blocks the first call until ctx ends.
	gate    bool
	entered chan struct{}
}

func (c *fakeClient) Enrich(ctx context.Context, req enrichment.Request) (media.FileProperties, error) {
	c.mu.Lock()
	c.calls++
	first := c.calls == 1
	c.mu.Unlock()

	if first && c.gate {
		close(c.entered)
		<-ctx.Done()
		return media.FileProperties{}, media.ErrCancelled
	}
	if req.WantThumbnail {
		if err := os.WriteFile(req.ThumbnailPath, []byte("jpeg"), 0o644); err != nil {
			return media.FileProperties{}, err
		}
	}
	return media.FileProperties{ContentType: "image/jpeg", Width: 4, Height: 3}, nil
}

type testServer struct {
	h      *Handlers
	router http.Handler
	root   string
	cfg    string
}

func newTestServer(t *testing.T, client *fakeClient) *testServer {
	t.Helper()
	root := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(cfgPath, config.Config{More: []string{root}}); err != nil {
		t.Fatal(err)
	}

	ctrl := pipeline.New(pipeline.Options{Client: client, ProgressInterval: time.Hour})
	opts := Options{Controller: ctrl, ConfigPath: cfgPath}
	h := New(opts)
	return &testServer{h: h, router: h.Router(opts), root: root, cfg: cfgPath}
}

func (s *testServer) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func writeMedia(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("image"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}
}

func TestListFilesAndThumbnail(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	writeMedia(t, filepath.Join(s.root, "a.jpg"))
	writeMedia(t, filepath.Join(s.root, "sub dir", "b.png"))
	writeMedia(t, filepath.Join(s.root, "notes.txt"))

	rec := s.do(t, http.MethodGet, "/api/files", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var files []media.FileInfo
	if err := json.NewDecoder(rec.Body).Decode(&files); err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}

	urls := map[string]string{}
	for _, f := range files {
		urls[filepath.Base(f.Path)] = f.ThumbnailURL
		if f.Width != 4 || f.ContentType != "image/jpeg" {
			t.Errorf("%s properties = %+v", f.Path, f.FileProperties)
		}
	}
	if urls["a.jpg"] != "/api/thumbnail/0/a.jpg.jpg" {
		t.Errorf("a.jpg thumbnailUrl = %q", urls["a.jpg"])
	}
	if urls["b.png"] != "/api/thumbnail/0/sub%20dir/b.png.jpg" {
		t.Errorf("b.png thumbnailUrl = %q", urls["b.png"])
	}

	rec = s.do(t, http.MethodGet, urls["b.png"], nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("thumbnail status = %d", rec.Code)
	}
	if rec.Body.String() != "jpeg" || rec.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("thumbnail body = %q, type = %q", rec.Body.String(), rec.Header().Get("Content-Type"))
	}
}

func TestListFilesEmpty(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	rec := s.do(t, http.MethodGet, "/api/files", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
	if _, err := os.Stat(filepath.Join(s.root, media.DefaultCacheDirName)); !os.IsNotExist(err) {
		t.Errorf("empty root created a cache directory: %v", err)
	}
}

func TestListFilesSuperseded(t *testing.T) {
	client := &fakeClient{gate: true, entered: make(chan struct{})}
	s := newTestServer(t, client)
	writeMedia(t, filepath.Join(s.root, "a.jpg"))

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- s.do(t, http.MethodGet, "/api/files", nil)
	}()

	select {
	case <-client.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never reached enrichment")
	}

	if rec := s.do(t, http.MethodPost, "/api/reindex", nil); rec.Code != http.StatusAccepted {
		t.Fatalf("reindex status = %d", rec.Code)
	}

	select {
	case rec := <-first:
		if rec.Code != http.StatusConflict {
			t.Errorf("superseded request status = %d, want 409", rec.Code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request did not return")
	}

	waitForStatus(t, s, "1 files", 1)
}

// waitForStatus polls until the status line reads want and the resolved
// file count has been recorded.
func waitForStatus(t *testing.T, s *testServer, want string, files int) StatusResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var status StatusResponse
		rec := s.do(t, http.MethodGet, "/api/status", nil)
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatal(err)
		}
		if status.Text == want && status.Files == files {
			return status
		}
		if time.Now().After(deadline) {
			t.Fatalf("status = %+v, want text %q with %d files", status, want, files)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPutConfigSavesAndRereads(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	other := t.TempDir()
	writeMedia(t, filepath.Join(other, "x.jpg"))
	writeMedia(t, filepath.Join(other, "y.mp4"))

	body, _ := json.Marshal(config.Config{More: []string{other, filepath.Join(other, "missing")}})
	rec := s.do(t, http.MethodPut, "/api/config", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var saved config.Config
	if err := json.NewDecoder(rec.Body).Decode(&saved); err != nil {
		t.Fatal(err)
	}
	if len(saved.More) != 1 || saved.More[0] != other {
		t.Errorf("saved More = %v, want [%s]", saved.More, other)
	}

	loaded, err := config.Load(s.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.More) != 1 || loaded.More[0] != other {
		t.Errorf("config on disk More = %v", loaded.More)
	}

	status := waitForStatus(t, s, "2 files", 2)
	if status.Phase != "idle" {
		t.Errorf("status = %+v", status)
	}
}

func TestPutConfigRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	for _, body := range []string{"not json", `{"unknown": true}`} {
		rec := s.do(t, http.MethodPut, "/api/config", []byte(body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("PUT %q status = %d, want 400", body, rec.Code)
		}
	}
}

func TestGetConfig(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	rec := s.do(t, http.MethodGet, "/api/config", nil)
	var cfg config.Config
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	if len(cfg.More) != 1 || cfg.More[0] != s.root {
		t.Errorf("config More = %v", cfg.More)
	}
}

func TestGetThumbnailErrors(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	writeMedia(t, filepath.Join(s.root, media.DefaultCacheDirName, "plain.txt"))

	tests := []struct {
		path string
		want int
	}{
		{"/api/thumbnail/7/a.jpg.jpg", http.StatusNotFound},
		{"/api/thumbnail/0/missing.jpg", http.StatusNotFound},
		{"/api/thumbnail/0/plain.txt", http.StatusBadRequest},
		{"/api/thumbnail/x/a.jpg", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := s.do(t, http.MethodGet, tt.path, nil); rec.Code != tt.want {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestIsSubPath(t *testing.T) {
	parent := filepath.Join("/data", "root", ".media-browser")
	tests := []struct {
		child string
		want  bool
	}{
		{filepath.Join(parent, "a.jpg"), true},
		{filepath.Join(parent, "sub", "b.jpg"), true},
		{parent, true},
		{filepath.Join(parent, "..", "a.jpg"), false},
		{filepath.Join("/data", "root", ".media-browser-other", "a.jpg"), false},
		{filepath.Join(parent, "..foo.jpg"), true},
	}
	for _, tt := range tests {
		if got := isSubPath(parent, tt.child); got != tt.want {
			t.Errorf("isSubPath(%q) = %v, want %v", tt.child, got, tt.want)
		}
	}
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	rec := s.do(t, http.MethodGet, "/health", nil)
	var health HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || health.Status != statusHealthy || health.Phase != "idle" {
		t.Errorf("health = %d %+v", rec.Code, health)
	}

	rec = s.do(t, http.MethodHead, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD /health = %d, body %q", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/version", nil)
	var info map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info["version"] == "" {
		t.Errorf("version response = %v", info)
	}
}

func TestMetricsRouteOptional(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	if rec := s.do(t, http.MethodGet, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without MetricsEnabled = %d, want 404", rec.Code)
	}

	opts := Options{Controller: pipeline.New(pipeline.Options{Client: &fakeClient{}}), MetricsEnabled: true}
	router := New(opts).Router(opts)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "media_browser_") {
		t.Errorf("/metrics = %d", rec.Code)
	}
}
