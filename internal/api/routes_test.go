package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"clipforge/internal/config"
	"clipforge/internal/engine"
	"clipforge/internal/exporter"
	"clipforge/internal/media"
	"clipforge/internal/timeline"
)

// fakeEngine is an in-memory engine.Engine for handler tests. Submit
// writes the single-file output unless a hook is installed.
type fakeEngine struct {
	mu     sync.Mutex
	files  map[string][]byte
	submit func(ctx context.Context, req engine.SubmitRequest) error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{files: make(map[string][]byte)}
}

func (f *fakeEngine) Load(ctx context.Context) error { return nil }

func (f *fakeEngine) Write(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = data
	return nil
}

func (f *fakeEngine) Read(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", name)
	}
	return data, nil
}

func (f *fakeEngine) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeEngine) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	return nil
}

func (f *fakeEngine) Submit(ctx context.Context, req engine.SubmitRequest) error {
	if f.submit != nil {
		return f.submit(ctx, req)
	}
	return f.Write("output.mp4", []byte("encoded"))
}

type testEnv struct {
	router   http.Handler
	exporter *exporter.Exporter
	engine   *fakeEngine
	source   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	source := filepath.Join(t.TempDir(), "source.mp4")
	if err := os.WriteFile(source, []byte("media"), 0644); err != nil {
		t.Fatal(err)
	}

	logger := zerolog.New(io.Discard)
	eng := newFakeEngine()
	exp := exporter.New(logger, eng, config.ExportConfig{})

	cfg := &ServerConfig{
		Library:  media.NewLibrary(logger),
		Timeline: timeline.New(logger, nil),
		Exporter: exp,
		Logger:   logger,
	}

	return &testEnv{
		router:   NewRouter(cfg),
		exporter: exp,
		engine:   eng,
		source:   source,
	}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (env *testEnv) addAsset(t *testing.T) assetResponse {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/assets", assetRequest{
		Name:            "source.mp4",
		SourceHandle:    env.source,
		DurationSeconds: 5,
		Width:           1920,
		Height:          1080,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add asset status = %d: %s", rec.Code, rec.Body.String())
	}
	return decode[assetResponse](t, rec)
}

func (env *testEnv) addClip(t *testing.T, assetID string) clipResponse {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/clips", clipRequest{AssetID: assetID, TrackID: "video-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add clip status = %d: %s", rec.Code, rec.Body.String())
	}
	return decode[clipResponse](t, rec)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[healthResponse](t, rec)
	if resp.Status != "ok" || resp.Version == "" {
		t.Errorf("health = %+v", resp)
	}
}

func TestAssetRegistration(t *testing.T) {
	env := newTestEnv(t)

	asset := env.addAsset(t)
	if asset.ID == "" || asset.DurationSeconds != 5 {
		t.Errorf("asset = %+v", asset)
	}

	rec := env.do(t, http.MethodGet, "/assets", nil)
	assets := decode[[]assetResponse](t, rec)
	if len(assets) != 1 || assets[0].ID != asset.ID {
		t.Errorf("assets = %+v", assets)
	}

	rec = env.do(t, http.MethodPost, "/assets", assetRequest{Name: "bad.mp4", DurationSeconds: 0})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero-duration asset status = %d", rec.Code)
	}
}

func TestClipLifecycle(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t)

	rec := env.do(t, http.MethodPost, "/clips", clipRequest{AssetID: "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown asset status = %d", rec.Code)
	}

	clip := env.addClip(t, asset.ID)
	if clip.TrimEnd != 5 || clip.Effects.Contrast != 1 {
		t.Errorf("clip defaults = %+v", clip)
	}

	rec = env.do(t, http.MethodGet, "/timeline", nil)
	tl := decode[timelineResponse](t, rec)
	if len(tl.Clips) != 1 || tl.Duration != 5 {
		t.Errorf("timeline = %+v", tl)
	}

	rec = env.do(t, http.MethodDelete, "/clips/"+clip.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/clips/"+clip.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestClipUpdate(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t)
	clip := env.addClip(t, asset.ID)

	trimStart, trimEnd, position := 1.0, 4.0, 2.5
	rec := env.do(t, http.MethodPatch, "/clips/"+clip.ID, clipUpdateRequest{
		TrimStart:        &trimStart,
		TrimEnd:          &trimEnd,
		TimelinePosition: &position,
		Effects: &effectsSchema{
			Contrast:   1.2,
			Saturation: 1,
			Volume:     1,
			Blur:       3,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	updated := decode[clipResponse](t, rec)
	if updated.TrimStart != 1 || updated.TrimEnd != 4 || updated.TimelinePosition != 2.5 {
		t.Errorf("updated clip = %+v", updated)
	}
	if updated.Effects.Blur != 3 || updated.Effects.Contrast != 1.2 {
		t.Errorf("updated effects = %+v", updated.Effects)
	}

	badEnd := 99.0
	rec = env.do(t, http.MethodPatch, "/clips/"+clip.ID, clipUpdateRequest{TrimEnd: &badEnd})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid trim status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/clips/ghost", clipUpdateRequest{})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown clip status = %d", rec.Code)
	}
}

func TestTextLayerEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/text-layers", textLayerRequest{Text: "Hello", StartTime: 0, EndTime: 3})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add text layer status = %d: %s", rec.Code, rec.Body.String())
	}
	layer := decode[textLayerResponse](t, rec)
	if layer.FontSize != 48 || layer.Color != "white" {
		t.Errorf("layer defaults = %+v", layer)
	}

	rec = env.do(t, http.MethodPost, "/text-layers", textLayerRequest{Text: "", StartTime: 0, EndTime: 3})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty text status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/text-layers/"+layer.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestPreviewEndpoints(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t)
	env.addClip(t, asset.ID)

	rec := env.do(t, http.MethodGet, "/preview", nil)
	state := decode[previewStateResponse](t, rec)
	if state.Playing || state.CurrentTime != 0 {
		t.Errorf("initial state = %+v", state)
	}

	rec = env.do(t, http.MethodPost, "/preview/seek", previewSeekRequest{Time: 3})
	state = decode[previewStateResponse](t, rec)
	if state.CurrentTime != 3 {
		t.Errorf("seek state = %+v", state)
	}

	// Seeks clamp to the timeline duration (one 5s clip).
	rec = env.do(t, http.MethodPost, "/preview/seek", previewSeekRequest{Time: 100})
	state = decode[previewStateResponse](t, rec)
	if state.CurrentTime != 5 {
		t.Errorf("clamped seek state = %+v", state)
	}

	rec = env.do(t, http.MethodPost, "/preview/stop", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("stop status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/preview", nil)
	state = decode[previewStateResponse](t, rec)
	if state.CurrentTime != 0 {
		t.Errorf("state after stop = %+v", state)
	}
}

func TestExportEmptyTimeline(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/export", exportRequest{Format: "mp4", Quality: "medium"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	// The failed attempt is observable as a failed job with guidance.
	rec = env.do(t, http.MethodGet, "/export/job", nil)
	job := decode[jobResponse](t, rec)
	if job.Stage != string(exporter.StageFailed) || len(job.Troubleshooting) == 0 {
		t.Errorf("job = %+v", job)
	}
}

func TestExportFlow(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t)
	env.addClip(t, asset.ID)

	rec := env.do(t, http.MethodPost, "/export", exportRequest{Format: "mp4", Quality: "high"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := env.exporter.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	rec = env.do(t, http.MethodGet, "/export/job", nil)
	job := decode[jobResponse](t, rec)
	if job.Stage != string(exporter.StageCompleted) || job.ProgressPercent != 100 {
		t.Fatalf("job = %+v", job)
	}
	if len(job.Artifacts) != 1 || job.Artifacts[0].Href != "/export/artifacts/output.mp4" {
		t.Fatalf("artifacts = %+v", job.Artifacts)
	}

	rec = env.do(t, http.MethodGet, job.Artifacts[0].Href, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "encoded" {
		t.Errorf("artifact download = %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("content type = %q", ct)
	}

	rec = env.do(t, http.MethodGet, "/export/artifacts/ghost.mp4", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown artifact status = %d", rec.Code)
	}
}

func TestExportConflict(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t)
	env.addClip(t, asset.ID)

	release := make(chan struct{})
	env.engine.submit = func(ctx context.Context, req engine.SubmitRequest) error {
		<-release
		return env.engine.Write("output.mp4", []byte("encoded"))
	}

	rec := env.do(t, http.MethodPost, "/export", exportRequest{Format: "mp4", Quality: "medium"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/export", exportRequest{Format: "mp4", Quality: "medium"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", rec.Code)
	}

	close(release)
	env.exporter.Wait(context.Background())
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	asset := env.addAsset(t)
	env.addClip(t, asset.ID)

	rec := env.do(t, http.MethodPost, "/export", exportRequest{Format: "avi", Quality: "medium"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportJobBeforeAnyRun(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/export/job", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
