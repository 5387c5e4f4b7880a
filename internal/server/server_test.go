package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/f1-data-service/internal/config"
	"github.com/preston-bernstein/f1-data-service/internal/dispatch"
	"github.com/preston-bernstein/f1-data-service/internal/metrics"
	"github.com/preston-bernstein/f1-data-service/internal/testutil"
)

type stubHTTPServer struct {
	addr          string
	handler       http.Handler
	listenCalls   int
	shutdownCalls int
	listenErr     error
	shutdownErr   error
}

func (s *stubHTTPServer) ListenAndServe() error {
	s.listenCalls++
	return s.listenErr
}

func (s *stubHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	s.shutdownCalls++
	return s.shutdownErr
}

func (s *stubHTTPServer) Addr() string {
	return s.addr
}

func (s *stubHTTPServer) Handler() http.Handler {
	return s.handler
}

type blockingHTTPServer struct {
	addr          string
	handler       http.Handler
	shutdownCalls int
	unblock       chan struct{}
}

func (s *blockingHTTPServer) ListenAndServe() error {
	return nil
}

func (s *blockingHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdownCalls++
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.unblock:
		return nil
	}
}

func (s *blockingHTTPServer) Addr() string {
	return s.addr
}

func (s *blockingHTTPServer) Handler() http.Handler {
	return s.handler
}

func testConfig(layout testutil.Layout) config.Config {
	return config.Config{
		Root:           layout.Root,
		DataPath:       layout.StorePath,
		TempDir:        layout.TempDir,
		LockTimeout:    time.Second,
		NotFoundFormat: "legacy",
		Port:           "0",
		MaxBodyBytes:   1 << 20,
	}
}

func TestServerServesHealthAndTeams(t *testing.T) {
	layout := testutil.NewLayout(t, testutil.SampleStore)
	srv := newServerWithMetrics(testConfig(layout), nil, metrics.NewRecorder())
	router := srv.Handler()

	healthRec := httptest.NewRecorder()
	router.ServeHTTP(healthRec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if healthRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", healthRec.Code)
	}
	if healthRec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected middleware to set X-Request-ID")
	}

	teamsRec := httptest.NewRecorder()
	router.ServeHTTP(teamsRec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))
	if teamsRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /api/teams, got %d", teamsRec.Code)
	}
	if got := testutil.JSONPath(t, teamsRec.Body.Bytes(), "teams.#").Int(); got != 3 {
		t.Fatalf("expected 3 teams, got %d", got)
	}
}

func TestServerMutationsRecordOperations(t *testing.T) {
	layout := testutil.NewLayout(t, testutil.SampleStore)
	rec := metrics.NewRecorder()
	srv := newServerWithMetrics(testConfig(layout), nil, rec)

	body := strings.NewReader(`{"name":"Haas","drivers":[]}`)
	rr := testutil.Serve(srv.Handler(), http.MethodPost, "/api/teams", body)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.Serve(srv.Handler(), http.MethodDelete, "/api/teams/Alpine", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	if rec.Operations(dispatch.OpCreate.String(), metrics.OutcomeOK) != 1 {
		t.Fatalf("expected create recorded")
	}
	if rec.Operations(dispatch.OpDelete.String(), metrics.OutcomeNotFound) != 1 {
		t.Fatalf("expected not-found delete recorded")
	}
	if got := testutil.JSONPath(t, layout.ReadStore(t), "teams.3.name").String(); got != "Haas" {
		t.Fatalf("expected Haas persisted, got %q", got)
	}
}

func TestNewConstructsServer(t *testing.T) {
	layout := testutil.NewLayout(t, testutil.SampleStore)
	cfg := testConfig(layout)
	cfg.Metrics = config.MetricsConfig{Enabled: false}

	srv := New(cfg, nil)
	if srv == nil || srv.Handler() == nil {
		t.Fatalf("expected server with handler")
	}
	if srv.store.Path() != layout.StorePath {
		t.Fatalf("expected store at %s, got %s", layout.StorePath, srv.store.Path())
	}
}

func TestNewDispatcherUsesConfig(t *testing.T) {
	layout := testutil.NewLayout(t, testutil.SampleStore)
	cfg := testConfig(layout)
	cfg.NotFoundFormat = "json"

	d := NewDispatcher(cfg, nil, nil)
	res := d.Run(context.Background(), dispatch.OpDelete, layout.WriteRequest(t, "req.json", `{"team":"Alpine"}`))
	if res.ExitCode != 1 {
		t.Fatalf("expected failure exit code, got %d", res.ExitCode)
	}
	if got := testutil.JSONPath(t, res.Body, "error").String(); got != "Team not found" {
		t.Fatalf("expected json not-found body, got %q", res.Body)
	}
}

func TestGracefulShutdownCallsShutdown(t *testing.T) {
	httpSrv := &stubHTTPServer{}
	metricsSrv := &stubHTTPServer{}
	stopCalls := 0

	srv := newServerWithDeps(config.Config{}, nil, httpSrv)
	srv.metricsServer = metricsSrv
	srv.metricsStop = func(context.Context) error {
		stopCalls++
		return errors.New("flush failure")
	}
	srv.gracefulShutdown()

	if httpSrv.shutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.shutdownCalls)
	}
	if metricsSrv.shutdownCalls != 1 {
		t.Fatalf("expected metrics server Shutdown to be called once, got %d", metricsSrv.shutdownCalls)
	}
	if stopCalls != 1 {
		t.Fatalf("expected metrics flush once, got %d", stopCalls)
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	blocking := &blockingHTTPServer{
		addr:    ":0",
		handler: http.NewServeMux(),
		unblock: make(chan struct{}),
	}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	logger, buf := testutil.NewBufferLogger()
	srv := newServerWithDeps(config.Config{}, logger, blocking)

	start := time.Now()
	srv.gracefulShutdown()
	elapsed := time.Since(start)

	if blocking.shutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", blocking.shutdownCalls)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
	if !strings.Contains(buf.String(), "graceful shutdown failed") {
		t.Fatalf("expected shutdown failure logged, got %s", buf.String())
	}
}

type errHTTPServer struct {
	shutdownCalls int
}

func (e *errHTTPServer) ListenAndServe() error {
	return errors.New("listen failure")
}

func (e *errHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	e.shutdownCalls++
	return nil
}

func (e *errHTTPServer) Addr() string {
	return ":0"
}

func (e *errHTTPServer) Handler() http.Handler {
	return http.NewServeMux()
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	httpSrv := &errHTTPServer{}
	srv := newServerWithDeps(config.Config{}, nil, httpSrv)

	var wg sync.WaitGroup
	wg.Add(1)
	stopCalled := make(chan struct{})
	stop := func() {
		close(stopCalled)
		wg.Done()
	}

	srv.startServer(stop)

	select {
	case <-stopCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected stop to be called on listen failure")
	}

	wg.Wait()
}

type closeableHTTPServer struct {
	shutdownCalls int
}

func (c *closeableHTTPServer) ListenAndServe() error {
	return http.ErrServerClosed
}

func (c *closeableHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	c.shutdownCalls++
	return nil
}

func (c *closeableHTTPServer) Addr() string {
	return ":0"
}

func (c *closeableHTTPServer) Handler() http.Handler {
	return http.NewServeMux()
}

func TestRunCancelsAndStopsComponents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpSrv := &closeableHTTPServer{}
	srv := newServerWithDeps(config.Config{}, nil, httpSrv)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("run did not return after cancel")
	}

	if httpSrv.shutdownCalls != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", httpSrv.shutdownCalls)
	}
}
