package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/resilience"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "healthops.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func sqliteConfig(dir, query string) string {
	return `
observe:
  service_name: healthops-test
  logging: {enabled: false}
server:
  circuit: {max_failures: 3}
  construct_retry: {max_attempts: 2, initial_delay_ms: 1}
checks:
  app-db:
    kind: sqlite
    mode: ConnectionString
    connection_string: "file:` + filepath.ToSlash(filepath.Join(dir, "app.db")) + `"
    query: "` + query + `"
`
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sqliteConfig(dir, "SELECT 1"))

	out, err := run(t, "check", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "app-db") || !strings.Contains(out, "healthy") || !strings.Contains(out, "sqlite") {
		t.Errorf("check output = %q", out)
	}
}

func TestCheckCommand_Unhealthy(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sqliteConfig(dir, "SELECT * FROM missing"))

	out, err := run(t, "check", "--config", path, "--json")
	if !errors.Is(err, errUnhealthy) {
		t.Fatalf("check error = %v, want errUnhealthy", err)
	}
	if !strings.Contains(out, `"status": "unhealthy"`) || !strings.Contains(out, "Unexpected error.") {
		t.Errorf("check output = %q", out)
	}
}

func TestCheckCommand_FailOn(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sqliteConfig(dir, "SELECT 1")+"    timeout: 0\n")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"degraded passes by default", nil, nil},
		{"fail on degraded", []string{"--fail-on", "degraded"}, errUnhealthy},
		{"fail on degraded case-insensitive", []string{"--fail-on", "Degraded"}, errUnhealthy},
		{"fail on unhealthy", []string{"--fail-on", "unhealthy"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"check", "--config", path}, tt.args...)...)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("check error = %v, want %v\n%s", err, tt.wantErr, out)
			}
			if !strings.Contains(out, "degraded") {
				t.Errorf("check output = %q, want a degraded row", out)
			}
		})
	}

	if _, err := run(t, "check", "--config", path, "--fail-on", "sometimes"); err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Errorf("check error = %v, want unknown status", err)
	}
}

func TestCheckCommand_UnknownName(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sqliteConfig(dir, "SELECT 1"))

	if _, err := run(t, "check", "--config", path, "nope"); !errors.Is(err, health.ErrCheckerNotFound) {
		t.Errorf("check error = %v, want ErrCheckerNotFound", err)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sqliteConfig(dir, "SELECT 1"))

	out, err := run(t, "validate", "--config", path)
	if err != nil || !strings.Contains(out, "1 checks valid") {
		t.Errorf("validate = %q, %v", out, err)
	}

	bad := writeConfig(t, t.TempDir(), `
checks:
  blob:
    kind: azureblob
    mode: SharedKey
    service_uri: not-a-url
    account_name: orders
    account_key: a2V5
  kv:
    kind: badger
    mode: SasToken
    service_uri: https://x
    sas_token: t
  sso:
    kind: keycloak
    mode: UsernamePassword
    service_uri: https://sso.example.com
    username: ops
    password: hunter2
`)
	_, err = run(t, "validate", "--config", bad)
	if err == nil {
		t.Fatal("validate error = nil for invalid checks")
	}
	for _, want := range []string{`check "blob"`, `check "kv"`, "The parameter `realm` cannot be null or whitespace."} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validate error = %q, want it to mention %s", err.Error(), want)
		}
	}
}

func TestValidateCommand_UnknownKind(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "checks: {x: {kind: mongo, mode: ConnectionString, connection_string: x}}")
	if _, err := run(t, "validate", "--config", path); err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("validate error = %v, want unknown kind", err)
	}
}

func TestKindsCommand(t *testing.T) {
	out, err := run(t, "kinds")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"azureblob", "gcs", "bucket", "keycloak", "Registry,ClientSecret,UsernamePassword"} {
		if !strings.Contains(out, want) {
			t.Errorf("kinds output missing %q:\n%s", want, out)
		}
	}
}

func TestRuntime_Apply(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sqliteConfig(dir, "SELECT 1"))
	ctx := context.Background()

	rt, err := newRuntime(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	if r, _ := rt.agg.Check(ctx, "app-db"); r.Status != health.StatusHealthy {
		t.Fatalf("app-db = %v (%v)", r.Status, r.Error)
	}
	if rt.clients.Len() != 1 {
		t.Fatalf("clients = %d, want 1", rt.clients.Len())
	}

	doc, err := config.Parse([]byte(sqliteConfig(dir, "SELECT 2") + `
  cache-db:
    kind: sqlite
    mode: ConnectionString
    connection_string: ":memory:"
`))
	if err != nil {
		t.Fatal(err)
	}
	touched, err := rt.apply(ctx, doc)
	if err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if strings.Join(touched, ",") != "app-db,cache-db" {
		t.Errorf("touched = %v, want [app-db cache-db]", touched)
	}
	if rt.clients.Len() != 0 {
		t.Errorf("clients = %d, want the changed check's client evicted", rt.clients.Len())
	}
	if got := rt.agg.CheckerNames(); len(got) != 2 {
		t.Errorf("CheckerNames() = %v, want 2 checks", got)
	}

	doc, _ = config.Parse([]byte(`
checks:
  cache-db:
    kind: sqlite
    mode: ConnectionString
    connection_string: ":memory:"
`))
	if _, err := rt.apply(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if got := rt.agg.CheckerNames(); len(got) != 1 || got[0] != "cache-db" {
		t.Errorf("CheckerNames() = %v, want [cache-db]", got)
	}

	bad, _ := config.Parse([]byte(`checks: {x: {kind: sqlite, mode: SasToken, service_uri: "https://x", sas_token: t}}`))
	if _, err := rt.apply(ctx, bad); err == nil {
		t.Error("apply() error = nil for a check its adapter cannot build")
	}
	if got := rt.agg.CheckerNames(); len(got) != 1 || got[0] != "cache-db" {
		t.Errorf("failed apply changed checks: %v", got)
	}
}

func TestRateLimit(t *testing.T) {
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 0.001, Burst: 1})
	h := rateLimit(rl, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}
}

func TestHandler(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sqliteConfig(dir, "SELECT 1"))
	ctx := context.Background()

	rt, err := newRuntime(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close(ctx)

	srv := httptest.NewServer(rt.handler())
	defer srv.Close()

	for path, want := range map[string]int{
		"/healthz":       http.StatusOK,
		"/readyz":        http.StatusOK,
		"/health":        http.StatusOK,
		"/health/app-db": http.StatusOK,
		"/health/nope":   http.StatusNotFound,
		"/metrics":       http.StatusNotFound,
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("GET %s = %d, want %d", path, resp.StatusCode, want)
		}
	}
}
