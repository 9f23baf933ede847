// Package integration exercises the whole stack: YAML configuration, the
// HTTP service, the expression engine and the SQLite history store.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lemonberrylabs/lazyexpr/pkg/config"
	"github.com/lemonberrylabs/lazyexpr/pkg/service"
	"github.com/lemonberrylabs/lazyexpr/pkg/store"
)

func newServer(t *testing.T, cfg *config.Config, dbPath string) *service.Server {
	t.Helper()
	st, err := store.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return service.New(st, cfg, zerolog.Nop())
}

func request(t *testing.T, srv *service.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	data, _ := io.ReadAll(resp.Body)
	var m map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("decoding %s %s response %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode, m
}

func TestSessionWorkflow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
precision: 8
variables:
  tax: "0.19"
`), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	srv := newServer(t, cfg, filepath.Join(t.TempDir(), "history.db"))

	code, body := request(t, srv, "POST", "/v1/sessions", nil)
	if code != 201 {
		t.Fatalf("creating session: %d %v", code, body)
	}
	id := body["id"].(string)

	steps := []struct {
		expression string
		want       string
	}{
		{"net = 100", "100"},
		{"gross = net * (1 + tax)", "119"},
		{"round(gross * 3, 2)", "357"},
		{"items = list(net, gross)", "[100, 119]"},
		{"reduce(acc + _, items, 0)", "219"},
	}
	for _, step := range steps {
		code, body = request(t, srv, "POST", "/v1/sessions/"+id+"/eval",
			map[string]any{"expression": step.expression})
		if code != 200 {
			t.Fatalf("evaluating %q: %d %v", step.expression, code, body)
		}
		if body["result"] != step.want {
			t.Errorf("%q = %v, want %s", step.expression, body["result"], step.want)
		}
	}

	code, body = request(t, srv, "GET", "/v1/sessions/"+id+"/vars", nil)
	if code != 200 {
		t.Fatalf("listing vars: %d %v", code, body)
	}
	vars := body["vars"].(map[string]any)
	gross := vars["gross"].(map[string]any)
	if gross["value"] != "119" || gross["type"] != "number" {
		t.Errorf("gross = %v", gross)
	}

	code, body = request(t, srv, "GET", "/v1/history?session="+id, nil)
	if code != 200 {
		t.Fatalf("history: %d %v", code, body)
	}
	recs := body["records"].([]any)
	if len(recs) != len(steps) {
		t.Fatalf("got %d history records, want %d", len(recs), len(steps))
	}
	// newest first
	first := recs[0].(map[string]any)
	if first["expression"] != steps[len(steps)-1].expression {
		t.Errorf("first record = %v", first["expression"])
	}

	code, _ = request(t, srv, "DELETE", "/v1/sessions/"+id, nil)
	if code != 200 {
		t.Fatalf("deleting session: %d", code)
	}
	code, _ = request(t, srv, "POST", "/v1/sessions/"+id+"/eval", map[string]any{"expression": "1"})
	if code != 404 {
		t.Fatalf("deleted session still answers: %d", code)
	}
}

func TestHistorySurvivesRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	cfg := config.Default()

	srv := newServer(t, cfg, dbPath)
	code, body := request(t, srv, "POST", "/v1/eval", map[string]any{"expression": "fact(6)"})
	if code != 200 || body["result"] != "720" {
		t.Fatalf("eval: %d %v", code, body)
	}
	code, body = request(t, srv, "POST", "/v1/eval", map[string]any{"expression": "1/0"})
	if code != 422 {
		t.Fatalf("division by zero: %d %v", code, body)
	}

	// a fresh server over the same database sees both records
	srv2 := newServer(t, cfg, dbPath)
	code, body = request(t, srv2, "GET", "/v1/history", nil)
	if code != 200 {
		t.Fatalf("history: %d %v", code, body)
	}
	recs := body["records"].([]any)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	failed := recs[0].(map[string]any)
	if failed["expression"] != "1/0" || failed["error"] == nil {
		t.Errorf("failed record = %v", failed)
	}
}

func TestLegacyInequalityEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.LegacyInequality = true
	srv := newServer(t, cfg, filepath.Join(t.TempDir(), "history.db"))

	code, body := request(t, srv, "POST", "/v1/eval", map[string]any{"expression": "1 != 2"})
	if code != 200 {
		t.Fatalf("eval: %d %v", code, body)
	}
	if body["result"] != "0" {
		t.Errorf("legacy != should compare equal: %v", body)
	}
}
