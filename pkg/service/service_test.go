package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lemonberrylabs/lazyexpr/pkg/config"
	"github.com/lemonberrylabs/lazyexpr/pkg/store"
)

func setupTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	s := store.NewMemory()
	srv := New(s, config.Default(), zerolog.Nop())
	return srv, s
}

func postJSON(t *testing.T, srv *Server, path string, body any) (int, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func getJSON(t *testing.T, srv *Server, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	data, _ := io.ReadAll(r)
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decoding response %q: %v", data, err)
	}
	return m
}

func TestEvalOnce(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, body := postJSON(t, srv, "/v1/eval", map[string]any{"expression": "2+3*4"})
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	if body["result"] != "14" || body["type"] != "number" {
		t.Errorf("got %v", body)
	}
}

func TestEvalWithVars(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, body := postJSON(t, srv, "/v1/eval", map[string]any{
		"expression": "rate * hours",
		"vars":       map[string]string{"rate": "12.5", "hours": "8"},
	})
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	if body["result"] != "100" {
		t.Errorf("got %v", body)
	}
}

func TestEvalReturnsLogs(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, body := postJSON(t, srv, "/v1/eval", map[string]any{"expression": "'hi'; 42"})
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	logs, ok := body["logs"].([]any)
	if !ok || len(logs) != 1 || logs[0] != "hi" {
		t.Errorf("logs = %v", body["logs"])
	}
}

func TestEvalErrorStatuses(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		expression string
		wantCode   int
		wantStatus string
	}{
		{"", 400, "INVALID_ARGUMENT"},
		{"1 +", 400, "INVALID_ARGUMENT"},
		{"'abc", 400, "INVALID_ARGUMENT"},
		{"1/0", 422, "FAILED_PRECONDITION"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.expression), func(t *testing.T) {
			code, body := postJSON(t, srv, "/v1/eval", map[string]any{"expression": tt.expression})
			if code != tt.wantCode {
				t.Fatalf("got %d: %v", code, body)
			}
			errObj, ok := body["error"].(map[string]any)
			if !ok {
				t.Fatalf("no error object: %v", body)
			}
			if errObj["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", errObj["status"], tt.wantStatus)
			}
		})
	}
}

func TestSessionKeepsVariables(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, body := postJSON(t, srv, "/v1/sessions", nil)
	if code != 201 {
		t.Fatalf("got %d: %v", code, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("no session id: %v", body)
	}

	code, body = postJSON(t, srv, "/v1/sessions/"+id+"/eval", map[string]any{"expression": "x = 5"})
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}

	code, body = postJSON(t, srv, "/v1/sessions/"+id+"/eval", map[string]any{"expression": "x * 2"})
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	if body["result"] != "10" {
		t.Errorf("got %v", body)
	}

	code, body = getJSON(t, srv, "/v1/sessions/"+id+"/vars")
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	vars, _ := body["vars"].(map[string]any)
	xv, _ := vars["x"].(map[string]any)
	if xv == nil || xv["value"] != "5" || xv["type"] != "number" {
		t.Errorf("vars = %v", vars)
	}
	if _, seeded := vars["PI"]; seeded {
		t.Errorf("seeded constants leaked into session vars: %v", vars)
	}
}

func TestSessionNotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	code, _ := postJSON(t, srv, "/v1/sessions/nope/eval", map[string]any{"expression": "1"})
	if code != 404 {
		t.Fatalf("got %d", code)
	}
	code, _ = getJSON(t, srv, "/v1/sessions/nope/vars")
	if code != 404 {
		t.Fatalf("got %d", code)
	}
}

func TestDeleteSession(t *testing.T) {
	srv, _ := setupTestServer(t)

	_, body := postJSON(t, srv, "/v1/sessions", nil)
	id, _ := body["id"].(string)

	req := httptest.NewRequest("DELETE", "/v1/sessions/"+id, nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("got %d", resp.StatusCode)
	}

	code, _ := postJSON(t, srv, "/v1/sessions/"+id+"/eval", map[string]any{"expression": "1"})
	if code != 404 {
		t.Fatalf("deleted session still evaluates: %d", code)
	}
}

func TestHistory(t *testing.T) {
	srv, _ := setupTestServer(t)

	postJSON(t, srv, "/v1/eval", map[string]any{"expression": "1+1"})
	postJSON(t, srv, "/v1/eval", map[string]any{"expression": "1/0"})

	code, body := getJSON(t, srv, "/v1/history")
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	recs, _ := body["records"].([]any)
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	// newest first: the failed division
	first, _ := recs[0].(map[string]any)
	if first["expression"] != "1/0" || first["error"] == nil {
		t.Errorf("first record = %v", first)
	}
	second, _ := recs[1].(map[string]any)
	if second["result"] != "2" {
		t.Errorf("second record = %v", second)
	}
}

func TestHistoryFiltersBySession(t *testing.T) {
	srv, _ := setupTestServer(t)

	_, body := postJSON(t, srv, "/v1/sessions", nil)
	id, _ := body["id"].(string)

	postJSON(t, srv, "/v1/eval", map[string]any{"expression": "1"})
	postJSON(t, srv, "/v1/sessions/"+id+"/eval", map[string]any{"expression": "2"})

	code, body := getJSON(t, srv, "/v1/history?session="+id)
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	recs, _ := body["records"].([]any)
	if len(recs) != 1 {
		t.Fatalf("got %d records", len(recs))
	}
}

func TestConfigAppliesToEvaluation(t *testing.T) {
	cfg := config.Default()
	cfg.Precision = 4
	cfg.Variables = map[string]string{"base": "3"}
	srv := New(store.NewMemory(), cfg, zerolog.Nop())

	code, body := postJSON(t, srv, "/v1/eval", map[string]any{"expression": "base/9"})
	if code != 200 {
		t.Fatalf("got %d: %v", code, body)
	}
	if body["result"] != "0.3333" {
		t.Errorf("got %v", body)
	}
}
