package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/clusterflow/pkg/cache"
	"github.com/matzehuels/clusterflow/pkg/observability"
	"github.com/matzehuels/clusterflow/pkg/pipeline"
)

const body = `{
  "diagram": {
    "id": "flow",
    "nodes": [
      {"id": "A", "width": 40, "height": 20},
      {"id": "C", "label": "Group", "isGroup": true},
      {"id": "X", "parentId": "C", "width": 40, "height": 20}
    ],
    "edges": [{"start": "X", "end": "X"}]
  },
  "options": {"formats": ["svg"]}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(New(pipeline.NewRunner(c, nil, nil, nil), Options{Timeout: 10 * time.Second}))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, payload string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t)

	for i, wantCached := range []bool{false, true} {
		resp := post(t, srv.URL+"/v1/layout", body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
		var out LayoutResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Cached != wantCached {
			t.Errorf("request %d: cached = %v, want %v", i, out.Cached, wantCached)
		}
		if out.Layout == nil || out.Layout.ID != "flow" {
			t.Fatalf("request %d: layout = %+v", i, out.Layout)
		}
		if _, ok := out.Layout.FindNode("X"); !ok {
			t.Errorf("request %d: layout missing X", i)
		}
		if !strings.HasPrefix(out.SVG, "<svg") {
			t.Errorf("request %d: svg = %.30q", i, out.SVG)
		}
		if len(out.Hash) != 64 {
			t.Errorf("request %d: hash = %q", i, out.Hash)
		}
	}
}

func TestRender(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/render", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
}

func TestLayoutErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		payload    string
		wantStatus int
		wantCode   string
	}{
		{"malformed", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no diagram", `{"options": {}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown end", `{"diagram": {"nodes": [{"id": "A"}], "edges": [{"start": "A", "end": "B"}]}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad engine", `{"diagram": {"nodes": []}, "options": {"engine": "neato"}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"parent cycle", `{"diagram": {"nodes": [{"id": "A", "parentId": "B"}, {"id": "B", "parentId": "A"}]}}`, http.StatusUnprocessableEntity, "PARENT_CYCLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/layout", tt.payload)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var out ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (%s)", out.Code, tt.wantCode, out.Message)
			}
			if out.RequestID == "" {
				t.Error("error response has no request id")
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)); got != http.StatusGatewayTimeout {
		t.Errorf("statusFor(deadline) = %d, want 504", got)
	}
	if got := statusFor(fmt.Errorf("plain")); got != http.StatusInternalServerError {
		t.Errorf("statusFor(plain) = %d, want 500", got)
	}
}

type countingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests  int
	responses []int
}

func (h *countingHTTPHooks) OnRequest(context.Context, string, string) { h.requests++ }
func (h *countingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.responses = append(h.responses, status)
}

func TestObserveHooks(t *testing.T) {
	hooks := &countingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	h := New(pipeline.NewRunner(nil, nil, nil, nil), Options{})
	for _, path := range []string{"/healthz", "/missing"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	if len(hooks.responses) != 2 || hooks.responses[0] != http.StatusOK || hooks.responses[1] != http.StatusNotFound {
		t.Errorf("responses = %v, want [200 404]", hooks.responses)
	}
}
