package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// captureLogOutput redirects the global logger to a buffer while f runs.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer
	old := defaultLogger
	defaultLogger = New(&buf, LevelDebug, FormatJSON)
	defer func() { defaultLogger = old }()
	f()
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"chatty", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("ParseFormat mismatch")
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn, FormatText)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

func TestInitLoggerTo(t *testing.T) {
	old := defaultLogger
	defer func() { defaultLogger = old }()

	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelInfo, FormatJSON)
	Info("hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "hello" || rec["k"] != "v" {
		t.Errorf("record = %v", rec)
	}
	if ts, ok := rec["time"].(string); !ok || !strings.Contains(ts, "T") {
		t.Errorf("time = %v, want RFC3339", rec["time"])
	}
}

func TestContextIDs(t *testing.T) {
	ctx := WithImportID(WithRequestID(context.Background(), "req-1"), "imp-1")
	if GetRequestID(ctx) != "req-1" || GetImportID(ctx) != "imp-1" {
		t.Fatalf("ids = %q, %q", GetRequestID(ctx), GetImportID(ctx))
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("empty context has a request id")
	}
	out := captureLogOutput(func() { InfoContext(ctx, "tagged") })
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, `"import_id":"imp-1"`) {
		t.Errorf("output = %s", out)
	}
}

func TestDomainHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
		want []string
	}{
		{"merge phase", func() { MergePhase(defaultLogger, "relations", "start", "pending", 3) },
			[]string{`"msg":"merge_phase"`, `"phase":"relations"`, `"pending":3`}},
		{"diagnostic", func() { MergeDiagnostic(defaultLogger, "capacity", "g1", "gloss", "truncated") },
			[]string{`"level":"WARN"`, `"kind":"capacity"`, `"field":"gloss"`}},
		{"export", func() { ExportWritten("/tmp/x.lift", 42) },
			[]string{`"msg":"export_written"`, `"bytes":42`}},
		{"websocket", func() { WebSocketEvent("client_connected", 2) },
			[]string{`"client_count":2`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureLogOutput(tt.fn)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %s lacks %s", out, w)
				}
			}
		})
	}
}

func TestCombinedMiddleware(t *testing.T) {
	var seen string
	h := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	out := captureLogOutput(func() {
		req := httptest.NewRequest(http.MethodGet, "/progress", nil)
		req.Header.Set("X-Request-ID", "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get("X-Request-ID") != "abc" {
			t.Errorf("response id = %q", rec.Header().Get("X-Request-ID"))
		}
	})
	if seen != "abc" {
		t.Errorf("handler saw request id %q", seen)
	}
	if !strings.Contains(out, `"status_code":418`) || !strings.Contains(out, `"path":"/progress"`) {
		t.Errorf("log = %s", out)
	}
}

func TestGenerateRequestID(t *testing.T) {
	a, b := generateRequestID(), generateRequestID()
	if len(a) != 16 || a == b {
		t.Errorf("ids %q %q", a, b)
	}
}
