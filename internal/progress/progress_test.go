package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	var s Sink = Multi{a, b, Nop{}}
	s.Progress(1, 3, "entries")
	s.Progress(3, 3, "entries")
	s.Done("ok")

	for _, r := range []*Recorder{a, b} {
		if len(r.Updates) != 2 || r.Report != "ok" {
			t.Errorf("recorder = %+v", r)
		}
		if last, _ := r.Last(); last.Current != 3 {
			t.Errorf("last = %+v", last)
		}
	}
	if _, ok := (&Recorder{}).Last(); ok {
		t.Error("empty recorder has a last update")
	}
}

func TestLogSinkRateLimits(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewLogSink(logger, 10)
	for i := 1; i <= 25; i++ {
		s.Progress(i, 25, "entries")
	}
	// 10, 20 and the final 25
	if n := strings.Count(buf.String(), "msg=progress "); n != 3 {
		t.Errorf("logged %d progress records, want 3:\n%s", n, buf.String())
	}
	s.Done("report")
	if !strings.Contains(buf.String(), "progress_done") {
		t.Error("done not logged")
	}
}

func TestHubBroadcastsToClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub("merge")
	go hub.Run(ctx)

	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Clients() != 1 {
		t.Fatalf("clients = %d, want 1", hub.Clients())
	}

	hub.Progress(5, 20, "entries")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if msg.Type != "progress" || msg.Operation != "merge" || msg.Percent != 25 || msg.Timestamp == "" {
		t.Errorf("message = %+v", msg)
	}

	hub.Done(map[string]int{"added": 2})
	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "complete" || msg.Percent != 100 {
		t.Errorf("message = %+v", msg)
	}
}

func TestOriginChecker(t *testing.T) {
	if originChecker(nil) != nil {
		t.Error("empty allow list should use the default check")
	}
	check := originChecker([]string{"http://localhost:3000"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/progress", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := check(req); got != tt.want {
			t.Errorf("origin %q: got %v, want %v", tt.origin, got, tt.want)
		}
	}
}
