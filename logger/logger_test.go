package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("restaurant-pos", &buf, "debug")

	log.Info("order_created", "req-1", "Order created", slog.Int("order_id", 7))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]interface{}{
		"service":    "restaurant-pos",
		"action":     "order_created",
		"request_id": "req-1",
		"msg":        "Order created",
		"level":      "INFO",
		"order_id":   float64(7),
	} {
		if entry[key] != want {
			t.Errorf("entry[%q] = %v, want %v", key, entry[key], want)
		}
	}
}

func TestLoggerErrorGroup(t *testing.T) {
	var buf bytes.Buffer
	log := New("restaurant-pos", &buf, "info")

	log.Error("db_failed", "", "Query failed", errors.New("connection refused"))

	if !strings.Contains(buf.String(), `"error":{"msg":"connection refused"}`) {
		t.Fatalf("expected nested error group, got %s", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("restaurant-pos", &buf, "warn")

	log.Debug("noise", "", "dropped")
	log.Info("noise", "", "dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be filtered, got %s", buf.String())
	}

	log.Warn("slow_query", "", "kept")
	if buf.Len() == 0 {
		t.Fatalf("expected warn to be written")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := RequestIDFrom(ctx); got != "req-42" {
		t.Fatalf("RequestIDFrom = %q, want req-42", got)
	}
	if got := RequestIDFrom(context.Background()); got != "" {
		t.Fatalf("expected empty id for bare context, got %q", got)
	}
}
