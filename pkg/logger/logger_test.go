package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithUserID(ctx, "user-1")
	ctx = logg.WithActorRole(ctx, "partner")
	logg.Info(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("missing request_id: %v", entry)
	}
	if entry["user_id"] != "user-1" {
		t.Fatalf("missing user_id: %v", entry)
	}
	if entry["actor_role"] != "partner" {
		t.Fatalf("missing actor_role: %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("missing service field: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: &buf})
	logg.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	logg.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatal("warn should be logged")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatal("expected debug")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("expected info fallback")
	}
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Fatal("expected info fallback for unknown level")
	}
}
