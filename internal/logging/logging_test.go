package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestJSONLoggerWritesDomainFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.With(String("provider", "meeus-vsop87")).Warn(context.Background(), "body query failed",
		Moment("Einstein"),
		JulianDay(2407422.9513888885),
		Body("Pluto"),
		Duration("elapsed_seconds", 1500*time.Millisecond),
		Err(errors.New("unsupported body")),
	)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	want := map[string]any{
		"msg":             "body query failed",
		"provider":        "meeus-vsop87",
		"moment":          "Einstein",
		"jd_ut":           "2407422.9513888885",
		"body":            "Pluto",
		"elapsed_seconds": 1.5,
		"error":           "unsupported body",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s = %v, want %v (record %v)", k, got[k], v, got)
		}
	}
	if _, ok := got["run_id"]; ok {
		t.Fatalf("run_id must only appear inside a run: %v", got)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info(context.Background(), "hidden")
	log.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info/debug should be filtered at warn, got %q", buf.String())
	}
	log.Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("warn missing from text output %q", buf.String())
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
	for _, l := range Levels {
		if _, err := ParseLevel(l); err != nil {
			t.Fatalf("ParseLevel(%q): %v", l, err)
		}
	}
}

func TestStartRunStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, log := StartRun(context.Background(), base)
	id := RunIDFromContext(ctx)
	if len(id) != 16 {
		t.Fatalf("run id %q, want 16 hex chars", id)
	}
	log.Info(ctx, "building reference dataset")
	if !strings.Contains(buf.String(), "run_id="+id) {
		t.Fatalf("output %q lacks run_id=%s", buf.String(), id)
	}

	// A nested start keeps the outer run's ID.
	again, _ := StartRun(ctx, base)
	if RunIDFromContext(again) != id {
		t.Fatalf("StartRun replaced run id %q with %q", id, RunIDFromContext(again))
	}
	if FromContext(again, nil) != base {
		t.Fatalf("StartRun should store the logger on the context")
	}

	buf.Reset()
	base.Info(ContextWithRunID(context.Background(), "abc123"), "entry")
	if !strings.Contains(buf.String(), "run_id=abc123") {
		t.Fatalf("output %q lacks run_id=abc123", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	def := Noop()
	if FromContext(context.Background(), def) != def {
		t.Fatalf("expected the fallback logger on a bare context")
	}
	if FromContext(context.Background(), nil) == nil {
		t.Fatalf("nil fallback should become a noop logger")
	}
	if FromContext(ContextWithLogger(context.Background(), nil), def) == nil {
		t.Fatalf("nil logger should be stored as a noop logger")
	}

	_, log := StartRun(context.Background(), nil)
	log.Error(context.Background(), "dropped")
}
