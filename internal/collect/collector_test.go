package collect

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/ingest"
)

const swipeLine = `{"badge_id":"b-1","user_id":"u-1","location":"SEA","room":"SEA-1","timestamp":"2026-03-02T09:00:00Z","direction":"entry","result":"granted"}`

func startCollector(t *testing.T) (*SwipeCollector, string) {
	t.Helper()
	output := filepath.Join(t.TempDir(), "events.jsonl")
	cfg := &core.CollectorConfig{
		Enabled:  true,
		Embedded: true,
		Port:     -1, // random port
		Subject:  "badge.swipes.test",
		Output:   output,
	}

	c := NewSwipeCollector(cfg, zerolog.Nop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("collector Start() error: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop() })
	return c, output
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestCollectorAppendsCanonicalLog(t *testing.T) {
	c, output := startCollector(t)

	nc, err := nats.Connect(c.ClientURL())
	if err != nil {
		t.Fatalf("nats.Connect() error: %v", err)
	}
	defer nc.Close()

	if err := nc.Publish("badge.swipes.test", []byte(swipeLine)); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if err := nc.Publish("badge.swipes.test", []byte(`{"badge_id":"b-2"}`)); err != nil {
		t.Fatalf("Publish(malformed) error: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	waitFor(t, func() bool { return c.Received() == 1 && c.Dropped() == 1 })

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	// The collected log must re-ingest cleanly in strict mode.
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output log: %v", err)
	}
	res, err := ingest.ReadEvents(bytes.NewReader(data), false, zerolog.Nop())
	if err != nil {
		t.Fatalf("re-ingesting collected log: %v", err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("collected log has %d events, want 1", len(res.Events))
	}
	e := res.Events[0]
	if e.BadgeID != "b-1" || e.Room != "SEA-1" || e.Direction != core.DirectionEntry {
		t.Errorf("unexpected collected event: %+v", e)
	}
}

func TestCollectorStopIdempotentOutput(t *testing.T) {
	c, output := startCollector(t)
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output log missing after stop: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
}
