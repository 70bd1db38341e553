package collect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/ingest"
)

// SwipeCollector subscribes to badge-reader swipe records over NATS and
// appends them, canonicalized, to the JSONL batch log the analyzer
// consumes later. It collects; detection stays a batch concern.
type SwipeCollector struct {
	cfg    *core.CollectorConfig
	logger zerolog.Logger

	nc  *nats.Conn
	ns  *server.Server
	sub *nats.Subscription

	mu       sync.Mutex
	out      *os.File
	received int64
	dropped  int64

	cancel context.CancelFunc
}

// NewSwipeCollector creates a collector from config.
func NewSwipeCollector(cfg *core.CollectorConfig, logger zerolog.Logger) *SwipeCollector {
	return &SwipeCollector{
		cfg:    cfg,
		logger: logger.With().Str("component", "swipe_collector").Logger(),
	}
}

// Start opens the output log, starts the embedded NATS server when
// configured, connects, and subscribes to the swipe subject.
func (c *SwipeCollector) Start(ctx context.Context) error {
	_, c.cancel = context.WithCancel(ctx)

	if err := os.MkdirAll(filepath.Dir(c.cfg.Output), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	out, err := os.OpenFile(c.cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening output log: %w", err)
	}
	c.out = out

	url := c.cfg.URL
	if c.cfg.Embedded {
		opts := &server.Options{
			Host:   "127.0.0.1",
			Port:   c.cfg.Port,
			NoLog:  true,
			NoSigs: true,
		}
		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("creating embedded NATS server: %w", err)
		}
		ns.Start()
		if !ns.ReadyForConnections(10 * time.Second) {
			return fmt.Errorf("embedded NATS server failed to start within timeout")
		}
		c.ns = ns
		url = ns.ClientURL()
		c.logger.Info().Str("url", url).Msg("embedded NATS server started")
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				c.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			c.logger.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	c.nc = nc

	sub, err := nc.Subscribe(c.cfg.Subject, c.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribing to %q: %w", c.cfg.Subject, err)
	}
	c.sub = sub

	c.logger.Info().
		Str("subject", c.cfg.Subject).
		Str("output", c.cfg.Output).
		Msg("swipe collector started")
	return nil
}

// handleMessage canonicalizes one swipe record and appends it to the
// batch log. Records the analyzer would reject are dropped here rather
// than poisoning the log.
func (c *SwipeCollector) handleMessage(msg *nats.Msg) {
	event, err := ingest.ParseEvent(msg.Data)
	if err != nil {
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.logger.Warn().Err(err).Msg("dropping malformed swipe record")
		return
	}

	line, err := event.Marshal()
	if err != nil {
		c.logger.Error().Err(err).Msg("marshaling swipe record")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		return
	}
	if _, err := c.out.Write(append(line, '\n')); err != nil {
		c.logger.Error().Err(err).Msg("appending to batch log")
		return
	}
	c.received++
}

// Stop drains the subscription and shuts everything down.
func (c *SwipeCollector) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.sub != nil {
		_ = c.sub.Drain()
	}
	if c.nc != nil {
		c.nc.Close()
	}
	if c.ns != nil {
		c.ns.Shutdown()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out != nil {
		if err := c.out.Close(); err != nil {
			return fmt.Errorf("closing batch log: %w", err)
		}
		c.out = nil
	}
	return nil
}

// ClientURL returns the URL clients should use to publish swipes. Only
// meaningful after Start.
func (c *SwipeCollector) ClientURL() string {
	if c.ns != nil {
		return c.ns.ClientURL()
	}
	return c.cfg.URL
}

// Received returns the number of records appended to the batch log.
func (c *SwipeCollector) Received() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received
}

// Dropped returns the number of malformed records rejected.
func (c *SwipeCollector) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
