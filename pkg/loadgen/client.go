// Package loadgen drives a target endpoint with a rate-controlled stream of
// fixed-size tagged payloads for throughput and latency benchmarking. A run
// waits for a set of peers to become reachable, starts an inbound receiver,
// then sends `rate` payloads per burst window over a single framed
// connection until the context is cancelled or a send fails.
package loadgen

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"txload/pkg/transport"
)

// Client owns one benchmark run.
type Client struct {
	cfg    Config
	logger *zap.Logger
	stats  *Stats
}

// New validates the configuration and builds a client. No connection is
// attempted here: a bad config never touches the network.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		stats:  &Stats{},
	}, nil
}

// Stats exposes the run's send counters.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Run executes the benchmark: await peers, connect to the target, start the
// inbound receiver, then send bursts until ctx is cancelled. A mid-run send
// failure stops the run cleanly; the initial connect failing is an error.
func (c *Client) Run(ctx context.Context) error {
	c.logger.Info("node address", zap.String("target", c.cfg.Target))

	// NOTE: This log entry is used to compute performance.
	c.logger.Info("payload size", zap.Int("bytes", c.cfg.Size))

	// NOTE: This log entry is used to compute performance.
	c.logger.Info("payload rate", zap.Int("per_second", c.cfg.Rate))

	c.logger.Info("local", zap.Bool("enabled", c.cfg.Local))
	c.logger.Info("honest", zap.Bool("enabled", c.cfg.Honest))

	// Wait for all nodes to be online.
	if len(c.cfg.Nodes) > 0 {
		c.logger.Info("waiting for all nodes to be online", zap.Strings("nodes", c.cfg.Nodes))
	}
	if err := AwaitPeers(ctx, c.cfg.Nodes); err != nil {
		// Cancelled while waiting; a stopped run is not an error.
		return nil
	}

	// Connect to the target. Unlike peer probing there is no retry here.
	conn, err := transport.Dial(c.cfg.Target)
	if err != nil {
		return err
	}
	defer conn.Close()

	// The receiver must be up before the first burst so no delivery from the
	// target is lost.
	var handler transport.Handler
	if c.cfg.Honest {
		handler = NewVerboseHandler(c.logger)
	} else {
		handler = NewSilentHandler()
	}
	recv := transport.NewReceiver(c.cfg.ListenAddr(), handler, c.logger)
	if err := recv.Start(ctx); err != nil {
		return err
	}

	if c.cfg.Stats {
		go c.stats.Report(ctx, c.cfg.StatsInterval)
	}

	var gen Generator
	if c.cfg.Honest {
		gen = NewSampleGenerator(c.cfg.Size, c.logger)
	} else {
		gen = NewFillerGenerator(c.cfg.Size)
	}

	// NOTE: This log entry is used to compute performance.
	c.logger.Info("start sending payloads")

	return c.sendLoop(ctx, conn, gen)
}

// sendLoop is the burst scheduler. The first burst fires immediately; after
// that the ticker paces one burst per window. If a burst overruns its window
// the next tick fires as soon as the burst ends, with no attempt to catch up
// lost time.
func (c *Client) sendLoop(ctx context.Context, conn *transport.Conn, gen Generator) error {
	ticker := time.NewTicker(c.cfg.BurstWindow)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		start := time.Now()

		c.logger.Info("sending burst")
		for i := 0; i < c.cfg.Rate; i++ {
			payload := gen.Next()
			if err := conn.Send(payload); err != nil {
				// Fatal for the scheduler but not a crash: stop cleanly.
				c.logger.Warn("failed to send payload", zap.Error(err))
				return nil
			}
			c.stats.Record(len(payload))
		}
		gen.EndBurst()

		if elapsed := time.Since(start); elapsed > c.cfg.BurstWindow {
			// NOTE: This log entry is used to compute performance.
			c.logger.Warn("payload rate too high for this client", zap.Duration("elapsed", elapsed))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
