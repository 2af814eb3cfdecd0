package loadgen

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/text/message"
)

// Stats accumulates sent-payload counters. The scheduler is the only writer;
// the reporter goroutine only reads, so plain atomics are enough.
type Stats struct {
	payloads atomic.Uint64
	bytes    atomic.Uint64
}

func (s *Stats) Record(n int) {
	s.payloads.Add(1)
	s.bytes.Add(uint64(n))
}

// Totals returns the cumulative payload and byte counts.
func (s *Stats) Totals() (payloads, bytes uint64) {
	return s.payloads.Load(), s.bytes.Load()
}

// Report prints per-interval throughput deltas to stdout until ctx is
// cancelled.
func (s *Stats) Report(ctx context.Context, interval time.Duration) {
	var prevPayloads uint64
	var prevBytes uint64
	p := message.NewPrinter(message.MatchLanguage("en"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			payloads, bytes := s.Totals()
			deltaPayloads := payloads - prevPayloads
			deltaBytes := bytes - prevBytes
			prevPayloads = payloads
			prevBytes = bytes
			p.Printf("%d payloads/s, %.2f Mbps\n", deltaPayloads, float64(deltaBytes*8)/1024/1024)
		case <-ctx.Done():
			return
		}
	}
}
