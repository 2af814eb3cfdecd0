package loadgen

import (
	"context"
	"net"
	"sync"
	"time"
)

// probeRetryDelay is the fixed wait between reachability probes. There is no
// backoff: an unreachable peer is retried every 10ms forever.
const probeRetryDelay = 10 * time.Millisecond

// AwaitPeers blocks until every peer has accepted a TCP connection at least
// once. One probe goroutine runs per peer; probe failures are never surfaced,
// they just mean another attempt after the delay. An empty peer list
// completes immediately. The only way out before all peers are up is ctx
// cancellation, reported via its error.
func AwaitPeers(ctx context.Context, peers []string) error {
	var wg sync.WaitGroup
	for _, peer := range peers {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			probe(ctx, addr)
		}(peer)
	}
	wg.Wait()
	return ctx.Err()
}

func probe(ctx context.Context, addr string) {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			return
		}
		select {
		case <-time.After(probeRetryDelay):
		case <-ctx.Done():
			return
		}
	}
}
