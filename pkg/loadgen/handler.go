package loadgen

import (
	"encoding/binary"
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"txload/pkg/transport"
)

// The receiver's processing capability is fixed at construction: verbose for
// sample runs, silent for filler runs so measurement logs are not skewed by
// untracked load.

// VerboseHandler records every inbound correlation event for external latency
// post-processing.
type VerboseHandler struct {
	logger *zap.Logger
}

func NewVerboseHandler(logger *zap.Logger) *VerboseHandler {
	return &VerboseHandler{logger: logger}
}

func (h *VerboseHandler) HandleFrame(remote net.Addr, frame []byte) {
	if len(frame) < MinPayloadSize {
		h.logger.Warn("dropping short inbound frame",
			zap.Int("bytes", len(frame)),
			zap.String("from", remote.String()),
		)
		return
	}
	tag := binary.BigEndian.Uint32(frame[0:4])
	disc := binary.BigEndian.Uint32(frame[4:8])
	// NOTE: This log entry is used to compute performance.
	h.logger.Info("received payload",
		zap.Uint32("tag", tag),
		zap.Uint32("client", disc),
		zap.Int("bytes", len(frame)),
		zap.String("from", remote.String()),
	)
}

// SilentHandler discards inbound frames without recording their content. It
// keeps a count so tests and debugging can still see traffic arrived.
type SilentHandler struct {
	received atomic.Uint64
}

func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) HandleFrame(net.Addr, []byte) {
	h.received.Add(1)
}

// Received reports how many frames were discarded so far.
func (h *SilentHandler) Received() uint64 {
	return h.received.Load()
}

var (
	_ transport.Handler = (*VerboseHandler)(nil)
	_ transport.Handler = (*SilentHandler)(nil)
)
