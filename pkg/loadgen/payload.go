package loadgen

import (
	"encoding/binary"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

// Payload layout, all fields big-endian:
//
//	bytes[0:4]  tag (u32)
//	bytes[4:8]  discriminator (u32)
//	bytes[8:]   zero filler up to the configured size
//
// Sample payloads tag with a burst counter and discriminate by a per-run
// client id; filler payloads tag with the u32 sentinel and discriminate by a
// per-payload nonce.

// fillerTag marks a payload as untracked background load.
const fillerTag = math.MaxUint32

// sampleTagMask clears the counter's high byte before it becomes a tag, so a
// sample tag can never collide with the filler sentinel.
const sampleTagMask = 0x00FFFFFF

// Generator produces fixed-size tagged payloads. It is owned by the single
// scheduler goroutine and is never reset mid-run.
type Generator interface {
	// Next builds the next payload.
	Next() []byte
	// EndBurst marks the end of one burst window.
	EndBurst()
}

// SampleGenerator tags every payload in a burst with the same counter value;
// the counter advances once per burst, not once per payload. Downstream
// latency tooling correlates at burst granularity.
type SampleGenerator struct {
	size     int
	logger   *zap.Logger
	counter  uint32
	clientID uint32 // chosen once per run, constant thereafter
}

func NewSampleGenerator(size int, logger *zap.Logger) *SampleGenerator {
	return &SampleGenerator{
		size:     size,
		logger:   logger,
		clientID: rand.Uint32(),
	}
}

func (g *SampleGenerator) Next() []byte {
	// NOTE: This log entry is used to compute performance.
	g.logger.Info("sending sample payload",
		zap.Uint64("sample", g.SampleID()),
		zap.Uint32("client", g.clientID),
		zap.Uint32("counter", g.counter),
	)

	p := make([]byte, g.size)
	binary.BigEndian.PutUint32(p[0:4], g.counter&sampleTagMask)
	binary.BigEndian.PutUint32(p[4:8], g.clientID)
	return p
}

func (g *SampleGenerator) EndBurst() {
	g.counter++
}

// SampleID is the composite identifier logged for each sample payload:
// counter in the high half, client id in the low half.
func (g *SampleGenerator) SampleID() uint64 {
	return uint64(g.counter)<<32 + uint64(g.clientID)
}

// ClientID is the run-identifier shared by every sample in this run.
func (g *SampleGenerator) ClientID() uint32 {
	return g.clientID
}

// FillerGenerator emits sentinel-tagged payloads whose discriminator is a
// nonce advanced once per payload, so every filler payload from one process
// differs from every other. The nonce starts at a random point and wraps at
// 32 bits.
type FillerGenerator struct {
	size  int
	nonce uint32
}

func NewFillerGenerator(size int) *FillerGenerator {
	return &FillerGenerator{
		size:  size,
		nonce: rand.Uint32(),
	}
}

func (g *FillerGenerator) Next() []byte {
	g.nonce++
	p := make([]byte, g.size)
	binary.BigEndian.PutUint32(p[0:4], fillerTag)
	binary.BigEndian.PutUint32(p[4:8], g.nonce)
	return p
}

func (g *FillerGenerator) EndBurst() {}
