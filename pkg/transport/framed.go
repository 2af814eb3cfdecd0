// Package transport adapts a raw ordered byte stream into discrete
// length-delimited frames.
//
// Wire format:
//
//	[Length:4B big-endian][Payload...]
//
// Length counts only the payload bytes that follow. The same framing is used
// in both directions: the outbound client connection and the inbound receiver
// speak the identical format.
package transport

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"

	"github.com/pkg/errors"
)

const (
	// LengthFieldSize is the number of bytes in the frame header.
	LengthFieldSize = 4

	// MaxInboundFrameSize bounds the payload length accepted when parsing
	// inbound frames. Outbound sends are not limited; arbitrarily large
	// payloads are a caller decision.
	MaxInboundFrameSize = 32 << 20
)

// Conn wraps one live byte-stream connection with length-delimited framing.
// It is not safe for concurrent use; each direction has a single owner.
type Conn struct {
	conn   net.Conn
	br     *bufio.Reader
	bw     *bufio.Writer
	lenBuf [LengthFieldSize]byte
}

// NewConn frames an already established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		br:   bufio.NewReader(c),
		bw:   bufio.NewWriter(c),
	}
}

// Dial connects to addr and returns a framed connection. There is no retry;
// a refused connection is the caller's problem.
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	return NewConn(c), nil
}

// Send writes one frame and flushes it to the wire. A failure is final for
// the connection; Send does not retry.
func (c *Conn) Send(payload []byte) error {
	binary.BigEndian.PutUint32(c.lenBuf[:], uint32(len(payload)))
	if _, err := c.bw.Write(c.lenBuf[:]); err != nil {
		return errors.Wrap(err, "write frame header")
	}
	if _, err := c.bw.Write(payload); err != nil {
		return errors.Wrap(err, "write frame body")
	}
	return errors.Wrap(c.bw.Flush(), "flush frame")
}

// Recv reads the next frame. A clean close on a frame boundary returns
// io.EOF unwrapped so callers can tell it from a truncated frame.
func (c *Conn) Recv() ([]byte, error) {
	if _, err := io.ReadFull(c.br, c.lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "read frame header")
	}
	n := binary.BigEndian.Uint32(c.lenBuf[:])
	if n > MaxInboundFrameSize {
		return nil, errors.Errorf("inbound frame of %d bytes exceeds limit of %d", n, MaxInboundFrameSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(c.br, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "read frame body")
	}
	return payload, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
