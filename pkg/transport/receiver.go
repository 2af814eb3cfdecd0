package transport

import (
	"context"
	"io"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handler is the processing capability attached to a Receiver. It is chosen
// once at construction; the receiver never branches on what it received.
type Handler interface {
	HandleFrame(remote net.Addr, frame []byte)
}

// Receiver listens for inbound connections and feeds every parsed frame to
// its handler. It lives for the whole process unless the context is
// cancelled.
type Receiver struct {
	addr    string
	handler Handler
	logger  *zap.Logger
	ln      net.Listener
}

func NewReceiver(addr string, handler Handler, logger *zap.Logger) *Receiver {
	return &Receiver{
		addr:    addr,
		handler: handler,
		logger:  logger,
	}
}

// Start binds the listen address and serves in the background. The bind
// happens synchronously so a port conflict surfaces before any load is sent.
func (r *Receiver) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", r.addr)
	}
	r.ln = ln
	r.logger.Info("listening for inbound frames", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	go r.serve(ctx, ln)
	return nil
}

// Addr reports the bound address. Only valid after Start.
func (r *Receiver) Addr() net.Addr {
	return r.ln.Addr()
}

func (r *Receiver) serve(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Warn("accept failed", zap.Error(err))
			}
			return
		}
		go r.handleConn(ctx, conn)
	}
}

func (r *Receiver) handleConn(ctx context.Context, conn net.Conn) {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	fc := NewConn(conn)
	for {
		frame, err := fc.Recv()
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				r.logger.Debug("inbound connection ended", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
			}
			conn.Close()
			return
		}
		r.handler.HandleFrame(conn.RemoteAddr(), frame)
	}
}
