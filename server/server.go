// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/ccattuto/tt07-conway-term/observe"
	"github.com/ccattuto/tt07-conway-term/serial"
)

// ErrBusy is written (as text) to a connection refused because
// another client is attached.
var ErrBusy = errors.New("another client is attached")

// busyNotice is what a refused client sees on its terminal.
const busyNotice = "\r\nconway-term: another client is attached\r\n"

// forwardBacklog is the per-client forwarding buffer in bytes. At the
// reference configuration this holds dozens of frames; a client that
// falls further behind than this is detached rather than allowed to
// stall the simulator.
const forwardBacklog = 4096

// Server bridges the simulator's serial ports to TCP clients.
type Server struct {
	rx      *serial.RxPort
	tx      *serial.TxPort
	history *observe.RingBuffer
	logger  *slog.Logger

	listener net.Listener

	mu      sync.Mutex
	forward chan byte // nil when no client is attached
}

// New creates a server for the given port pair. Transmitted bytes are
// retained in history for late-attach replay. A nil logger disables
// logging.
func New(rx *serial.RxPort, tx *serial.TxPort, history *observe.RingBuffer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		rx:      rx,
		tx:      tx,
		history: history,
		logger:  logger,
	}
}

// Listen binds the TCP address. Use ":0" for a random port.
func (s *Server) Listen(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	s.listener = listener
	s.logger.Info("serial channel listening", "address", listener.Addr().String())
	return nil
}

// Address returns the bound address in "host:port" form. Valid after
// Listen.
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

// Serve accepts clients until ctx is cancelled, then returns nil.
// Listen must have been called.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()
	go s.drain(ctx)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handle(ctx, conn)
	}
}

// drain is the single consumer of the transmit port. Every byte goes
// into the history ring; a copy goes to the attached client, if any.
// This runs whether or not a client is attached, so the machine's
// transmit handshake always completes.
func (s *Server) drain(ctx context.Context) {
	for {
		b, err := s.tx.Next(ctx)
		if err != nil {
			return
		}
		s.history.WriteByte(b)

		s.mu.Lock()
		forward := s.forward
		if forward != nil {
			select {
			case forward <- b:
			default:
				// Client too far behind; abandon it. Closing the
				// channel makes its writer goroutine hang up.
				close(forward)
				s.forward = nil
				s.logger.Warn("detaching client: forwarding backlog overflow")
			}
		}
		s.mu.Unlock()
	}
}

// handle serves one connection for its lifetime.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()

	// Attach, atomically with the history snapshot so no transmitted
	// byte is missed or duplicated between catch-up and live.
	s.mu.Lock()
	if s.forward != nil {
		s.mu.Unlock()
		s.logger.Info("refusing client", "remote", remote, "reason", ErrBusy)
		conn.Write([]byte(busyNotice))
		conn.Close()
		return
	}
	forward := make(chan byte, forwardBacklog)
	s.forward = forward
	catchup := s.history.ReadFrom(0)
	s.mu.Unlock()

	s.logger.Info("client attached", "remote", remote, "catchup_bytes", len(catchup))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		if len(catchup) > 0 {
			if _, err := conn.Write(catchup); err != nil {
				return
			}
		}
		for b := range forward {
			if _, err := conn.Write([]byte{b}); err != nil {
				return
			}
		}
	}()

	// Inbound: one byte at a time into the receive latch, with the
	// latch's own backpressure.
	var buf [1]byte
	for {
		n, err := conn.Read(buf[:])
		if n == 1 {
			if err := s.rx.Deliver(ctx, buf[0]); err != nil {
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.logger.Debug("client read error", "remote", remote, "error", err)
			}
			break
		}
	}

	s.detach(forward)
	conn.Close()
	<-done
	s.logger.Info("client detached", "remote", remote)
}

// detach removes the client's forwarding channel if it is still the
// attached one.
func (s *Server) detach(forward chan byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forward == forward {
		close(forward)
		s.forward = nil
	}
}
