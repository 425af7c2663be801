// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import "context"

// RxPort is the receive side of the byte channel: a one-byte latch
// between an external byte source and the machine. Safe for use by
// one pump goroutine and one machine goroutine concurrently.
type RxPort struct {
	latch chan byte
}

// NewRxPort returns an empty receive latch.
func NewRxPort() *RxPort {
	return &RxPort{latch: make(chan byte, 1)}
}

// Deliver places a byte into the latch, blocking while a previous
// byte has not been consumed. This is the backpressure that models a
// channel with no buffering beyond one byte.
func (p *RxPort) Deliver(ctx context.Context, b byte) error {
	select {
	case p.latch <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryDeliver places a byte into the latch if it is empty. Reports
// whether the byte was accepted.
func (p *RxPort) TryDeliver(b byte) bool {
	select {
	case p.latch <- b:
		return true
	default:
		return false
	}
}

// Pending reports whether a received byte is waiting to be consumed.
func (p *RxPort) Pending() bool { return len(p.latch) > 0 }

// Take consumes the pending byte, if any. Non-blocking: safe to call
// inside a tick.
func (p *RxPort) Take() (byte, bool) {
	select {
	case b := <-p.latch:
		return b, true
	default:
		return 0, false
	}
}

// TxPort is the transmit side of the byte channel: a one-byte latch
// between the machine and an external byte sink. Safe for use by one
// machine goroutine and one pump goroutine concurrently.
type TxPort struct {
	latch chan byte
}

// NewTxPort returns an empty transmit latch.
func NewTxPort() *TxPort {
	return &TxPort{latch: make(chan byte, 1)}
}

// Offer asserts a byte for transmission. It succeeds only when the
// latch is empty — the previous byte has been accepted and the channel
// is not busy. On failure the caller stays in its current state and
// retries on a later tick.
func (p *TxPort) Offer(b byte) bool {
	select {
	case p.latch <- b:
		return true
	default:
		return false
	}
}

// Busy reports whether a byte is still waiting to be drained.
func (p *TxPort) Busy() bool { return len(p.latch) > 0 }

// Next blocks until the machine offers a byte, then accepts it.
func (p *TxPort) Next(ctx context.Context) (byte, error) {
	select {
	case b := <-p.latch:
		return b, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// TryNext accepts the asserted byte, if any, without blocking.
func (p *TxPort) TryNext() (byte, bool) {
	select {
	case b := <-p.latch:
		return b, true
	default:
		return 0, false
	}
}
