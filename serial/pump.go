// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"context"
	"errors"
	"io"
)

// Pump bridges a port pair to rw until ctx is cancelled or either
// direction fails. Inbound bytes are read one at a time and delivered
// to rx (blocking while the machine has not consumed the previous
// byte); outbound bytes are drained from tx and written one at a
// time.
//
// A clean EOF on the read side is reported as io.EOF so callers can
// distinguish a peer hang-up from a transport fault.
func Pump(ctx context.Context, rx *RxPort, tx *TxPort, rw io.ReadWriter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)

	go func() { errs <- pumpIn(ctx, rx, rw) }()
	go func() { errs <- pumpOut(ctx, tx, rw) }()

	err := <-errs
	cancel()
	<-errs
	return err
}

// pumpIn moves bytes from r into the receive latch.
func pumpIn(ctx context.Context, rx *RxPort, r io.Reader) error {
	var buf [1]byte
	for {
		n, err := r.Read(buf[:])
		if n == 1 {
			if err := rx.Deliver(ctx, buf[0]); err != nil {
				return err
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// pumpOut moves bytes from the transmit latch into w.
func pumpOut(ctx context.Context, tx *TxPort, w io.Writer) error {
	for {
		b, err := tx.Next(ctx)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}
	}
}
