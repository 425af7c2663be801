// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifeui

import (
	"context"

	"github.com/ccattuto/tt07-conway-term/observe"
	"github.com/ccattuto/tt07-conway-term/serial"
)

// FrameEvent is one decoded board frame together with the banner text
// seen so far on the stream.
type FrameEvent struct {
	Frame  observe.Frame
	Banner string
}

// Stream drains the transmit port and decodes the byte stream into
// frames. It is the single TX consumer, standing in for the server's
// drain loop when the simulator runs in-process. The returned channel
// closes when ctx is cancelled.
func Stream(ctx context.Context, tx *serial.TxPort, width, height int) <-chan FrameEvent {
	events := make(chan FrameEvent, 8)
	go func() {
		defer close(events)
		splitter := observe.NewFrameSplitter(width, height)
		for {
			b, err := tx.Next(ctx)
			if err != nil {
				return
			}
			for _, frame := range splitter.Feed([]byte{b}) {
				event := FrameEvent{Frame: frame, Banner: splitter.BannerText()}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events
}
