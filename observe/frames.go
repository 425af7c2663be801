// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package observe

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// homeSequence is the frame delimiter the render engine emits before
// every frame: the cursor-home escape of the original silicon.
var homeSequence = []byte{27, '[', ';', 'H'}

// Frame is one rendered board picture decoded from the transmit
// stream.
type Frame struct {
	Width  int
	Height int

	// Rows holds the raw cell bytes of each row, 'O' for alive and
	// ' ' for dead, without the CR LF terminator.
	Rows []string
}

// Alive reports whether the cell at (x, y) is alive in this frame.
// Out-of-range coordinates are dead.
func (f Frame) Alive(x, y int) bool {
	if y < 0 || y >= len(f.Rows) || x < 0 || x >= len(f.Rows[y]) {
		return false
	}
	return f.Rows[y][x] == 'O'
}

// Population counts the live cells in the frame.
func (f Frame) Population() int {
	count := 0
	for _, row := range f.Rows {
		count += strings.Count(row, "O")
	}
	return count
}

// FrameSplitter incrementally cuts the transmit byte stream into
// frames. It knows the board geometry, so a frame is complete as soon
// as height*(width+2) bytes have followed a cursor-home sequence —
// the splitter never waits for the next frame to close the current
// one. Bytes preceding the first cursor-home are collected as the
// boot banner.
//
// Not safe for concurrent use; feed it from a single goroutine.
type FrameSplitter struct {
	width  int
	height int

	pending []byte
	banner  []byte
	// sawHome flips once the first delimiter arrives; everything
	// before it is banner, anything between frames after it is
	// discarded (the render engine emits nothing between frames).
	sawHome bool
	inFrame bool
}

// NewFrameSplitter creates a splitter for the given board geometry.
func NewFrameSplitter(width, height int) *FrameSplitter {
	return &FrameSplitter{width: width, height: height}
}

// frameLength is the byte count of one frame body (after the home
// sequence): height rows of width cells plus CR LF.
func (s *FrameSplitter) frameLength() int {
	return s.height * (s.width + 2)
}

// Feed consumes a chunk of the transmit stream and returns the frames
// completed by it, in order. Chunk boundaries are arbitrary; a frame
// or delimiter may span any number of feeds.
func (s *FrameSplitter) Feed(p []byte) []Frame {
	s.pending = append(s.pending, p...)
	var frames []Frame

	for {
		if s.inFrame {
			if len(s.pending) < s.frameLength() {
				return frames
			}
			body := s.pending[:s.frameLength()]
			s.pending = append([]byte(nil), s.pending[s.frameLength():]...)
			s.inFrame = false
			frames = append(frames, s.decode(body))
			continue
		}

		cut := bytes.Index(s.pending, homeSequence)
		if cut < 0 {
			// Keep a partial delimiter suffix; classify the rest.
			keep := partialSuffix(s.pending, homeSequence)
			s.classify(s.pending[:len(s.pending)-keep])
			s.pending = append([]byte(nil), s.pending[len(s.pending)-keep:]...)
			return frames
		}
		s.classify(s.pending[:cut])
		s.pending = append([]byte(nil), s.pending[cut+len(homeSequence):]...)
		s.sawHome = true
		s.inFrame = true
	}
}

// Banner returns the raw bytes received before the first frame
// delimiter, escape sequences included.
func (s *FrameSplitter) Banner() []byte {
	return append([]byte(nil), s.banner...)
}

// BannerText returns the banner with escape sequences stripped,
// suitable for plain display.
func (s *FrameSplitter) BannerText() string {
	return ansi.Strip(string(s.banner))
}

// classify routes non-frame bytes: banner before the first delimiter,
// discard after.
func (s *FrameSplitter) classify(p []byte) {
	if !s.sawHome && len(p) > 0 {
		s.banner = append(s.banner, p...)
	}
}

// decode slices a frame body into rows.
func (s *FrameSplitter) decode(body []byte) Frame {
	frame := Frame{
		Width:  s.width,
		Height: s.height,
		Rows:   make([]string, s.height),
	}
	stride := s.width + 2
	for row := 0; row < s.height; row++ {
		frame.Rows[row] = string(body[row*stride : row*stride+s.width])
	}
	return frame
}

// partialSuffix returns the length of the longest proper prefix of
// delim that ends p, so a delimiter split across feeds is not lost.
func partialSuffix(p, delim []byte) int {
	max := len(delim) - 1
	if max > len(p) {
		max = len(p)
	}
	for n := max; n > 0; n-- {
		if bytes.Equal(p[len(p)-n:], delim[:n]) {
			return n
		}
	}
	return 0
}
