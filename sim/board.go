// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import "fmt"

// Board holds the two fixed-size cell buffers: current, the
// authoritative state read by the render and command paths, and next,
// the scratch buffer written by the update engine. Cells are stored
// row-major at linear index y*width + x, one byte per cell, 1 alive.
//
// next carries meaningful data only between the start of an update
// cycle and the end of the following commit; at all other times it is
// stale.
type Board struct {
	width  int
	height int
	// current and next are never resized or swapped; the commit
	// engine copies next into current cell by cell, as the silicon's
	// single memory port requires.
	current []uint8
	next    []uint8
}

// neighborOffsets is the fixed order in which the update engine
// samples the eight toroidal neighbors, one per tick.
var neighborOffsets = [8][2]int{
	{-1, +1}, {0, +1}, {+1, +1},
	{-1, 0}, {+1, 0},
	{-1, -1}, {0, -1}, {+1, -1},
}

// NewBoard creates a board with all cells dead. Both dimensions must
// be powers of two: wraparound is computed by bitmasking, matching the
// original silicon, and behavior for other sizes is undefined there.
func NewBoard(width, height int) (*Board, error) {
	if width < 2 || width&(width-1) != 0 {
		return nil, fmt.Errorf("board width must be a power of two >= 2, got %d", width)
	}
	if height < 2 || height&(height-1) != 0 {
		return nil, fmt.Errorf("board height must be a power of two >= 2, got %d", height)
	}
	return &Board{
		width:   width,
		height:  height,
		current: make([]uint8, width*height),
		next:    make([]uint8, width*height),
	}, nil
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// Size returns the total cell count.
func (b *Board) Size() int { return len(b.current) }

// Cells returns a copy of the current buffer. Not safe to call
// concurrently with ticking; intended for seeding and inspection
// between ticks.
func (b *Board) Cells() []uint8 {
	cells := make([]uint8, len(b.current))
	copy(cells, b.current)
	return cells
}

// SetCells replaces the current buffer. The slice length must equal
// Size; values other than 0 are normalized to 1.
func (b *Board) SetCells(cells []uint8) error {
	if len(cells) != len(b.current) {
		return fmt.Errorf("cell slice length %d does not match board size %d", len(cells), len(b.current))
	}
	for i, v := range cells {
		if v != 0 {
			b.current[i] = 1
		} else {
			b.current[i] = 0
		}
	}
	return nil
}

// neighborIndex returns the linear index of the slot'th toroidal
// neighbor of the cell at linear index i. The bitmask wrap is valid
// because both dimensions are powers of two (Go's & on a negative
// left operand keeps the low bits, so -1 & (n-1) == n-1).
func (b *Board) neighborIndex(i, slot int) int {
	x := i % b.width
	y := i / b.width
	offset := neighborOffsets[slot]
	nx := (x + offset[0]) & (b.width - 1)
	ny := (y + offset[1]) & (b.height - 1)
	return ny*b.width + nx
}
