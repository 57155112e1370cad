// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

// The single-colour fast path replaces endpoint fitting with a table lookup.
// For every 8-bit channel value, every endpoint bit depth (5 or 6) and both
// palette modes, the tables below hold the endpoint pair whose ramp
// reconstructs that value with the least error, through either palette code 0
// (the first endpoint itself) or palette code 2 (the first intermediate).
//
// The tables are built once by exhaustive search over all representable
// endpoint pairs when the package is initialized, and are read-only
// afterwards, so they are shared freely across goroutines.

// sourceBlock records one precomputed endpoint pair. start and end are the
// quantized 5- or 6-bit values, err is the absolute reconstruction error in
// 8-bit channel space.
type sourceBlock struct {
	start uint8
	end   uint8
	err   uint8
}

// lookupXY is the table for X endpoint bits in the Y-colour palette mode.
// Entry [v][0] reconstructs v through palette code 0, entry [v][1] through
// palette code 2.
var (
	lookup53 [256][2]sourceBlock
	lookup63 [256][2]sourceBlock
	lookup54 [256][2]sourceBlock
	lookup64 [256][2]sourceBlock
)

func expand5(v int32) int32 { return (v << 3) | (v >> 2) }
func expand6(v int32) int32 { return (v << 2) | (v >> 4) }

func absDiff(a int32, b int32) int32 {
	if a < b {
		return b - a
	}
	return a - b
}

func buildLookup(table *[256][2]sourceBlock, bits int, fourColour bool) {
	grid := int32(1<<bits) - 1
	expand := expand5
	if bits == 6 {
		expand = expand6
	}

	for v := int32(0); v < 256; v++ {
		// Palette code 0 reconstructs the start endpoint exactly, so only
		// the start value matters. The end is set to the same value so that
		// a degenerate all-code-0 block still decodes sensibly.
		best := sourceBlock{err: 0xFF}
		for s := int32(0); s <= grid; s++ {
			if e := absDiff(v, expand(s)); e < int32(best.err) {
				best = sourceBlock{start: uint8(s), end: uint8(s), err: uint8(e)}
			}
		}
		table[v][0] = best

		// Palette code 2 is the first intermediate, so both endpoints
		// matter and the whole pair space is searched.
		best = sourceBlock{err: 0xFF}
		for s := int32(0); s <= grid; s++ {
			for e := int32(0); e <= grid; e++ {
				value := int32(0)
				if fourColour {
					value = ((2 * expand(s)) + expand(e) + 1) / 3
				} else {
					value = (expand(s) + expand(e)) / 2
				}
				if d := absDiff(v, value); d < int32(best.err) {
					best = sourceBlock{start: uint8(s), end: uint8(e), err: uint8(d)}
				}
			}
		}
		table[v][1] = best
	}
}

func init() {
	buildLookup(&lookup53, 5, false)
	buildLookup(&lookup63, 6, false)
	buildLookup(&lookup54, 5, true)
	buildLookup(&lookup64, 6, true)
}

// singleColourFit resolves the optimal encoding of a block that holds exactly
// one distinct colour, by direct table lookup. It returns the two endpoints
// as packed 5-6-5 values, the ramp level every pixel uses, and the squared
// reconstruction error summed over the three channels.
//
// fourColour selects the palette mode the block will be packed in.
func singleColourFit(colour [3]float32, fourColour bool) (a565 uint16, b565 uint16, level uint8, err uint32) {
	r := int(colour[0])
	g := int(colour[1])
	b := int(colour[2])

	lookupRB, lookupG := &lookup53, &lookup63
	if fourColour {
		lookupRB, lookupG = &lookup54, &lookup64
	}

	bestSlot, bestErr := 0, uint32(0xFFFF_FFFF)
	for slot := 0; slot < 2; slot++ {
		e := (uint32(lookupRB[r][slot].err) * uint32(lookupRB[r][slot].err)) +
			(uint32(lookupG[g][slot].err) * uint32(lookupG[g][slot].err)) +
			(uint32(lookupRB[b][slot].err) * uint32(lookupRB[b][slot].err))
		if e < bestErr {
			bestSlot, bestErr = slot, e
		}
	}

	sr, sg, sb := lookupRB[r][bestSlot], lookupG[g][bestSlot], lookupRB[b][bestSlot]
	a565 = (uint16(sr.start) << 11) | (uint16(sg.start) << 5) | uint16(sb.start)
	b565 = (uint16(sr.end) << 11) | (uint16(sg.end) << 5) | uint16(sb.end)

	// Slot 0 is ramp level 0 (palette code 0); slot 1 is the first
	// intermediate, ramp level 1 in either palette mode.
	return a565, b565, uint8(bestSlot), bestErr
}
