// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestPackUnpackColourBlock(tt *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for rangeN := 0; rangeN < 1000; rangeN++ {
		c0 := uint16(rng.Intn(1 << 16))
		c1 := uint16(rng.Intn(1 << 16))
		codes := [16]uint8{}
		for i := 0; i < 16; i++ {
			codes[i] = uint8(rng.Intn(4))
		}

		buf := [8]byte{}
		packColourBlock(buf[:], c0, c1, &codes)
		gotC0, gotC1, gotCodes := unpackColourBlock(buf[:])

		if (gotC0 != c0) || (gotC1 != c1) || (gotCodes != codes) {
			tt.Fatalf("round trip: got (%04X, %04X, %v), want (%04X, %04X, %v)",
				gotC0, gotC1, gotCodes, c0, c1, codes)
		}
	}
}

func TestColourBlockBitLayout(tt *testing.T) {
	// Endpoints are little-endian 5-6-5; the top-left pixel's code sits in
	// the low two bits of byte 4.
	codes := [16]uint8{3}
	buf := [8]byte{}
	packColourBlock(buf[:], 0xF800, 0x001F, &codes)

	want := []byte{0x00, 0xF8, 0x1F, 0x00, 0x03, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf[:], want) {
		tt.Fatalf("layout: got % 02X, want % 02X", buf[:], want)
	}
}

func TestDecodeColourBlockKnownVectors(tt *testing.T) {
	testCases := []struct {
		name   string
		src    [8]byte
		pixel0 [3]uint8
	}{{
		name:   "solid-red",
		src:    [8]byte{0x00, 0xF8, 0x00, 0xF8, 0x00, 0x00, 0x00, 0x00},
		pixel0: [3]uint8{0xFF, 0x00, 0x00},
	}, {
		name: "four-colour-intermediate",
		// c0 = white > c1 = black, every code 2: (2*255 + 0 + 1) / 3 = 170.
		src:    [8]byte{0xFF, 0xFF, 0x00, 0x00, 0xAA, 0xAA, 0xAA, 0xAA},
		pixel0: [3]uint8{0xAA, 0xAA, 0xAA},
	}, {
		name: "three-colour-midpoint",
		// c0 = black <= c1 = white, every code 2: (0 + 255) / 2 = 127.
		src:    [8]byte{0x00, 0x00, 0xFF, 0xFF, 0xAA, 0xAA, 0xAA, 0xAA},
		pixel0: [3]uint8{0x7F, 0x7F, 0x7F},
	}}

	for _, tc := range testCases {
		pixels := [64]byte{}
		for i := 0; i < 16; i++ {
			pixels[(4*i)+3] = 0xFF
		}
		decodeColourBlock(&pixels, tc.src[:], false, false)

		for i := 0; i < 16; i++ {
			got := [3]uint8{pixels[4*i], pixels[(4*i)+1], pixels[(4*i)+2]}
			if got != tc.pixel0 {
				tt.Errorf("tc=%q: pixel %d: got %v, want %v", tc.name, i, got, tc.pixel0)
				break
			}
		}
	}
}

func TestDecodeColourBlockPunchthrough(tt *testing.T) {
	// 3-colour mode, every code 3. With punchthrough the pixels go
	// transparent; without it they decode as opaque black.
	src := [8]byte{0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	pixels := [64]byte{}
	for i := 0; i < 16; i++ {
		pixels[(4*i)+3] = 0xFF
	}
	decodeColourBlock(&pixels, src[:], false, true)
	if pixels[3] != 0 {
		tt.Errorf("punchthrough: alpha: got %d, want 0", pixels[3])
	}

	for i := 0; i < 16; i++ {
		pixels[(4*i)+3] = 0xFF
	}
	decodeColourBlock(&pixels, src[:], false, false)
	if (pixels[0] != 0) || (pixels[3] != 0xFF) {
		tt.Errorf("opaque black: got (%d, alpha %d), want (0, alpha 255)", pixels[0], pixels[3])
	}
}

func TestPackColourBlock4SwapsEndpoints(tt *testing.T) {
	// Fitters emit endpoints in ramp order; the packer must reorder them so
	// that c0 > c1 on the wire, remapping codes, without changing what the
	// block decodes to.
	levels := [16]uint8{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3}

	bufAB := [8]byte{}
	bufBA := [8]byte{}
	packColourBlock4(bufAB[:], 0xF800, 0x001F, &levels)

	flipped := [16]uint8{}
	for i := 0; i < 16; i++ {
		flipped[i] = 3 - levels[i]
	}
	packColourBlock4(bufBA[:], 0x001F, 0xF800, &flipped)

	if !bytes.Equal(bufAB[:], bufBA[:]) {
		tt.Fatalf("swap: got % 02X, want % 02X", bufBA[:], bufAB[:])
	}

	c0, c1, _ := unpackColourBlock(bufAB[:])
	if c0 <= c1 {
		tt.Fatalf("mode: c0 %04X <= c1 %04X", c0, c1)
	}
}
