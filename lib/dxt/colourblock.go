// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

// A colour block is 8 bytes:
//
//	bytes 0-1: endpoint c0, 5-6-5 RGB, little-endian
//	bytes 2-3: endpoint c1, 5-6-5 RGB, little-endian
//	bytes 4-7: 16 2-bit palette codes, row-major, least significant bits
//	           first (byte 4 bit 0-1 is the top-left pixel)
//
// The palette depends on the raw uint16 ordering of the endpoints:
//
//	c0 >  c1 (4-colour): {c0, c1, (2*c0+c1+1)/3, (c0+2*c1+1)/3}
//	c0 <= c1 (3-colour): {c0, c1, (c0+c1)/2, transparent-or-black}
//
// per channel after expanding 5-6-5 to 8 bits by bit replication. Fitters
// work in ramp order, from endpoint A at interpolation position 0 to endpoint
// B at position 1; rampCodes4 and rampCodes3 translate ramp levels to palette
// codes.

var (
	rampCodes4 = [4]uint8{0, 2, 3, 1}
	rampCodes3 = [3]uint8{0, 2, 1}
)

const transparentCode3 = 3

// colourRamp4 returns the 4-colour palette in ramp order for already-expanded
// endpoints.
func colourRamp4(a [3]int32, b [3]int32) (ramp [4][3]int32) {
	ramp[0] = a
	ramp[3] = b
	for c := 0; c < 3; c++ {
		ramp[1][c] = ((2 * a[c]) + b[c] + 1) / 3
		ramp[2][c] = (a[c] + (2 * b[c]) + 1) / 3
	}
	return ramp
}

// colourRamp3 returns the 3-colour palette in ramp order.
func colourRamp3(a [3]int32, b [3]int32) (ramp [3][3]int32) {
	ramp[0] = a
	ramp[2] = b
	for c := 0; c < 3; c++ {
		ramp[1][c] = (a[c] + b[c]) / 2
	}
	return ramp
}

// packColourBlock writes the 8-byte colour block for quantized endpoints and
// per-pixel palette codes. It does not reorder the endpoints; callers must
// already have established the mode-defining c0/c1 ordering.
func packColourBlock(dst []byte, c0 uint16, c1 uint16, codes *[16]uint8) {
	dst[0] = uint8(c0 >> 0)
	dst[1] = uint8(c0 >> 8)
	dst[2] = uint8(c1 >> 0)
	dst[3] = uint8(c1 >> 8)

	for y := 0; y < 4; y++ {
		d := uint8(0)
		for x := 0; x < 4; x++ {
			d |= (codes[(4*y)+x] & 3) << (2 * x)
		}
		dst[4+y] = d
	}
}

// packColourBlock4 packs endpoints fitted in ramp order into a 4-colour mode
// block, swapping endpoints as needed so that c0 > c1 on the wire.
//
// If the quantized endpoints collide, the block would decode in 3-colour mode
// instead, so every pixel is pinned to palette code 0, which reconstructs
// identically in both modes.
func packColourBlock4(dst []byte, a565 uint16, b565 uint16, levels *[16]uint8) {
	codes := [16]uint8{}
	if a565 == b565 {
		packColourBlock(dst, a565, b565, &codes)
		return
	}

	flip := uint8(0)
	if a565 < b565 {
		a565, b565 = b565, a565
		flip = 1
	}
	for i := 0; i < 16; i++ {
		codes[i] = rampCodes4[levels[i]] ^ flip
	}
	packColourBlock(dst, a565, b565, &codes)
}

// packColourBlock3 packs endpoints fitted in ramp order into a 3-colour mode
// block (c0 <= c1 on the wire). A negative level marks a punch-through
// transparent pixel.
func packColourBlock3(dst []byte, a565 uint16, b565 uint16, levels *[16]int8) {
	swap := false
	if a565 > b565 {
		a565, b565 = b565, a565
		swap = true
	}

	codes := [16]uint8{}
	for i := 0; i < 16; i++ {
		if levels[i] < 0 {
			codes[i] = transparentCode3
			continue
		}
		code := rampCodes3[levels[i]]
		if swap && (code < 2) {
			code ^= 1
		}
		codes[i] = code
	}
	packColourBlock(dst, a565, b565, &codes)
}

// unpackColourBlock is the exact inverse of packColourBlock.
func unpackColourBlock(src []byte) (c0 uint16, c1 uint16, codes [16]uint8) {
	c0 = uint16(src[0]) | (uint16(src[1]) << 8)
	c1 = uint16(src[2]) | (uint16(src[3]) << 8)

	for y := 0; y < 4; y++ {
		d := src[4+y]
		for x := 0; x < 4; x++ {
			codes[(4*y)+x] = (d >> (2 * x)) & 3
		}
	}
	return c0, c1, codes
}

// decodeColourBlock expands an 8-byte colour block into the RGB channels of a
// 4×4 RGBA pixel block, leaving the alpha channel alone except to zero
// punch-through pixels.
//
// fourColourOnly forces the 4-colour palette regardless of endpoint ordering,
// which is how the colour half of DXT3 and DXT5 blocks is decoded.
// punchthrough selects between FormatDXT1A's transparent and FormatDXT1's
// opaque-black reading of the 3-colour palette's last entry.
func decodeColourBlock(pixels *[64]byte, src []byte, fourColourOnly bool, punchthrough bool) {
	c0, c1, codes := unpackColourBlock(src)
	e0 := expand565(c0)
	e1 := expand565(c1)

	palette := [4][3]int32{}
	threeColour := !fourColourOnly && (c0 <= c1)
	if threeColour {
		r := colourRamp3(e0, e1)
		palette[0] = r[0]
		palette[1] = r[2]
		palette[2] = r[1]
		palette[3] = [3]int32{0, 0, 0}
	} else {
		r := colourRamp4(e0, e1)
		palette[0] = r[0]
		palette[1] = r[3]
		palette[2] = r[1]
		palette[3] = r[2]
	}

	for i := 0; i < 16; i++ {
		code := codes[i]
		pixels[(4*i)+0] = uint8(palette[code][0])
		pixels[(4*i)+1] = uint8(palette[code][1])
		pixels[(4*i)+2] = uint8(palette[code][2])
		if threeColour && punchthrough && (code == transparentCode3) {
			pixels[(4*i)+3] = 0
		}
	}
}
