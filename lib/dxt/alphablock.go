// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

// An explicit alpha block (DXT3) is 8 bytes: 16 4-bit alpha values,
// row-major, least significant nibble first.
//
// An interpolated alpha block (DXT5) is 8 bytes:
//
//	byte 0: endpoint a0
//	byte 1: endpoint a1
//	bytes 2-7: 16 3-bit palette codes, row-major, packed into two 24-bit
//	           little-endian groups of 8 codes each
//
// and the palette is
//
//	a0 >  a1: {a0, a1, ((8-i)*a0 + (i-1)*a1 + 3)/7 for i in 2..7}
//	a0 <= a1: {a0, a1, ((6-i)*a0 + (i-1)*a1 + 2)/5 for i in 2..5, 0, 255}
//
// The encoder only emits the 8-interpolant mode (or a constant block);
// the decoder accepts both modes.

// packExplicitAlpha quantizes each pixel's alpha to 4 bits, rounding to the
// nearest representable value, and packs the block.
func packExplicitAlpha(dst []byte, pixels *[64]byte) {
	for i := 0; i < 8; i++ {
		lo := quantize4Bit(pixels[(8*i)+3])
		hi := quantize4Bit(pixels[(8*i)+7])
		dst[i] = lo | (hi << 4)
	}
}

// unpackExplicitAlpha writes the block's alpha values into the alpha channel
// of a 4×4 RGBA pixel block.
func unpackExplicitAlpha(pixels *[64]byte, src []byte) {
	for i := 0; i < 8; i++ {
		pixels[(8*i)+3] = (src[i] & 0x0F) * 0x11
		pixels[(8*i)+7] = (src[i] >> 4) * 0x11
	}
}

// quantize4Bit rounds an 8-bit alpha to the nearest 4-bit value. Exact
// multiples of 0x11 round-trip unchanged.
func quantize4Bit(a uint8) uint8 {
	return uint8(((uint32(a) * 15) + 127) / 255)
}

// alphaRampCodes translates ramp levels (interpolation position ascending) to
// the 8-interpolant palette's code numbering.
var alphaRampCodes = [8]uint8{0, 2, 3, 4, 5, 6, 7, 1}

// alphaRamp8 returns the 8-interpolant palette in ramp order, from a0 to a1.
// Valid only for the a0 > a1 mode (or a0 == a1, where every entry is equal).
func alphaRamp8(a0 uint8, a1 uint8) (ramp [8]int32) {
	for j := 0; j < 8; j++ {
		ramp[j] = (((7 - int32(j)) * int32(a0)) + (int32(j) * int32(a1)) + 3) / 7
	}
	ramp[0] = int32(a0)
	ramp[7] = int32(a1)
	return ramp
}

// packInterpolatedAlpha packs endpoints in ramp order and a ramp level per
// pixel into the 8-byte interpolated alpha layout, establishing the a0 > a1
// mode ordering on the wire.
func packInterpolatedAlpha(dst []byte, hi uint8, lo uint8, levels *[16]uint8) {
	codes := [16]uint8{}
	if hi == lo {
		// Either mode decodes codes 0 and 1 as the endpoints; everything
		// else depends on the ordering, so pin to code 0.
	} else {
		for i := 0; i < 16; i++ {
			codes[i] = alphaRampCodes[levels[i]]
		}
	}

	dst[0] = hi
	dst[1] = lo

	for half := 0; half < 2; half++ {
		bits := uint32(0)
		for j := 0; j < 8; j++ {
			bits |= uint32(codes[(8*half)+j]&7) << (3 * j)
		}
		dst[2+(3*half)+0] = uint8(bits >> 0)
		dst[2+(3*half)+1] = uint8(bits >> 8)
		dst[2+(3*half)+2] = uint8(bits >> 16)
	}
}

// unpackInterpolatedAlpha writes the block's alpha values into the alpha
// channel of a 4×4 RGBA pixel block, handling both palette modes.
func unpackInterpolatedAlpha(pixels *[64]byte, src []byte) {
	a0 := src[0]
	a1 := src[1]

	palette := [8]int32{int32(a0), int32(a1)}
	if a0 > a1 {
		for i := int32(2); i < 8; i++ {
			palette[i] = (((8 - i) * int32(a0)) + ((i - 1) * int32(a1)) + 3) / 7
		}
	} else {
		for i := int32(2); i < 6; i++ {
			palette[i] = (((6 - i) * int32(a0)) + ((i - 1) * int32(a1)) + 2) / 5
		}
		palette[6] = 0
		palette[7] = 255
	}

	for half := 0; half < 2; half++ {
		bits := uint32(src[2+(3*half)+0]) |
			(uint32(src[2+(3*half)+1]) << 8) |
			(uint32(src[2+(3*half)+2]) << 16)
		for j := 0; j < 8; j++ {
			code := (bits >> (3 * j)) & 7
			pixels[(4*((8*half)+j))+3] = uint8(palette[code])
		}
	}
}

// fitAlphaRange is the fast path: endpoints straight from the alpha extremes,
// each value snapped to its nearest ramp entry.
func fitAlphaRange(s *alphaSet) (hi uint8, lo uint8, pointLevels [16]uint8, err float32) {
	minA, maxA := float32(255), float32(0)
	for i := 0; i < s.count; i++ {
		if s.values[i] < minA {
			minA = s.values[i]
		}
		if s.values[i] > maxA {
			maxA = s.values[i]
		}
	}

	hi, lo = uint8(maxA), uint8(minA)
	ramp := alphaRamp8(hi, lo)
	for i := 0; i < s.count; i++ {
		level := nearestAlphaLevel(&ramp, s.values[i])
		pointLevels[i] = level
		d := s.values[i] - float32(ramp[level])
		err += s.weights[i] * d * d
	}
	return hi, lo, pointLevels, err
}

func nearestAlphaLevel(ramp *[8]int32, v float32) uint8 {
	best, bestD := uint8(0), maxFloat32
	for j := 0; j < 8; j++ {
		d := v - float32(ramp[j])
		d *= d
		if d < bestD {
			best, bestD = uint8(j), d
		}
	}
	return best
}

// fitAlphaCluster runs the colour cluster machinery in one dimension over the
// block's distinct alpha values, against the 8-interpolant ramp.
func fitAlphaCluster(s *alphaSet) (hi uint8, lo uint8, pointLevels [16]uint8) {
	// The principal axis of a 1-D set is the axis itself: sort by value,
	// descending so that ramp level 0 is the high endpoint, matching the
	// a0 > a1 wire mode.
	sorted := sortedColourSet{count: s.count}
	for i := 0; i < s.count; i++ {
		j := i
		for (j > 0) && (s.values[sorted.order[j-1]] < s.values[i]) {
			sorted.order[j] = sorted.order[j-1]
			j--
		}
		sorted.order[j] = int8(i)
	}
	for i := 0; i < s.count; i++ {
		sorted.points[i] = [3]float32{s.values[sorted.order[i]], 0, 0}
		sorted.weights[i] = s.weights[sorted.order[i]]
	}

	fit := clusterFit{
		count:  sorted.count,
		levels: 8,
	}
	for i := 0; i < sorted.count; i++ {
		fit.wSum[i+1] = fit.wSum[i] + sorted.weights[i]
		fit.xSum[i+1][0] = fit.xSum[i][0] + (sorted.weights[i] * sorted.points[i][0])
	}

	bestHi, bestLo := uint8(0), uint8(0)
	fit.score = func(a [3]float32, b [3]float32, counts *[maxClusterLevels]int, prune float32) float32 {
		qa := round255(a[0])
		qb := round255(b[0])
		if qa < qb {
			// The 8-interpolant mode needs a0 >= a1; an ascending pair
			// cannot be packed, so reject it. The enumeration always also
			// visits partitions whose fit is descending.
			return maxFloat32
		}
		ramp := alphaRamp8(qa, qb)

		err := float32(0)
		pos := 0
		for level := 0; level < 8; level++ {
			for rangeN := 0; rangeN < counts[level]; rangeN++ {
				d := sorted.points[pos][0] - float32(ramp[level])
				err += sorted.weights[pos] * d * d
				if err >= prune {
					return err
				}
				pos++
			}
		}
		if err < prune {
			bestHi, bestLo = qa, qb
		}
		return err
	}
	fit.run()

	// As with colour, the range fitter's endpoints are a floor candidate.
	if rHi, rLo, rLevels, rErr := fitAlphaRange(s); !fit.found || (rErr < fit.bestError) {
		return rHi, rLo, rLevels
	}

	sortedLevels := fit.levelOfSorted()
	for i := 0; i < sorted.count; i++ {
		pointLevels[sorted.order[i]] = sortedLevels[i]
	}
	return bestHi, bestLo, pointLevels
}
