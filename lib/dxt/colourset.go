// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

// punchthroughThreshold is the alpha value below which a pixel counts as
// fully transparent in FormatDXT1A.
const punchthroughThreshold = 128

// colourSet holds the distinct weighted colours of one 4×4 block.
//
// points are in [0, 255] channel space, in insertion order of first
// occurrence. remap maps each of the 16 pixel positions to its point index,
// or -1 for a pixel excluded as transparent.
type colourSet struct {
	count       int
	points      [16][3]float32
	weights     [16]float32
	remap       [16]int8
	transparent bool
}

// setColours extracts the colour set from a 4×4 RGBA block.
//
// pixels holds 16 RGBA samples in row-major order. If punchthrough is set,
// pixels with alpha below the punch-through threshold are excluded and marked
// -1 in remap. If weightByAlpha is set, each pixel contributes alpha/255
// instead of 1 to its point's weight.
func (s *colourSet) setColours(pixels *[64]byte, punchthrough bool, weightByAlpha bool) {
	s.count = 0
	s.transparent = false

	for i := 0; i < 16; i++ {
		r := pixels[(4*i)+0]
		g := pixels[(4*i)+1]
		b := pixels[(4*i)+2]
		a := pixels[(4*i)+3]

		if punchthrough && (a < punchthroughThreshold) {
			s.remap[i] = -1
			s.transparent = true
			continue
		}

		w := float32(1)
		if weightByAlpha {
			w = float32(a) / 255
		}

		j := 0
		for ; j < s.count; j++ {
			if (s.points[j][0] == float32(r)) &&
				(s.points[j][1] == float32(g)) &&
				(s.points[j][2] == float32(b)) {
				break
			}
		}

		if j < s.count {
			s.weights[j] += w
		} else {
			s.points[j] = [3]float32{float32(r), float32(g), float32(b)}
			s.weights[j] = w
			s.count++
		}
		s.remap[i] = int8(j)
	}
}

// alphaSet holds the distinct weighted alpha values of one 4×4 block, the
// one-dimensional analogue of colourSet.
type alphaSet struct {
	count   int
	values  [16]float32
	weights [16]float32
	remap   [16]int8
}

// setAlphas extracts the alpha set from a 4×4 RGBA block.
func (s *alphaSet) setAlphas(pixels *[64]byte) {
	s.count = 0

	for i := 0; i < 16; i++ {
		a := pixels[(4*i)+3]

		j := 0
		for ; j < s.count; j++ {
			if s.values[j] == float32(a) {
				break
			}
		}

		if j < s.count {
			s.weights[j]++
		} else {
			s.values[j] = float32(a)
			s.weights[j] = 1
			s.count++
		}
		s.remap[i] = int8(j)
	}
}
