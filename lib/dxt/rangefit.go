// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

// Range fitting is the one-shot heuristic: project the colour set onto its
// principal axis, take the two extreme projections as the endpoints, and snap
// every point to its nearest palette entry. Linear in the point count, no
// search, and no optimality guarantee.

// rangeFitColour fits a colour set with at least one point against a 3- or
// 4-level ramp. It returns the quantized endpoints in ramp order, the ramp
// level per colour-set point, and the weighted squared error.
func rangeFitColour(s *colourSet, levels int) (a565 uint16, b565 uint16, pointLevels [16]uint8, err float32) {
	axis := principalAxis(s)

	minI, maxI := 0, 0
	minProj := dot3(s.points[0], axis)
	maxProj := minProj
	for i := 1; i < s.count; i++ {
		proj := dot3(s.points[i], axis)
		if proj < minProj {
			minI, minProj = i, proj
		}
		if proj > maxProj {
			maxI, maxProj = i, proj
		}
	}

	a565 = quantize565(s.points[minI])
	b565 = quantize565(s.points[maxI])

	ramp := [4][3]int32{}
	if levels == 4 {
		r := colourRamp4(expand565(a565), expand565(b565))
		copy(ramp[:], r[:])
	} else {
		r := colourRamp3(expand565(a565), expand565(b565))
		copy(ramp[:levels], r[:])
	}

	for i := 0; i < s.count; i++ {
		best, bestD := uint8(0), maxFloat32
		for level := 0; level < levels; level++ {
			d0 := s.points[i][0] - float32(ramp[level][0])
			d1 := s.points[i][1] - float32(ramp[level][1])
			d2 := s.points[i][2] - float32(ramp[level][2])
			d := (d0 * d0) + (d1 * d1) + (d2 * d2)
			if d < bestD {
				best, bestD = uint8(level), d
			}
		}
		pointLevels[i] = best
		err += s.weights[i] * bestD
	}
	return a565, b565, pointLevels, err
}
