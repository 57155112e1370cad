// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

import (
	"math"
)

func dot3(a [3]float32, b [3]float32) float32 {
	return (a[0] * b[0]) + (a[1] * b[1]) + (a[2] * b[2])
}

func normalize3(v [3]float32) [3]float32 {
	n := float32(math.Sqrt(float64(dot3(v, v))))
	if n == 0 {
		return [3]float32{}
	}
	return [3]float32{v[0] / n, v[1] / n, v[2] / n}
}

// covariance computes the weighted covariance matrix of a colour set. Only
// the upper triangle is filled in; the matrix is symmetric.
func covariance(s *colourSet) (cov [3][3]float32) {
	wTotal := float32(0)
	centroid := [3]float32{}
	for i := 0; i < s.count; i++ {
		w := s.weights[i]
		wTotal += w
		centroid[0] += w * s.points[i][0]
		centroid[1] += w * s.points[i][1]
		centroid[2] += w * s.points[i][2]
	}
	if wTotal > 0 {
		centroid[0] /= wTotal
		centroid[1] /= wTotal
		centroid[2] /= wTotal
	}

	for i := 0; i < s.count; i++ {
		w := s.weights[i]
		d0 := s.points[i][0] - centroid[0]
		d1 := s.points[i][1] - centroid[1]
		d2 := s.points[i][2] - centroid[2]

		cov[0][0] += w * d0 * d0
		cov[0][1] += w * d0 * d1
		cov[0][2] += w * d0 * d2
		cov[1][1] += w * d1 * d1
		cov[1][2] += w * d1 * d2
		cov[2][2] += w * d2 * d2
	}
	cov[1][0] = cov[0][1]
	cov[2][0] = cov[0][2]
	cov[2][1] = cov[1][2]
	return cov
}

// principalAxisIterations is the number of power-method rounds used to
// approximate the dominant eigenvector. The axis only orders points for the
// fitters, so a rough estimate is enough, but the count is fixed to keep the
// output deterministic.
const principalAxisIterations = 4

// principalAxis estimates the dominant eigenvector of the weighted covariance
// of s by power iteration from (1, 1, 1).
func principalAxis(s *colourSet) [3]float32 {
	cov := covariance(s)
	v := normalize3([3]float32{1, 1, 1})

	for rangeN := 0; rangeN < principalAxisIterations; rangeN++ {
		next := [3]float32{
			(cov[0][0] * v[0]) + (cov[0][1] * v[1]) + (cov[0][2] * v[2]),
			(cov[1][0] * v[0]) + (cov[1][1] * v[1]) + (cov[1][2] * v[2]),
			(cov[2][0] * v[0]) + (cov[2][1] * v[1]) + (cov[2][2] * v[2]),
		}
		n := normalize3(next)
		if (n[0] == 0) && (n[1] == 0) && (n[2] == 0) {
			break
		}
		v = n
	}
	return v
}

func clamp255(x float32) float32 {
	if x < 0 {
		return 0
	} else if x > 255 {
		return 255
	}
	return x
}

// quantize565 rounds a colour in [0, 255] channel space to the nearest
// representable 5-6-5 value.
func quantize565(c [3]float32) uint16 {
	r := uint32((clamp255(c[0]) * 31 / 255) + 0.5)
	g := uint32((clamp255(c[1]) * 63 / 255) + 0.5)
	b := uint32((clamp255(c[2]) * 31 / 255) + 0.5)
	return uint16((r << 11) | (g << 5) | b)
}

// expand565 widens a 5-6-5 colour back to 8-bit channels, replicating the
// high bits into the low bits.
func expand565(v uint16) [3]int32 {
	r := int32(v>>11) & 0x1F
	g := int32(v>>5) & 0x3F
	b := int32(v>>0) & 0x1F

	r = (r << 3) | (r >> 2)
	g = (g << 2) | (g >> 4)
	b = (b << 3) | (b >> 2)
	return [3]int32{r, g, b}
}

func round255(x float32) uint8 {
	return uint8(clamp255(x) + 0.5)
}
