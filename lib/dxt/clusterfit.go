// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

// Cluster fitting orders the block's distinct colours along an approximate
// principal axis and then tries every way of cutting that ordering into k
// contiguous runs, one per interpolation level. Restricting the search to
// contiguous, monotonic assignments turns an intractable k^n labelling
// problem into at most a few hundred thousand candidates for n <= 16 and
// k <= 8.
//
// For each candidate the best endpoint pair is the solution of a small
// weighted least-squares system. With level i carrying interpolation position
// t_i = i/(k-1), minimizing
//
//	sum_p w_p * |x_p - ((1-t_p)*A + t_p*B)|^2
//
// over A and B gives the 2x2 normal equations
//
//	[sum w*(1-t)^2    sum w*(1-t)*t] [A]   [sum w*(1-t)*x]
//	[sum w*(1-t)*t    sum w*t^2   ] [B] = [sum w*t*x    ]
//
// solved per channel with a shared determinant. The error reported for a
// candidate is computed against the integer ramp built from the quantized
// endpoints, so the winner is the best encodable block, not the best
// real-valued fit.
//
// The enumeration order is fixed: run lengths are chosen level 0 first, each
// length ascending from zero. Ties keep the first candidate encountered, so
// the output is deterministic.

// maxClusterLevels is the largest interpolation level count of any supported
// format (interpolated alpha).
const maxClusterLevels = 8

// clusterScoreFunc evaluates one candidate partition. a and b are the
// real-valued least-squares endpoints in ramp order, counts the run length
// per level, and prune the error that the candidate must beat. It returns
// the candidate's error, which implementations may leave unfinished (any
// value >= prune) once it can no longer win.
type clusterScoreFunc func(a [3]float32, b [3]float32, counts *[maxClusterLevels]int, prune float32) float32

// clusterFit enumerates monotonic partitions of points that were already
// sorted along the principal axis.
type clusterFit struct {
	count  int
	levels int

	// Prefix sums over the sorted points: wSum[i] and xSum[i] accumulate the
	// weights and weighted points of sorted positions [0, i).
	wSum [17]float32
	xSum [17][3]float32

	score clusterScoreFunc

	bestError  float32
	bestCounts [maxClusterLevels]int
	found      bool
}

// run enumerates all partitions and records the best scoring one.
func (f *clusterFit) run() {
	counts := [maxClusterLevels]int{}
	f.bestError = maxFloat32
	f.found = false
	f.enumerate(0, 0, &counts)
}

// enumerate recurses over run lengths. level is the level being sized, start
// the first sorted position not yet assigned.
func (f *clusterFit) enumerate(level int, start int, counts *[maxClusterLevels]int) {
	if level == f.levels-1 {
		counts[level] = f.count - start
		f.evaluate(counts)
		return
	}
	for n := 0; start+n <= f.count; n++ {
		counts[level] = n
		f.enumerate(level+1, start+n, counts)
	}
	counts[level] = 0
}

// evaluate solves the least-squares endpoints for one partition and scores
// it.
func (f *clusterFit) evaluate(counts *[maxClusterLevels]int) {
	saa := float32(0) // sum w*(1-t)^2
	sab := float32(0) // sum w*(1-t)*t
	sbb := float32(0) // sum w*t^2
	sax := [3]float32{}
	sbx := [3]float32{}

	start := 0
	for level := 0; level < f.levels; level++ {
		n := counts[level]
		if n == 0 {
			continue
		}
		w := f.wSum[start+n] - f.wSum[start]
		x := [3]float32{
			f.xSum[start+n][0] - f.xSum[start][0],
			f.xSum[start+n][1] - f.xSum[start][1],
			f.xSum[start+n][2] - f.xSum[start][2],
		}
		t := float32(level) / float32(f.levels-1)
		u := 1 - t

		saa += w * u * u
		sab += w * u * t
		sbb += w * t * t
		for c := 0; c < 3; c++ {
			sax[c] += u * x[c]
			sbx[c] += t * x[c]
		}
		start += n
	}

	a := [3]float32{}
	b := [3]float32{}
	det := (saa * sbb) - (sab * sab)
	if (det > -1e-4) && (det < 1e-4) {
		// All points landed on one interpolation position; any ramp through
		// their centroid fits equally well, so collapse to it.
		w := f.wSum[f.count]
		if w == 0 {
			return
		}
		for c := 0; c < 3; c++ {
			a[c] = clamp255(f.xSum[f.count][c] / w)
		}
		b = a
	} else {
		for c := 0; c < 3; c++ {
			a[c] = clamp255(((sbb * sax[c]) - (sab * sbx[c])) / det)
			b[c] = clamp255(((saa * sbx[c]) - (sab * sax[c])) / det)
		}
	}

	err := f.score(a, b, counts, f.bestError)
	if err < f.bestError {
		f.bestError = err
		f.bestCounts = *counts
		f.found = true
	}
}

// levelOfSorted expands the winning partition's run lengths into a level per
// sorted position.
func (f *clusterFit) levelOfSorted() (levels [16]uint8) {
	pos := 0
	for level := 0; level < f.levels; level++ {
		for rangeN := 0; rangeN < f.bestCounts[level]; rangeN++ {
			levels[pos] = uint8(level)
			pos++
		}
	}
	return levels
}

const maxFloat32 = float32(0x1p127 * (1 + (1 - 0x1p-23)))

// sortedColourSet carries a colour set's points sorted by projection onto the
// principal axis, plus the mapping back to the set's point order.
type sortedColourSet struct {
	count   int
	points  [16][3]float32
	weights [16]float32
	order   [16]int8
}

// sortColourSet projects s onto its principal axis and orders its points by
// projection. The sort is a simple insertion sort: n is at most 16 and equal
// projections must keep insertion order so that the fit stays deterministic.
func sortColourSet(s *colourSet) (sorted sortedColourSet) {
	axis := principalAxis(s)
	sorted.count = s.count

	proj := [16]float32{}
	for i := 0; i < s.count; i++ {
		proj[i] = dot3(s.points[i], axis)
	}

	for i := 0; i < s.count; i++ {
		j := i
		for (j > 0) && (proj[sorted.order[j-1]] > proj[i]) {
			sorted.order[j] = sorted.order[j-1]
			j--
		}
		sorted.order[j] = int8(i)
	}

	for i := 0; i < s.count; i++ {
		sorted.points[i] = s.points[sorted.order[i]]
		sorted.weights[i] = s.weights[sorted.order[i]]
	}
	return sorted
}

// clusterFitColour fits a colour set against a 3- or 4-level ramp. It returns
// the quantized endpoints in ramp order, the ramp level per colour-set point,
// and the weighted squared error.
func clusterFitColour(s *colourSet, levels int) (a565 uint16, b565 uint16, pointLevels [16]uint8, err float32) {
	sorted := sortColourSet(s)

	fit := clusterFit{
		count:  sorted.count,
		levels: levels,
	}
	for i := 0; i < sorted.count; i++ {
		fit.wSum[i+1] = fit.wSum[i] + sorted.weights[i]
		for c := 0; c < 3; c++ {
			fit.xSum[i+1][c] = fit.xSum[i][c] + (sorted.weights[i] * sorted.points[i][c])
		}
	}

	bestA, bestB := uint16(0), uint16(0)
	fit.score = func(a [3]float32, b [3]float32, counts *[maxClusterLevels]int, prune float32) float32 {
		qa := quantize565(a)
		qb := quantize565(b)
		e := colourPartitionError(&sorted, qa, qb, levels, counts, prune)
		if e < prune {
			bestA, bestB = qa, qb
		}
		return e
	}
	fit.run()

	// The heuristic's endpoints are not in the partition search space, so
	// keep its result as a floor: the cluster fitter never returns a worse
	// encoding than the range fitter would.
	if rA, rB, rLevels, rErr := rangeFitColour(s, levels); !fit.found || (rErr < fit.bestError) {
		return rA, rB, rLevels, rErr
	}

	sortedLevels := fit.levelOfSorted()
	for i := 0; i < sorted.count; i++ {
		pointLevels[sorted.order[i]] = sortedLevels[i]
	}
	return bestA, bestB, pointLevels, fit.bestError
}

// colourPartitionError sums the weighted squared distance between each sorted
// point and the integer ramp entry its run assigns it to, giving up early
// once the running error reaches prune.
func colourPartitionError(sorted *sortedColourSet, a565 uint16, b565 uint16, levels int, counts *[maxClusterLevels]int, prune float32) float32 {
	ramp := [maxClusterLevels][3]int32{}
	if levels == 4 {
		r := colourRamp4(expand565(a565), expand565(b565))
		copy(ramp[:], r[:])
	} else {
		r := colourRamp3(expand565(a565), expand565(b565))
		copy(ramp[:], r[:])
	}

	err := float32(0)
	pos := 0
	for level := 0; level < levels; level++ {
		for rangeN := 0; rangeN < counts[level]; rangeN++ {
			d0 := sorted.points[pos][0] - float32(ramp[level][0])
			d1 := sorted.points[pos][1] - float32(ramp[level][1])
			d2 := sorted.points[pos][2] - float32(ramp[level][2])
			err += sorted.weights[pos] * ((d0 * d0) + (d1 * d1) + (d2 * d2))
			if err >= prune {
				return err
			}
			pos++
		}
	}
	return err
}
