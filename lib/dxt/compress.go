// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

// CompressOptions are optional arguments to CompressBlock, Encode and
// EncodeBlocks. The zero value is valid and means to use the default
// configuration.
type CompressOptions struct {
	Quality Quality

	// WeightByAlpha scales each pixel's contribution to the colour fit by
	// its alpha, so that barely-visible pixels distort the visible ones
	// less. Off by default.
	WeightByAlpha bool
}

// CompressBlock compresses one 4×4 pixel block.
//
// src holds 16 RGBA samples in row-major order. The compressed block is
// written to dst, which must have room for f.BytesPerBlock() bytes.
//
// options may be nil, which means to use the default configuration.
func CompressBlock(dst []byte, src *[64]byte, f Format, options *CompressOptions) error {
	bpb := f.BytesPerBlock()
	if (bpb == 0) || (len(dst) < bpb) || (src == nil) {
		return ErrBadArgument
	}

	opts := CompressOptions{}
	if options != nil {
		opts = *options
	}

	switch f {
	case FormatDXT1, FormatDXT1A:
		compressColour(dst[:8], src, f, &opts)
	case FormatDXT3:
		packExplicitAlpha(dst[:8], src)
		compressColour(dst[8:16], src, f, &opts)
	case FormatDXT5:
		compressAlpha(dst[:8], src, &opts)
		compressColour(dst[8:16], src, f, &opts)
	}
	return nil
}

// DecompressBlock decompresses one block into 16 row-major RGBA samples.
//
// It fails only if src is shorter than the fixed size the format requires,
// or if the format itself is invalid.
func DecompressBlock(dst *[64]byte, src []byte, f Format) error {
	bpb := f.BytesPerBlock()
	if (bpb == 0) || (dst == nil) {
		return ErrBadArgument
	}
	if len(src) < bpb {
		return ErrShortBlock
	}

	switch f {
	case FormatDXT1, FormatDXT1A:
		for i := 0; i < 16; i++ {
			dst[(4*i)+3] = 0xFF
		}
		decodeColourBlock(dst, src[:8], false, f == FormatDXT1A)
	case FormatDXT3:
		unpackExplicitAlpha(dst, src[:8])
		decodeColourBlock(dst, src[8:16], true, false)
	case FormatDXT5:
		unpackInterpolatedAlpha(dst, src[:8])
		decodeColourBlock(dst, src[8:16], true, false)
	}
	return nil
}

// compressColour fits and packs the 8-byte colour half of a block.
func compressColour(dst []byte, src *[64]byte, f Format, opts *CompressOptions) {
	punchthrough := f == FormatDXT1A
	set := colourSet{}
	set.setColours(src, punchthrough, opts.WeightByAlpha)

	if set.count == 0 {
		// Every pixel was excluded as transparent. Encode zero endpoints
		// with every pixel on the transparent code.
		levels := [16]int8{}
		for i := 0; i < 16; i++ {
			levels[i] = -1
		}
		packColourBlock3(dst, 0, 0, &levels)
		return
	}

	// DXT1A blocks must stay in the 3-colour mode so that the transparent
	// code keeps its meaning; plain DXT1 normally uses the 4-colour mode,
	// and at QualityBest additionally tries the 3-colour mode.
	if punchthrough {
		a, b, pointLevels := fitColour(&set, 3, opts.Quality)
		pack3(dst, &set, a, b, &pointLevels)
		return
	}

	a4, b4, pointLevels4, err4 := fitColourErr(&set, 4, opts.Quality)
	if (f == FormatDXT1) && (opts.Quality == QualityBest) {
		if a3, b3, pointLevels3, err3 := fitColourErr(&set, 3, opts.Quality); err3 < err4 {
			pack3(dst, &set, a3, b3, &pointLevels3)
			return
		}
	}

	codes := [16]uint8{}
	for i := 0; i < 16; i++ {
		codes[i] = pointLevels4[set.remap[i]]
	}
	packColourBlock4(dst, a4, b4, &codes)
}

func fitColour(set *colourSet, levels int, q Quality) (uint16, uint16, [16]uint8) {
	a, b, pointLevels, _ := fitColourErr(set, levels, q)
	return a, b, pointLevels
}

// fitColourErr dispatches to the single-colour, range or cluster fitter.
func fitColourErr(set *colourSet, levels int, q Quality) (a565 uint16, b565 uint16, pointLevels [16]uint8, err float32) {
	if set.count == 1 {
		a, b, level, e := singleColourFit(set.points[0], levels == 4)
		pointLevels[0] = level
		return a, b, pointLevels, float32(e) * set.weights[0]
	}
	if q == QualityFast {
		return rangeFitColour(set, levels)
	}
	return clusterFitColour(set, levels)
}

// pack3 maps colour-set levels through the pixel remap, marking transparent
// pixels, and packs a 3-colour mode block.
func pack3(dst []byte, set *colourSet, a565 uint16, b565 uint16, pointLevels *[16]uint8) {
	levels := [16]int8{}
	for i := 0; i < 16; i++ {
		if set.remap[i] < 0 {
			levels[i] = -1
		} else {
			levels[i] = int8(pointLevels[set.remap[i]])
		}
	}
	packColourBlock3(dst, a565, b565, &levels)
}

// compressAlpha fits and packs the 8-byte interpolated alpha half of a DXT5
// block.
func compressAlpha(dst []byte, src *[64]byte, opts *CompressOptions) {
	set := alphaSet{}
	set.setAlphas(src)

	var hi, lo uint8
	var pointLevels [16]uint8
	if (set.count == 1) || (opts.Quality == QualityFast) {
		hi, lo, pointLevels, _ = fitAlphaRange(&set)
	} else {
		hi, lo, pointLevels = fitAlphaCluster(&set)
	}

	levels := [16]uint8{}
	for i := 0; i < 16; i++ {
		levels[i] = pointLevels[set.remap[i]]
	}
	packInterpolatedAlpha(dst, hi, lo, &levels)
}
