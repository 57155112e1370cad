// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package dxt implements the S3TC (also known as DXT or BC1-BC3) block
// texture compression formats.
//
// S3TC partitions an image into 4×4 pixel blocks. Each block is encoded
// independently as 8 or 16 bytes: two RGB endpoints quantized to 5-6-5 bits
// plus a 2-bit interpolation index per pixel, optionally preceded by an alpha
// block storing either explicit 4-bit alpha or two 8-bit alpha endpoints plus
// a 3-bit index per pixel.
//
// S3TC is specified at
// https://registry.khronos.org/OpenGL/extensions/EXT/EXT_texture_compression_s3tc.txt
package dxt

import (
	"errors"
	"image"
	"image/color"
)

var (
	ErrBadArgument  = errors.New("dxt: bad argument")
	ErrBadImageType = errors.New("dxt: bad image type")
	ErrShortBlock   = errors.New("dxt: compressed block is too short")
)

// SubsettableImage is an image.Image that also has a SubImage method, like all
// of the Go standard library's image types.
type SubsettableImage interface {
	image.Image
	SubImage(r image.Rectangle) image.Image
}

// AlphaModel is a Format's transparency model.
type AlphaModel uint8

const (
	AlphaModelOpaque       = AlphaModel(0)
	AlphaModelPunchthrough = AlphaModel(1)
	AlphaModelExplicit     = AlphaModel(2)
	AlphaModelInterpolated = AlphaModel(3)
)

// Format selects one of the S3TC block layouts.
//
// The numerical values match the FourCC ordering used by DDS and VTF
// containers: DXT1 < DXT3 < DXT5. FormatDXT1A shares DXT1's physical layout
// but reserves one interpolation code for fully transparent pixels.
type Format uint8

const (
	FormatInvalid = Format(0)

	FormatDXT1  = Format(1)
	FormatDXT1A = Format(2)
	FormatDXT3  = Format(3)
	FormatDXT5  = Format(4)
)

// Quality selects the trade-off between encoding time and reconstruction
// error. The zero value is QualityNormal.
type Quality uint8

const (
	// QualityNormal fits endpoints with a cluster search over the block's
	// principal axis.
	QualityNormal = Quality(0)

	// QualityFast fits endpoints directly from the colour bounding extremes,
	// with no search.
	QualityFast = Quality(1)

	// QualityBest is QualityNormal plus, for FormatDXT1, a second cluster
	// search in the 3-colour mode, keeping whichever encoding has the lower
	// error.
	QualityBest = Quality(2)
)

// AlphaModel returns the Format's transparency model.
func (f Format) AlphaModel() AlphaModel {
	switch f {
	case FormatDXT1:
		return AlphaModelOpaque
	case FormatDXT1A:
		return AlphaModelPunchthrough
	case FormatDXT3:
		return AlphaModelExplicit
	case FormatDXT5:
		return AlphaModelInterpolated
	}

	return 0
}

// BytesPerBlock returns the Format-dependent number of bytes used to encode
// each 4×4 pixel block.
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatDXT1,
		FormatDXT1A:
		return 8

	case FormatDXT3,
		FormatDXT5:
		return 16
	}

	return 0
}

// FourCC returns the four character code identifying the Format in DDS-style
// containers, as a little-endian uint32.
func (f Format) FourCC() uint32 {
	switch f {
	case FormatDXT1,
		FormatDXT1A:
		return 0x31545844 // "DXT1"
	case FormatDXT3:
		return 0x33545844 // "DXT3"
	case FormatDXT5:
		return 0x35545844 // "DXT5"
	}

	return 0
}

// ColorModel returns the Go standard library's color model that best matches
// the Format.
func (f Format) ColorModel() color.Model {
	switch f {
	case FormatDXT1,
		FormatDXT1A:
		return color.RGBAModel

	case FormatDXT3,
		FormatDXT5:
		return color.NRGBAModel
	}

	return nil
}

// NewImage returns an image.Image, whose concrete type is one of the standard
// library's image types, that's suitable for the Format.
//
// The requested width and height will be rounded up to a multiple of 4.
//
// It returns an error if the width or height is negative or above 65536.
func (f Format) NewImage(width int, height int) (SubsettableImage, error) {
	if (width < 0) || (width >= 65536) ||
		(height < 0) || (height >= 65536) {
		return nil, ErrBadArgument
	}
	r := image.Rect(0, 0, (width+3)&^3, (height+3)&^3)

	switch f {
	case FormatDXT1,
		FormatDXT1A:
		return image.NewRGBA(r), nil

	case FormatDXT3,
		FormatDXT5:
		return image.NewNRGBA(r), nil
	}

	return nil, ErrBadArgument
}
