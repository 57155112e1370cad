// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package raw implements a minimal flat-pixel image dump: a 16 byte header
// followed by width*height non-premultiplied RGBA samples, 4 bytes per pixel,
// row-major. It exists so that the command line tool and tests can compare
// decoded images byte for byte without pulling in a real container format.
package raw

import (
	"errors"
	"image"
)

var (
	ErrUnsupportedImageType = errors.New("raw: unsupported image type")
)

// Magic is the byte string prefix of every raw dump.
const Magic = "RAW8PIX\x00"

// EncodeRGBA8 encodes m as a raw dump in RGBA order, non-premultiplied
// alpha, 4 bytes per pixel.
func EncodeRGBA8(m image.Image) (ret []byte, retErr error) {
	b := m.Bounds()
	ret = append(ret, Magic...)
	ret = appendU32LE(ret, uint32(b.Dx()))
	ret = appendU32LE(ret, uint32(b.Dy()))

	switch m := m.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				at := m.NRGBAAt(x, y)
				ret = append(ret, at.R, at.G, at.B, at.A)
			}
		}
		return ret, nil

	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				at := m.RGBAAt(x, y)
				if (at.A != 0x00) && (at.A != 0xFF) {
					return nil, ErrUnsupportedImageType
				}
				ret = append(ret, at.R, at.G, at.B, at.A)
			}
		}
		return ret, nil

	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				at := m.GrayAt(x, y)
				ret = append(ret, at.Y, at.Y, at.Y, 0xFF)
			}
		}
		return ret, nil
	}

	return nil, ErrUnsupportedImageType
}

func appendU32LE(b []byte, u uint32) []byte {
	return append(b,
		uint8(u>>0),
		uint8(u>>8),
		uint8(u>>16),
		uint8(u>>24),
	)
}
