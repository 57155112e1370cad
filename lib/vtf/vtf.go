// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package vtf implements the VTF (Valve Texture Format) container for S3TC
// compressed textures, version 7.2.
//
// A VTF file is a small packed header, a low resolution DXT1 thumbnail, and
// then the image data for each mipmap level ordered from the smallest level
// to the largest.
package vtf

import (
	"encoding/binary"
	"errors"
	"image"
	"io"
	"math"

	"github.com/anthonynsimon/bild/transform"

	"github.com/sourcetex/vtfpack/lib/dxt"
)

// Magic is the byte string prefix of every VTF image file.
const Magic = "VTF\x00"

func init() {
	image.RegisterFormat("vtf", Magic, Decode, DecodeConfig)
}

var (
	ErrBadArgument       = errors.New("vtf: bad argument")
	ErrNotAVTFFile       = errors.New("vtf: not a VTF file")
	ErrImageIsTooLarge   = errors.New("vtf: image is too large")
	ErrUnsupportedFormat = errors.New("vtf: unsupported image format")
	ErrTruncated         = errors.New("vtf: truncated image data")
)

// headerSize is the on-disk size of a version 7.2 header, including the
// trailing padding to a 16 byte boundary.
const headerSize = 80

// VTF image format codes for the formats this package reads and writes.
const (
	formatCodeDXT1 = 13
	formatCodeDXT3 = 14
	formatCodeDXT5 = 15
)

// Header flag bits.
const (
	flagNoMip         = 0x00000100
	flagNoLOD         = 0x00000200
	flagOneBitAlpha   = 0x00001000
	flagEightBitAlpha = 0x00002000
)

var vtfToDXTFormats = map[uint32]dxt.Format{
	formatCodeDXT1: dxt.FormatDXT1,
	formatCodeDXT3: dxt.FormatDXT3,
	formatCodeDXT5: dxt.FormatDXT5,
}

func dxtToVTFFormat(f dxt.Format) uint32 {
	switch f {
	case dxt.FormatDXT1, dxt.FormatDXT1A:
		return formatCodeDXT1
	case dxt.FormatDXT3:
		return formatCodeDXT3
	case dxt.FormatDXT5:
		return formatCodeDXT5
	}
	return 0
}

// header is the parsed form of a version 7.x VTF header.
type header struct {
	versionMajor uint32
	versionMinor uint32
	headerSize   uint32
	width        uint16
	height       uint16
	flags        uint32
	frames       uint16
	firstFrame   uint16
	reflectivity [3]float32
	bumpmapScale float32
	format       uint32
	mipmapCount  uint8
	lowResFormat uint32
	lowResWidth  uint8
	lowResHeight uint8
	depth        uint16
}

func parseHeader(buf *[headerSize]byte) (h header, err error) {
	if string(buf[0:4]) != Magic {
		return h, ErrNotAVTFFile
	}

	h.versionMajor = binary.LittleEndian.Uint32(buf[4:])
	h.versionMinor = binary.LittleEndian.Uint32(buf[8:])
	h.headerSize = binary.LittleEndian.Uint32(buf[12:])
	h.width = binary.LittleEndian.Uint16(buf[16:])
	h.height = binary.LittleEndian.Uint16(buf[18:])
	h.flags = binary.LittleEndian.Uint32(buf[20:])
	h.frames = binary.LittleEndian.Uint16(buf[24:])
	h.firstFrame = binary.LittleEndian.Uint16(buf[26:])
	h.reflectivity[0] = math.Float32frombits(binary.LittleEndian.Uint32(buf[32:]))
	h.reflectivity[1] = math.Float32frombits(binary.LittleEndian.Uint32(buf[36:]))
	h.reflectivity[2] = math.Float32frombits(binary.LittleEndian.Uint32(buf[40:]))
	h.bumpmapScale = math.Float32frombits(binary.LittleEndian.Uint32(buf[48:]))
	h.format = binary.LittleEndian.Uint32(buf[52:])
	h.mipmapCount = buf[56]
	h.lowResFormat = binary.LittleEndian.Uint32(buf[57:])
	h.lowResWidth = buf[61]
	h.lowResHeight = buf[62]
	h.depth = 1
	if (h.versionMajor > 7) || ((h.versionMajor == 7) && (h.versionMinor >= 2)) {
		h.depth = binary.LittleEndian.Uint16(buf[63:])
	}

	if (h.versionMajor != 7) || (h.headerSize < headerSize) {
		return h, ErrNotAVTFFile
	}
	return h, nil
}

func (h *header) marshal(buf *[headerSize]byte) {
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.versionMajor)
	binary.LittleEndian.PutUint32(buf[8:], h.versionMinor)
	binary.LittleEndian.PutUint32(buf[12:], h.headerSize)
	binary.LittleEndian.PutUint16(buf[16:], h.width)
	binary.LittleEndian.PutUint16(buf[18:], h.height)
	binary.LittleEndian.PutUint32(buf[20:], h.flags)
	binary.LittleEndian.PutUint16(buf[24:], h.frames)
	binary.LittleEndian.PutUint16(buf[26:], h.firstFrame)
	binary.LittleEndian.PutUint32(buf[32:], math.Float32bits(h.reflectivity[0]))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(h.reflectivity[1]))
	binary.LittleEndian.PutUint32(buf[40:], math.Float32bits(h.reflectivity[2]))
	binary.LittleEndian.PutUint32(buf[48:], math.Float32bits(h.bumpmapScale))
	binary.LittleEndian.PutUint32(buf[52:], h.format)
	buf[56] = h.mipmapCount
	binary.LittleEndian.PutUint32(buf[57:], h.lowResFormat)
	buf[61] = h.lowResWidth
	buf[62] = h.lowResHeight
	binary.LittleEndian.PutUint16(buf[63:], h.depth)
}

// mipSize returns the compressed byte size of one mip level.
func mipSize(f dxt.Format, width int, height int) int {
	return ((width + 3) / 4) * ((height + 3) / 4) * f.BytesPerBlock()
}

// mipDimensions returns the pixel size of mip level i.
func mipDimensions(width int, height int, i int) (int, int) {
	return max(1, width>>i), max(1, height>>i)
}

// mipCount returns the length of the full mip chain down to 1x1.
func mipCount(width int, height int) int {
	n := 1
	for (width > 1) || (height > 1) {
		width = max(1, width/2)
		height = max(1, height/2)
		n++
	}
	return n
}

// DecodeConfig reads a VTF image configuration from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	buf := [headerSize]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return image.Config{}, err
	}
	h, err := parseHeader(&buf)
	if err != nil {
		return image.Config{}, err
	}

	f, ok := vtfToDXTFormats[h.format]
	if !ok {
		return image.Config{}, ErrUnsupportedFormat
	}
	return image.Config{
		ColorModel: f.ColorModel(),
		Width:      int(h.width),
		Height:     int(h.height),
	}, nil
}

// Decode reads a VTF image from r, returning its largest mip level.
func Decode(r io.Reader) (image.Image, error) {
	buf := [headerSize]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	h, err := parseHeader(&buf)
	if err != nil {
		return nil, err
	}

	f, ok := vtfToDXTFormats[h.format]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	if (h.frames > 1) || (h.depth > 1) {
		return nil, ErrUnsupportedFormat
	}

	// The header may be larger than the 7.2 layout (later minor versions
	// append resource dictionaries); skip whatever is left of it.
	if err := skip(r, int64(h.headerSize)-headerSize); err != nil {
		return nil, err
	}

	// Low resolution thumbnail.
	if (h.lowResWidth > 0) && (h.lowResHeight > 0) {
		thumb, ok := vtfToDXTFormats[h.lowResFormat]
		if !ok {
			return nil, ErrUnsupportedFormat
		}
		if err := skip(r, int64(mipSize(thumb, int(h.lowResWidth), int(h.lowResHeight)))); err != nil {
			return nil, err
		}
	}

	// Mip levels are stored smallest first; everything before the last one
	// is skipped.
	w, hgt := int(h.width), int(h.height)
	for i := int(h.mipmapCount) - 1; i >= 1; i-- {
		mw, mh := mipDimensions(w, hgt, i)
		if err := skip(r, int64(mipSize(f, mw, mh))); err != nil {
			return nil, err
		}
	}

	m, err := f.NewImage(w, hgt)
	if err != nil {
		return nil, err
	}
	b := m.Bounds()
	if err := dxt.Decode(m, r, f, b.Dx()/4, b.Dy()/4); err != nil {
		if err == dxt.ErrShortBlock {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return m.SubImage(image.Rect(0, 0, w, hgt)), nil
}

func skip(r io.Reader, n int64) error {
	if n < 0 {
		return ErrNotAVTFFile
	} else if n == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		if err == io.EOF {
			return ErrTruncated
		}
		return err
	}
	return nil
}

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	// If zero, the default is to use dxt.FormatDXT1.
	Format dxt.Format

	Quality dxt.Quality

	// DisableMipmaps writes only the top level image. By default the full
	// mip chain down to 1x1 is generated and written.
	DisableMipmaps bool
}

// Encode writes src to w in the VTF format.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW >= 65536) || (bH >= 65536) {
		return ErrImageIsTooLarge
	}
	if (bW == 0) || (bH == 0) {
		return ErrBadArgument
	}

	f := dxt.FormatDXT1
	quality := dxt.Quality(0)
	withMips := true
	if options != nil {
		if options.Format != 0 {
			f = options.Format
		}
		quality = options.Quality
		withMips = !options.DisableMipmaps
	}
	if dxtToVTFFormat(f) == 0 {
		return ErrBadArgument
	}

	mips := 1
	if withMips {
		mips = mipCount(bW, bH)
	}

	lowResW, lowResH := thumbnailDimensions(bW, bH)

	flags := uint32(0)
	switch f.AlphaModel() {
	case dxt.AlphaModelPunchthrough:
		flags |= flagOneBitAlpha
	case dxt.AlphaModelExplicit, dxt.AlphaModelInterpolated:
		flags |= flagEightBitAlpha
	}
	if !withMips {
		flags |= flagNoMip | flagNoLOD
	}

	h := header{
		versionMajor: 7,
		versionMinor: 2,
		headerSize:   headerSize,
		width:        uint16(bW),
		height:       uint16(bH),
		flags:        flags,
		frames:       1,
		reflectivity: averageColour(src),
		bumpmapScale: 1,
		format:       dxtToVTFFormat(f),
		mipmapCount:  uint8(mips),
		lowResFormat: formatCodeDXT1,
		lowResWidth:  uint8(lowResW),
		lowResHeight: uint8(lowResH),
		depth:        1,
	}

	buf := [headerSize]byte{}
	h.marshal(&buf)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}

	encOpts := &dxt.EncodeOptions{}
	encOpts.Quality = quality

	// Thumbnail, always DXT1.
	thumb := transform.Resize(src, lowResW, lowResH, transform.Linear)
	if err := dxt.Encode(w, thumb, dxt.FormatDXT1, encOpts); err != nil {
		return err
	}

	// Mip levels, smallest first.
	for i := mips - 1; i >= 0; i-- {
		mw, mh := mipDimensions(bW, bH, i)
		level := src
		if i > 0 {
			level = transform.Resize(src, mw, mh, transform.Linear)
		}
		if err := dxt.Encode(w, level, f, encOpts); err != nil {
			return err
		}
	}
	return nil
}

// thumbnailDimensions halves the image size until it fits the low resolution
// slot's 16 pixel limit.
func thumbnailDimensions(w int, h int) (int, int) {
	for (w > 16) || (h > 16) {
		w = max(1, w/2)
		h = max(1, h/2)
	}
	return w, h
}

// averageColour returns the image's mean RGB in [0, 1], stored in the header
// as the material system's reflectivity hint.
func averageColour(src image.Image) (ret [3]float32) {
	b := src.Bounds()
	if b.Empty() {
		return ret
	}

	sum := [3]uint64{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := src.At(x, y).RGBA()
			sum[0] += uint64(r >> 8)
			sum[1] += uint64(g >> 8)
			sum[2] += uint64(bl >> 8)
		}
	}
	n := uint64(b.Dx()) * uint64(b.Dy())
	for c := 0; c < 3; c++ {
		ret[c] = float32(sum[c]/n) / 255
	}
	return ret
}
