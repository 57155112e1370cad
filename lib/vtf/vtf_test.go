// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package vtf

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"

	"github.com/sourcetex/vtfpack/lib/dxt"
)

func gradientImage(w int, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := m.PixOffset(x, y)
			m.Pix[o+0] = uint8((x * 255) / max(1, w-1))
			m.Pix[o+1] = uint8((y * 255) / max(1, h-1))
			m.Pix[o+2] = 0x40
			m.Pix[o+3] = 0xFF
		}
	}
	return m
}

func TestEncodeHeaderLayout(tt *testing.T) {
	m := gradientImage(64, 32)

	buf := &bytes.Buffer{}
	if err := Encode(buf, m, nil); err != nil {
		tt.Fatalf("Encode: %v", err)
	}
	enc := buf.Bytes()
	if len(enc) < headerSize {
		tt.Fatalf("encoded length %d is shorter than the header", len(enc))
	}

	if got := string(enc[0:4]); got != Magic {
		tt.Fatalf("magic: got %q, want %q", got, Magic)
	}
	if got := binary.LittleEndian.Uint32(enc[4:]); got != 7 {
		tt.Fatalf("version major: got %d, want 7", got)
	}
	if got := binary.LittleEndian.Uint32(enc[8:]); got != 2 {
		tt.Fatalf("version minor: got %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(enc[12:]); got != headerSize {
		tt.Fatalf("header size: got %d, want %d", got, headerSize)
	}
	if got := binary.LittleEndian.Uint16(enc[16:]); got != 64 {
		tt.Fatalf("width: got %d, want 64", got)
	}
	if got := binary.LittleEndian.Uint16(enc[18:]); got != 32 {
		tt.Fatalf("height: got %d, want 32", got)
	}
	if got := binary.LittleEndian.Uint32(enc[52:]); got != formatCodeDXT1 {
		tt.Fatalf("format: got %d, want %d", got, formatCodeDXT1)
	}
	// 64x32 has mips 64x32, 32x16, 16x8, 8x4, 4x2, 2x1, 1x1.
	if got := enc[56]; got != 7 {
		tt.Fatalf("mip count: got %d, want 7", got)
	}
	if got, want := enc[61], uint8(16); got != want {
		tt.Fatalf("low-res width: got %d, want %d", got, want)
	}
	if got, want := enc[62], uint8(8); got != want {
		tt.Fatalf("low-res height: got %d, want %d", got, want)
	}
}

func TestEncodedSizeIsExact(tt *testing.T) {
	m := gradientImage(16, 16)

	buf := &bytes.Buffer{}
	if err := Encode(buf, m, &EncodeOptions{Format: dxt.FormatDXT5}); err != nil {
		tt.Fatalf("Encode: %v", err)
	}

	// Header, a 16x16 DXT1 thumbnail, then DXT5 mips 1x1, 2x2, 4x4, 8x8 and
	// 16x16. Sub-4 mips still occupy a whole block.
	want := headerSize + (16 * 8) + ((1 + 1 + 1 + 4 + 16) * 16)
	if got := buf.Len(); got != want {
		tt.Fatalf("encoded size: got %d, want %d", got, want)
	}
}

func TestRoundTrip(tt *testing.T) {
	m := gradientImage(32, 16)

	for _, f := range []dxt.Format{dxt.FormatDXT1, dxt.FormatDXT3, dxt.FormatDXT5} {
		buf := &bytes.Buffer{}
		if err := Encode(buf, m, &EncodeOptions{Format: f}); err != nil {
			tt.Fatalf("f=%d: Encode: %v", f, err)
		}

		decoded, err := Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			tt.Fatalf("f=%d: Decode: %v", f, err)
		}

		b := decoded.Bounds()
		if (b.Dx() != 32) || (b.Dy() != 16) {
			tt.Fatalf("f=%d: bounds: got %v, want 32x16", f, b)
		}

		for y := 0; y < 16; y += 5 {
			for x := 0; x < 32; x += 7 {
				wr, wg, wb, _ := m.At(x, y).RGBA()
				gr, gg, gb, _ := decoded.At(x, y).RGBA()
				for _, d := range []int32{
					int32(wr>>8) - int32(gr>>8),
					int32(wg>>8) - int32(gg>>8),
					int32(wb>>8) - int32(gb>>8),
				} {
					if d < 0 {
						d = -d
					}
					if d > 40 {
						tt.Fatalf("f=%d: pixel (%d,%d) differs by %d", f, x, y, d)
					}
				}
			}
		}
	}
}

func TestDecodeConfig(tt *testing.T) {
	m := gradientImage(48, 24)

	buf := &bytes.Buffer{}
	if err := Encode(buf, m, &EncodeOptions{Format: dxt.FormatDXT5}); err != nil {
		tt.Fatalf("Encode: %v", err)
	}

	cfg, err := DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		tt.Fatalf("DecodeConfig: %v", err)
	}
	if (cfg.Width != 48) || (cfg.Height != 24) {
		tt.Fatalf("config: got %dx%d, want 48x24", cfg.Width, cfg.Height)
	}
}

// TestRegisteredFormat checks that image.Decode dispatches on the magic
// string.
func TestRegisteredFormat(tt *testing.T) {
	m := gradientImage(8, 8)

	buf := &bytes.Buffer{}
	if err := Encode(buf, m, nil); err != nil {
		tt.Fatalf("Encode: %v", err)
	}

	decoded, name, err := image.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		tt.Fatalf("image.Decode: %v", err)
	}
	if name != "vtf" {
		tt.Fatalf("format name: got %q, want %q", name, "vtf")
	}
	b := decoded.Bounds()
	if (b.Dx() != 8) || (b.Dy() != 8) {
		tt.Fatalf("bounds: got %v, want 8x8", b)
	}
}

func TestDecodeNotAVTFFile(tt *testing.T) {
	junk := make([]byte, 256)
	copy(junk, "JUNKJUNK")
	if _, err := Decode(bytes.NewReader(junk)); err != ErrNotAVTFFile {
		tt.Fatalf("Decode: got %v, want ErrNotAVTFFile", err)
	}
}

func TestDecodeTruncated(tt *testing.T) {
	m := gradientImage(32, 32)

	buf := &bytes.Buffer{}
	if err := Encode(buf, m, nil); err != nil {
		tt.Fatalf("Encode: %v", err)
	}

	enc := buf.Bytes()
	if _, err := Decode(bytes.NewReader(enc[:len(enc)-8])); err != ErrTruncated {
		tt.Fatalf("Decode: got %v, want ErrTruncated", err)
	}
}

func TestDisableMipmaps(tt *testing.T) {
	m := gradientImage(32, 32)

	buf := &bytes.Buffer{}
	if err := Encode(buf, m, &EncodeOptions{DisableMipmaps: true}); err != nil {
		tt.Fatalf("Encode: %v", err)
	}

	enc := buf.Bytes()
	if got := enc[56]; got != 1 {
		tt.Fatalf("mip count: got %d, want 1", got)
	}
	flags := binary.LittleEndian.Uint32(enc[20:])
	if flags&flagNoMip == 0 {
		tt.Fatalf("flags %08X: NOMIP not set", flags)
	}

	if _, err := Decode(bytes.NewReader(enc)); err != nil {
		tt.Fatalf("Decode: %v", err)
	}
}

func TestReflectivityIsAverageColour(tt *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i+0] = 0xFF
		m.Pix[i+1] = 0x00
		m.Pix[i+2] = 0x80
		m.Pix[i+3] = 0xFF
	}

	got := averageColour(m)
	want := [3]float32{1, 0, float32(0x80) / 255}
	if got != want {
		tt.Fatalf("reflectivity: got %v, want %v", got, want)
	}
}
