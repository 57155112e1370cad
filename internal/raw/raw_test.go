// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package raw

import (
	"bytes"
	"image"
	"testing"
)

func TestEncodeRGBA8(tt *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.Pix = []byte{
		0x10, 0x20, 0x30, 0xFF,
		0x40, 0x50, 0x60, 0x80,
	}

	got, err := EncodeRGBA8(m)
	if err != nil {
		tt.Fatalf("EncodeRGBA8: %v", err)
	}

	want := append([]byte(Magic),
		0x02, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x10, 0x20, 0x30, 0xFF,
		0x40, 0x50, 0x60, 0x80,
	)
	if !bytes.Equal(got, want) {
		tt.Fatalf("got % 02X, want % 02X", got, want)
	}
}

func TestEncodeRGBA8RejectsPartialAlphaRGBA(tt *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 1, 1))
	m.Pix = []byte{0x10, 0x20, 0x30, 0x80}

	if _, err := EncodeRGBA8(m); err != ErrUnsupportedImageType {
		tt.Fatalf("got %v, want ErrUnsupportedImageType", err)
	}
}
