// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package dxt

import (
	"image"
	"io"
	"runtime"
	"sync"
)

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	CompressOptions

	// Workers is the number of goroutines compressing blocks. Zero means
	// runtime.NumCPU(), one means fully sequential encoding. Blocks are
	// independent, so the encoded output does not depend on this value.
	Workers int
}

// Encode compresses src to dst in the S3TC format f.
//
// The source width and height are rounded up to a multiple of 4, replicating
// the right and bottom edges into any padding.
//
// options may be nil, which means to use the default configuration.
func Encode(dst io.Writer, src image.Image, f Format, options *EncodeOptions) error {
	if (dst == nil) || (src == nil) || (f.BytesPerBlock() == 0) {
		return ErrBadArgument
	}

	opts := EncodeOptions{}
	if options != nil {
		opts = *options
	}

	buf, err := EncodeBlocks(src, f, &opts)
	if err != nil {
		return err
	}
	_, err = dst.Write(buf)
	return err
}

// EncodeBlocks compresses src and returns the flat sequence of compressed
// blocks in row-major block order.
func EncodeBlocks(src image.Image, f Format, options *EncodeOptions) ([]byte, error) {
	if (src == nil) || (f.BytesPerBlock() == 0) {
		return nil, ErrBadArgument
	}

	opts := EncodeOptions{}
	if options != nil {
		opts = *options
	}

	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW >= 65536) || (bH >= 65536) {
		return nil, ErrBadArgument
	}

	blocksWide := (bW + 3) / 4
	blocksHigh := (bH + 3) / 4
	bpb := f.BytesPerBlock()
	out := make([]byte, blocksWide*blocksHigh*bpb)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > blocksHigh {
		workers = blocksHigh
	}

	// Each worker owns a pixel buffer and a disjoint slice of out per block
	// row, so collation needs no locks: the destination offset is a pure
	// function of the block index.
	encodeRow := func(pixels *[64]byte, extract func(int, int), blockRow int) {
		rowOffset := blockRow * blocksWide * bpb
		for blockCol := 0; blockCol < blocksWide; blockCol++ {
			extract(b.Min.X+(4*blockCol), b.Min.Y+(4*blockRow))
			o := rowOffset + (blockCol * bpb)
			CompressBlock(out[o:o+bpb], pixels, f, &opts.CompressOptions)
		}
	}

	if workers <= 1 {
		pixels := [64]byte{}
		extract := makeExtract(&pixels, src)
		for blockRow := 0; blockRow < blocksHigh; blockRow++ {
			encodeRow(&pixels, extract, blockRow)
		}
		return out, nil
	}

	rows := make(chan int)
	wg := sync.WaitGroup{}
	for rangeN := 0; rangeN < workers; rangeN++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pixels := [64]byte{}
			extract := makeExtract(&pixels, src)
			for blockRow := range rows {
				encodeRow(&pixels, extract, blockRow)
			}
		}()
	}
	for blockRow := 0; blockRow < blocksHigh; blockRow++ {
		rows <- blockRow
	}
	close(rows)
	wg.Wait()

	return out, nil
}

// Decode reads blocksWide×blocksHigh compressed blocks from r and writes
// their pixels to dst, which must be at least 4*blocksWide by 4*blocksHigh
// pixels. dst's concrete type should be one returned by Format.NewImage.
func Decode(dst image.Image, r io.Reader, f Format, blocksWide int, blocksHigh int) error {
	bpb := f.BytesPerBlock()
	if (dst == nil) || (r == nil) || (bpb == 0) || (blocksWide < 0) || (blocksHigh < 0) {
		return ErrBadArgument
	}

	buf := make([]byte, blocksWide*bpb)
	pixels := [64]byte{}

	for blockRow := 0; blockRow < blocksHigh; blockRow++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			if (err == io.EOF) || (err == io.ErrUnexpectedEOF) {
				return ErrShortBlock
			}
			return err
		}
		for blockCol := 0; blockCol < blocksWide; blockCol++ {
			if err := DecompressBlock(&pixels, buf[blockCol*bpb:], f); err != nil {
				return err
			}
			writeBlock(dst, &pixels, 4*blockCol, 4*blockRow)
		}
	}
	return nil
}

// writeBlock stores 16 row-major RGBA samples into dst at the given top-left
// corner.
func writeBlock(dst image.Image, pixels *[64]byte, x0 int, y0 int) {
	b := dst.Bounds()

	switch dst := dst.(type) {
	case *image.NRGBA:
		for y := 0; y < 4; y++ {
			o := dst.PixOffset(b.Min.X+x0, b.Min.Y+y0+y)
			copy(dst.Pix[o:o+16], pixels[16*y:(16*y)+16])
		}

	case *image.RGBA:
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				i := (16 * y) + (4 * x)
				a := uint32(pixels[i+3])
				o := dst.PixOffset(b.Min.X+x0+x, b.Min.Y+y0+y)
				dst.Pix[o+0] = uint8((uint32(pixels[i+0]) * a) / 0xFF)
				dst.Pix[o+1] = uint8((uint32(pixels[i+1]) * a) / 0xFF)
				dst.Pix[o+2] = uint8((uint32(pixels[i+2]) * a) / 0xFF)
				dst.Pix[o+3] = uint8(a)
			}
		}
	}
}
