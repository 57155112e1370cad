// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// vtfpack decodes and encodes the VTF (Valve Texture Format) lossy image file
// format, and packs VTF files into zstd compressed texture archives.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/sourcetex/vtfpack/internal/raw"
	"github.com/sourcetex/vtfpack/lib/dxt"
	"github.com/sourcetex/vtfpack/lib/texarc"
	"github.com/sourcetex/vtfpack/lib/vtf"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	decodeFlag = flag.Bool("decode", false, "whether to decode the input")
	encodeFlag = flag.Bool("encode", false, "whether to encode the input")
	packFlag   = flag.Bool("pack", false, "whether to pack the inputs into an archive")
	unpackFlag = flag.Bool("unpack", false, "whether to list or extract from an archive")

	archiveFlag = flag.String("archive", "", "archive path for -pack and -unpack")
	formatFlag  = flag.String("format", "", "compression format when encoding")
	nomipsFlag  = flag.Bool("nomips", false, "whether to skip mipmap generation when encoding")
	outputFlag  = flag.String("output", "", "output format")
	qualityFlag = flag.String("quality", "", "compression quality when encoding")
)

const usageStr = `vtfpack decodes and encodes the VTF lossy image file format.

Usage: choose one of

    vtfpack -decode [path]
    vtfpack -encode [path]
    vtfpack -pack -archive=a.vta path...
    vtfpack -unpack -archive=a.vta [name]

The path to the input image file is optional. If omitted, stdin is read.

When decoding you can also pass one of these flags (before the path):

    -output=raw-rgba8
    -output=png (this is the default)

When encoding you can also pass these flags (before the path):

    -format=dxt1 (this is the default), dxt1a, dxt3 or dxt5
    -quality=fast, normal (this is the default) or best
    -nomips

The output image (in PNG or VTF format) is written to stdout.

Decode inputs VTF and outputs PNG or a raw RGBA dump.
Encode inputs BMP, GIF, JPEG, PNG, TIFF, VTF or WEBP and outputs VTF.
Pack writes the named files into a zstd compressed texture archive.
Unpack lists the archive's entries, or, given a name, writes that entry to
stdout.
`

var (
	ErrBadFormatFlag  = errors.New("main: bad -format flag")
	ErrBadOutputFlag  = errors.New("main: bad -output flag")
	ErrBadQualityFlag = errors.New("main: bad -quality flag")
)

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	if *packFlag && !*decodeFlag && !*encodeFlag && !*unpackFlag {
		return pack(flag.Args())
	}
	if *unpackFlag && !*decodeFlag && !*encodeFlag && !*packFlag {
		return unpack(flag.Args())
	}

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	if *decodeFlag && !*encodeFlag && !*packFlag && !*unpackFlag {
		return decode(inFile)
	}
	if *encodeFlag && !*decodeFlag && !*packFlag && !*unpackFlag {
		return encode(inFile)
	}
	return errors.New("must specify exactly one of -decode, -encode, -pack, -unpack or -help")
}

func decode(inFile *os.File) error {
	switch *outputFlag {
	case "", "png", "raw-rgba8":
		// No-op.
	default:
		return ErrBadOutputFlag
	}

	src, err := vtf.Decode(inFile)
	if err != nil {
		return err
	}
	if *outputFlag == "raw-rgba8" {
		dst, err := raw.EncodeRGBA8(src)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(dst)
		return err
	}
	return png.Encode(os.Stdout, src)
}

func encode(inFile *os.File) error {
	options := &vtf.EncodeOptions{
		DisableMipmaps: *nomipsFlag,
	}

	switch *formatFlag {
	case "", "dxt1":
		options.Format = dxt.FormatDXT1
	case "dxt1a":
		options.Format = dxt.FormatDXT1A
	case "dxt3":
		options.Format = dxt.FormatDXT3
	case "dxt5":
		options.Format = dxt.FormatDXT5
	default:
		return ErrBadFormatFlag
	}

	switch *qualityFlag {
	case "", "normal":
		options.Quality = dxt.QualityNormal
	case "fast":
		options.Quality = dxt.QualityFast
	case "best":
		options.Quality = dxt.QualityBest
	default:
		return ErrBadQualityFlag
	}

	src, _, err := image.Decode(inFile)
	if err != nil {
		return err
	}
	return vtf.Encode(os.Stdout, src, options)
}

func pack(paths []string) error {
	if *archiveFlag == "" {
		return errors.New("main: -pack needs -archive")
	}
	if len(paths) == 0 {
		return errors.New("main: -pack needs at least one input file")
	}

	f, err := os.Create(*archiveFlag)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := texarc.NewWriter(f)
	if err != nil {
		return err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := w.WriteEntry(path, data); err != nil {
			return err
		}
	}
	return w.Close()
}

func unpack(args []string) error {
	if *archiveFlag == "" {
		return errors.New("main: -unpack needs -archive")
	}
	if len(args) > 1 {
		return errors.New("too many entry names; the maximum is one")
	}

	f, err := os.Open(*archiveFlag)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := texarc.NewReader(f)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, e := range r.Entries() {
			fmt.Printf("%12d %12d %s\n", e.Length, e.CompressedLength, e.Name)
		}
		return nil
	}

	data, err := r.Extract(args[0])
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
