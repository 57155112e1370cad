// Copyright 2025 The Vtfpack Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package texarc implements a zstd compressed texture archive.
//
// An archive is a fixed header, a sequence of independently compressed
// entries, and a trailing index mapping entry names to byte ranges. Entries
// compress independently so a single texture can be extracted without
// decompressing its neighbours.
package texarc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
)

// Magic is the byte string prefix of every texture archive.
const Magic = "VTEXARC\x00"

const (
	formatVersion = 1

	// headerSize is magic, a u32 version, a u32 entry count and a u64 index
	// offset.
	headerSize = 8 + 4 + 4 + 8

	maxNameLength = 0xFFFF
)

var (
	ErrNotAnArchive   = errors.New("texarc: not a texture archive")
	ErrBadVersion     = errors.New("texarc: unsupported archive version")
	ErrDuplicateEntry = errors.New("texarc: duplicate entry name")
	ErrEntryNotFound  = errors.New("texarc: entry not found")
	ErrWriterClosed   = errors.New("texarc: writer is closed")
)

// Entry locates one compressed texture inside an archive.
type Entry struct {
	Name             string
	Offset           uint64
	CompressedLength uint64
	Length           uint64
}

// Writer builds an archive on an io.WriteSeeker. The header is written as a
// placeholder up front and rewritten with the final entry count and index
// offset by Close.
type Writer struct {
	dst     io.WriteSeeker
	entries []Entry
	names   map[string]bool
	offset  uint64
	level   int
	closed  bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the zstd compression level for all subsequent
// entries. The default is zstd.DefaultCompression.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter creates an archive writer on dst, which must be positioned at the
// start of the archive.
func NewWriter(dst io.WriteSeeker, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:    dst,
		names:  map[string]bool{},
		offset: headerSize,
		level:  zstd.DefaultCompression,
	}
	for _, opt := range opts {
		opt(w)
	}

	buf := [headerSize]byte{}
	marshalHeader(&buf, 0, 0)
	if _, err := dst.Write(buf[:]); err != nil {
		return nil, fmt.Errorf("texarc: write header: %w", err)
	}
	return w, nil
}

// WriteEntry compresses data and appends it to the archive under name.
func (w *Writer) WriteEntry(name string, data []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	if (name == "") || (len(name) > maxNameLength) {
		return fmt.Errorf("texarc: bad entry name %q", name)
	}
	if w.names[name] {
		return ErrDuplicateEntry
	}

	compressed, err := zstd.CompressLevel(nil, data, w.level)
	if err != nil {
		return fmt.Errorf("texarc: compress %q: %w", name, err)
	}
	if _, err := w.dst.Write(compressed); err != nil {
		return fmt.Errorf("texarc: write %q: %w", name, err)
	}

	w.names[name] = true
	w.entries = append(w.entries, Entry{
		Name:             name,
		Offset:           w.offset,
		CompressedLength: uint64(len(compressed)),
		Length:           uint64(len(data)),
	})
	w.offset += uint64(len(compressed))
	return nil
}

// Close writes the index and rewrites the header. It does not close the
// underlying io.WriteSeeker.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	indexOffset := w.offset
	index := []byte(nil)
	for _, e := range w.entries {
		index = binary.LittleEndian.AppendUint16(index, uint16(len(e.Name)))
		index = append(index, e.Name...)
		index = binary.LittleEndian.AppendUint64(index, e.Offset)
		index = binary.LittleEndian.AppendUint64(index, e.CompressedLength)
		index = binary.LittleEndian.AppendUint64(index, e.Length)
	}
	if _, err := w.dst.Write(index); err != nil {
		return fmt.Errorf("texarc: write index: %w", err)
	}

	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("texarc: seek to header: %w", err)
	}
	buf := [headerSize]byte{}
	marshalHeader(&buf, uint32(len(w.entries)), indexOffset)
	if _, err := w.dst.Write(buf[:]); err != nil {
		return fmt.Errorf("texarc: rewrite header: %w", err)
	}
	if _, err := w.dst.Seek(int64(indexOffset)+int64(len(index)), io.SeekStart); err != nil {
		return fmt.Errorf("texarc: seek to end: %w", err)
	}
	return nil
}

func marshalHeader(buf *[headerSize]byte, count uint32, indexOffset uint64) {
	copy(buf[0:8], Magic)
	binary.LittleEndian.PutUint32(buf[8:], formatVersion)
	binary.LittleEndian.PutUint32(buf[12:], count)
	binary.LittleEndian.PutUint64(buf[16:], indexOffset)
}

// Reader reads entries out of an archive on an io.ReadSeeker.
type Reader struct {
	src     io.ReadSeeker
	entries []Entry
	byName  map[string]int
}

// NewReader opens an archive on src and reads its index.
func NewReader(src io.ReadSeeker) (*Reader, error) {
	buf := [headerSize]byte{}
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return nil, fmt.Errorf("texarc: read header: %w", err)
	}
	if string(buf[0:8]) != Magic {
		return nil, ErrNotAnArchive
	}
	if binary.LittleEndian.Uint32(buf[8:]) != formatVersion {
		return nil, ErrBadVersion
	}
	count := binary.LittleEndian.Uint32(buf[12:])
	indexOffset := binary.LittleEndian.Uint64(buf[16:])

	if _, err := src.Seek(int64(indexOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("texarc: seek to index: %w", err)
	}

	r := &Reader{
		src:     src,
		entries: make([]Entry, 0, count),
		byName:  make(map[string]int, count),
	}
	br := indexReader{r: src}
	for i := uint32(0); i < count; i++ {
		e, err := br.readEntry()
		if err != nil {
			return nil, fmt.Errorf("texarc: read index entry %d: %w", i, err)
		}
		r.byName[e.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Entries returns the archive's index in file order. The returned slice is
// shared; callers must not modify it.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// Extract decompresses the named entry.
func (r *Reader) Extract(name string) ([]byte, error) {
	i, ok := r.byName[name]
	if !ok {
		return nil, ErrEntryNotFound
	}
	e := r.entries[i]

	if _, err := r.src.Seek(int64(e.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("texarc: seek to %q: %w", name, err)
	}
	compressed := make([]byte, e.CompressedLength)
	if _, err := io.ReadFull(r.src, compressed); err != nil {
		return nil, fmt.Errorf("texarc: read %q: %w", name, err)
	}

	data, err := zstd.Decompress(make([]byte, 0, e.Length), compressed)
	if err != nil {
		return nil, fmt.Errorf("texarc: decompress %q: %w", name, err)
	}
	if uint64(len(data)) != e.Length {
		return nil, fmt.Errorf("texarc: entry %q: got %d bytes, index says %d", name, len(data), e.Length)
	}
	return data, nil
}

// indexReader reads index records field by field.
type indexReader struct {
	r io.Reader
}

func (b *indexReader) readEntry() (Entry, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(b.r, lenBuf[:]); err != nil {
		return Entry{}, err
	}
	nameLen := binary.LittleEndian.Uint16(lenBuf[:])

	buf := make([]byte, int(nameLen)+24)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return Entry{}, err
	}
	return Entry{
		Name:             string(buf[:nameLen]),
		Offset:           binary.LittleEndian.Uint64(buf[nameLen:]),
		CompressedLength: binary.LittleEndian.Uint64(buf[nameLen+8:]),
		Length:           binary.LittleEndian.Uint64(buf[nameLen+16:]),
	}, nil
}
