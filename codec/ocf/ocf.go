// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package ocf exposes the block-compression hook a caller layers on top of
// the binary array/map block encoding (codec.WriteBlockCount et al.) when it
// wants container-file-style compressed blocks. It is deliberately not an
// Avro Object Container File reader or writer: no file header, no sync
// markers, no block-count framing beyond what codec/binary.go already
// produces. Callers that need an actual OCF file format must wrap these
// primitives themselves.
package ocf

import "github.com/golang/snappy"

// BlockCompressor compresses and decompresses one already-binary-encoded
// block of records, the unit codec.WriteBlockCount/WriteBlockEnd frame.
type BlockCompressor interface {
	// Name is the container-file codec name this compressor implements
	// (e.g. "snappy", "null"), for callers that record it in a header.
	Name() string
	Compress(block []byte) ([]byte, error)
	Decompress(block []byte) ([]byte, error)
}

// NullCompressor is the identity BlockCompressor, matching the OCF "null"
// codec for callers that want the interface uniformly even when no
// compression is applied.
type NullCompressor struct{}

func (NullCompressor) Name() string                             { return "null" }
func (NullCompressor) Compress(block []byte) ([]byte, error)    { return block, nil }
func (NullCompressor) Decompress(block []byte) ([]byte, error)  { return block, nil }

// SnappyBlockCompressor implements BlockCompressor over
// github.com/golang/snappy. Per the Avro Object Container File spec's
// "snappy" codec, each compressed block is followed by its own CRC-32
// checksum;
// this type handles that trailer so callers see a plain decompressed
// block on the other side.
type SnappyBlockCompressor struct{}

func (SnappyBlockCompressor) Name() string { return "snappy" }

func (SnappyBlockCompressor) Compress(block []byte) ([]byte, error) {
	compressed := snappy.Encode(nil, block)
	crc := crc32Checksum(block)
	out := make([]byte, len(compressed)+4)
	copy(out, compressed)
	putUint32BE(out[len(compressed):], crc)
	return out, nil
}

func (SnappyBlockCompressor) Decompress(block []byte) ([]byte, error) {
	if len(block) < 4 {
		return nil, errTooShort
	}
	compressed := block[:len(block)-4]
	wantCRC := getUint32BE(block[len(block)-4:])
	decoded, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, err
	}
	if crc32Checksum(decoded) != wantCRC {
		return nil, errChecksum
	}
	return decoded, nil
}
