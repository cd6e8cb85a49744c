// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package registry implements the wire-framing and schema-registry glue
// around the codec package: a 5-byte Confluent-style
// magic-byte-plus-schema-id prefix on each payload, a registry client
// interface, and a caching decoder that ties the two to the codec builder.
package registry

import (
	"encoding/binary"
	"fmt"
)

// Magic is the single leading byte of every framed payload.
const Magic byte = 0x00

// frameHeaderSize is the magic byte plus the 4-byte big-endian schema id.
const frameHeaderSize = 5

// Frame prepends the 5-byte Confluent-style wire header (magic byte plus
// big-endian uint32 schema id) to payload.
func Frame(schemaID uint32, payload []byte) []byte {
	out := make([]byte, frameHeaderSize+len(payload))
	out[0] = Magic
	binary.BigEndian.PutUint32(out[1:5], schemaID)
	copy(out[5:], payload)
	return out
}

// Unframe splits a wire payload into its schema id and Avro-binary body,
// verifying the magic byte first.
func Unframe(wire []byte) (schemaID uint32, payload []byte, err error) {
	if len(wire) < frameHeaderSize {
		return 0, nil, fmt.Errorf("registry: wire payload too short for a frame header: %d bytes", len(wire))
	}
	if wire[0] != Magic {
		return 0, nil, fmt.Errorf("registry: unsupported wire format version byte %#x", wire[0])
	}
	schemaID = binary.BigEndian.Uint32(wire[1:5])
	return schemaID, wire[5:], nil
}
