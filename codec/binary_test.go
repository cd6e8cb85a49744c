// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package codec_test

import (
	"testing"

	"github.com/google/uuid"

	. "github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/internal/testhelpers"
)

func testBinaryRoundTrip[T any](t *testing.T, schemaJSON string, value T) {
	t.Helper()
	b := NewBuilder()
	s, err := b.Compile(schemaJSON)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[T](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[T](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, value)
	testhelpers.RequireNoError(t, err)

	got, rest, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if len(rest) != 0 {
		t.Errorf("schema %s: %d unread trailing bytes", schemaJSON, len(rest))
	}
	testhelpers.RequireDeepEqual(t, got, value)
}

func TestBinaryRoundTripPrimitives(t *testing.T) {
	testBinaryRoundTrip[bool](t, `"boolean"`, true)
	testBinaryRoundTrip[bool](t, `"boolean"`, false)
	testBinaryRoundTrip[int32](t, `"int"`, int32(-12345))
	testBinaryRoundTrip[int64](t, `"long"`, int64(9223372036854775807))
	testBinaryRoundTrip[float32](t, `"float"`, float32(3.25))
	testBinaryRoundTrip[float64](t, `"double"`, float64(-2.5e10))
	testBinaryRoundTrip[string](t, `"string"`, "hello, avro")
	testBinaryRoundTrip[[]byte](t, `"bytes"`, []byte{0x00, 0x01, 0xff})
}

func TestBinaryZigZagBoundaryValues(t *testing.T) {
	testBinaryRoundTrip[int64](t, `"long"`, int64(0))
	testBinaryRoundTrip[int64](t, `"long"`, int64(-1))
	testBinaryRoundTrip[int64](t, `"long"`, int64(-9223372036854775808))
	testBinaryRoundTrip[int64](t, `"long"`, int64(9223372036854775807))
}

func TestBinaryIntOverflow(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"int"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[int64](b, s)
	testhelpers.RequireNoError(t, err)

	_, err = enc(nil, int64(1)<<40)
	testhelpers.RequireCodecErrorKind(t, err, Overflow)
}

func TestBinaryBooleanSchemaAgainstStringTypeFailsAtBuild(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"boolean"`)
	testhelpers.RequireNoError(t, err)

	_, err = BuildBinaryEncoder[string](b, s)
	testhelpers.RequireBuildErrorKind(t, err, UnsupportedType)
}

func TestBinaryArrayAndMap(t *testing.T) {
	testBinaryRoundTrip[[]int32](t, `{"type":"array","items":"int"}`, []int32{1, 2, 3})
	testBinaryRoundTrip[[]int32](t, `{"type":"array","items":"int"}`, nil)
	testBinaryRoundTrip[map[string]int32](t, `{"type":"map","values":"int"}`,
		map[string]int32{"a": 1, "b": 2})
}

// Map keys that are not strings coerce through a string form: integers in
// base 10, TextMarshaler types (here uuid.UUID) through their text form.
func TestBinaryMapKeyCoercion(t *testing.T) {
	testBinaryRoundTrip[map[int32]string](t, `{"type":"map","values":"string"}`,
		map[int32]string{1: "one", -2: "minus two"})
	testBinaryRoundTrip[map[uint64]bool](t, `{"type":"map","values":"boolean"}`,
		map[uint64]bool{7: true})
	testBinaryRoundTrip[map[uuid.UUID]int32](t, `{"type":"map","values":"int"}`,
		map[uuid.UUID]int32{uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479"): 9})
}

func TestBinaryMapNonConvertibleKeyFailsAtBuild(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"map","values":"int"}`)
	testhelpers.RequireNoError(t, err)

	_, err = BuildBinaryEncoder[map[float64]int32](b, s)
	testhelpers.RequireBuildErrorKind(t, err, UnsupportedType)
}

func TestBinaryFixed(t *testing.T) {
	type fixed4 [4]byte
	testBinaryRoundTrip[fixed4](t, `{"type":"fixed","name":"F4","size":4}`, fixed4{1, 2, 3, 4})
}

func TestBinaryDecodeShortBuffer(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"long"`)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[int64](b, s)
	testhelpers.RequireNoError(t, err)

	_, _, err = dec([]byte{0x80, 0x80, 0x80}) // truncated varint, high bit still set
	testhelpers.RequireCodecErrorKind(t, err, InvalidData)
}
