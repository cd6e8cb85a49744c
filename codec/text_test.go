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

	. "github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/internal/testhelpers"
)

func testTextRoundTrip[T any](t *testing.T, schemaJSON string, value T) {
	t.Helper()
	b := NewBuilder()
	s, err := b.Compile(schemaJSON)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[T](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildTextDecoder[T](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, value)
	testhelpers.RequireNoError(t, err)

	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, value)
}

func TestTextRoundTripPrimitives(t *testing.T) {
	testTextRoundTrip[bool](t, `"boolean"`, true)
	testTextRoundTrip[int64](t, `"long"`, int64(-9000))
	testTextRoundTrip[float64](t, `"double"`, 3.5)
	testTextRoundTrip[string](t, `"string"`, "hi \"there\"")
	testTextRoundTrip[[]byte](t, `"bytes"`, []byte{0x00, 0xff, 0x10})
}

func TestTextNullLiteral(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"null"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[*int](b, s)
	testhelpers.RequireNoError(t, err)
	buf, err := enc(nil, nil)
	testhelpers.RequireNoError(t, err)
	if string(buf) != "null" {
		t.Errorf("GOT: %s; WANT: null", buf)
	}
}

func TestTextArrayAndRecord(t *testing.T) {
	testTextRoundTrip[[]int32](t, `{"type":"array","items":"int"}`, []int32{7, 8, 9})

	type point struct {
		X int32 `avro:"x"`
		Y int32 `avro:"y"`
	}
	schemaJSON := `{"type":"record","name":"Point","fields":[{"name":"x","type":"int"},{"name":"y","type":"int"}]}`
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(schemaJSON)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[point](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildTextDecoder[point](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, point{X: 1, Y: 2})
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, point{X: 1, Y: 2})
}

func TestTextUnknownObjectKeysSkipped(t *testing.T) {
	type point struct {
		X int32 `avro:"x"`
	}
	schemaJSON := `{"type":"record","name":"Point","fields":[{"name":"x","type":"int"}]}`
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(schemaJSON)
	testhelpers.RequireNoError(t, err)

	dec, err := BuildTextDecoder[point](b, s)
	testhelpers.RequireNoError(t, err)

	got, _, err := dec([]byte(`{"x":5,"unused":{"nested":[1,2,3]}}`))
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, point{X: 5})
}
