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

type widget struct {
	Name  string `avro:"name"`
	Count int32  `avro:"count"`
}

const widgetSchema = `{
	"type": "record",
	"name": "Widget",
	"fields": [
		{"name": "name", "type": "string"},
		{"name": "count", "type": "int"}
	]
}`

func TestRecordStructBinaryRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(widgetSchema)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[widget](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[widget](b, s)
	testhelpers.RequireNoError(t, err)

	want := widget{Name: "bolt", Count: 12}
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, want)
}

func TestRecordFieldNameEqualDefaultsCaseInsensitive(t *testing.T) {
	type widgetExported struct {
		Name  string
		Count int32
	}
	b := NewBuilder()
	s, err := b.Compile(widgetSchema)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[widgetExported](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[widgetExported](b, s)
	testhelpers.RequireNoError(t, err)

	want := widgetExported{Name: "nut", Count: 4}
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, want)
}

func TestRecordMissingFieldWithDefaultIsEncoded(t *testing.T) {
	type partial struct {
		Name string `avro:"name"`
	}
	schemaJSON := `{
		"type": "record",
		"name": "Widget",
		"fields": [
			{"name": "name", "type": "string"},
			{"name": "count", "type": "int", "default": 0}
		]
	}`
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(schemaJSON)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[partial](b, s)
	testhelpers.RequireNoError(t, err)

	_, err = enc(nil, partial{Name: "washer"})
	testhelpers.RequireNoError(t, err)
}

func TestRecordMissingFieldWithoutDefaultFailsAtBuild(t *testing.T) {
	type partial struct {
		Name string `avro:"name"`
	}
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(widgetSchema)
	testhelpers.RequireNoError(t, err)

	_, err = BuildBinaryEncoder[partial](b, s)
	testhelpers.RequireBuildErrorKind(t, err, UnsupportedSchema)
}

type node struct {
	Value int32 `avro:"value"`
	Next  *node `avro:"next"`
}

const nodeSchema = `{
	"type": "record",
	"name": "Node",
	"fields": [
		{"name": "value", "type": "int"},
		{"name": "next", "type": ["null", "Node"]}
	]
}`

// TestRecordRecursiveBinaryRoundTrip covers a self-referencing record schema
// compiled against a Go struct with a self-referencing pointer field: the
// forward-reference table lets the recursive "next" branch bind back to the
// enclosing record type instead of looping forever at build time.
func TestRecordRecursiveBinaryRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(nodeSchema)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[node](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[node](b, s)
	testhelpers.RequireNoError(t, err)

	want := node{Value: 1, Next: &node{Value: 2, Next: nil}}
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)

	wantBytes := []byte{0x02, 0x02, 0x02, 0x04, 0x00}
	if string(buf) != string(wantBytes) {
		t.Errorf("GOT: % x; WANT: % x", buf, wantBytes)
	}

	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, want)
}

// A schema field with no matching struct field is skipped on decode,
// consuming exactly its byte span; the fields around it still decode.
func TestRecordDecodeSkipsFieldWithoutStructMember(t *testing.T) {
	type full struct {
		Name  string `avro:"name"`
		Extra string `avro:"extra"`
		Count int32  `avro:"count"`
	}
	type partial struct {
		Name  string `avro:"name"`
		Count int32  `avro:"count"`
	}
	schemaJSON := `{
		"type": "record",
		"name": "Widget",
		"fields": [
			{"name": "name", "type": "string"},
			{"name": "extra", "type": "string", "default": ""},
			{"name": "count", "type": "int"}
		]
	}`
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(schemaJSON)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[full](b, s)
	testhelpers.RequireNoError(t, err)
	buf, err := enc(nil, full{Name: "gear", Extra: "ignored payload", Count: 31})
	testhelpers.RequireNoError(t, err)

	dec, err := BuildBinaryDecoder[partial](b, s)
	testhelpers.RequireNoError(t, err)
	got, rest, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if len(rest) != 0 {
		t.Errorf("%d unread trailing bytes; the skipped field did not consume its exact span", len(rest))
	}
	testhelpers.RequireDeepEqual(t, got, partial{Name: "gear", Count: 31})
}

// A JSON object missing a key for a field that declares a default decodes
// the default through the field's own codec; one missing a key for a field
// with no default is a DefaultMissing failure.
func TestRecordTextDecodeMissingKeyUsesDefault(t *testing.T) {
	type counted struct {
		Name  string `avro:"name"`
		Count int32  `avro:"count"`
	}
	schemaJSON := `{
		"type": "record",
		"name": "Widget",
		"fields": [
			{"name": "name", "type": "string"},
			{"name": "count", "type": "int", "default": 42}
		]
	}`
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(schemaJSON)
	testhelpers.RequireNoError(t, err)

	dec, err := BuildTextDecoder[counted](b, s)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec([]byte(`{"name":"flange"}`))
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, counted{Name: "flange", Count: 42})
}

func TestRecordTextDecodeMissingKeyWithoutDefaultFails(t *testing.T) {
	type counted struct {
		Name  string `avro:"name"`
		Count int32  `avro:"count"`
	}
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(widgetSchema)
	testhelpers.RequireNoError(t, err)

	dec, err := BuildTextDecoder[counted](b, s)
	testhelpers.RequireNoError(t, err)
	_, _, err = dec([]byte(`{"name":"flange"}`))
	testhelpers.RequireBuildErrorKind(t, err, DefaultMissing)
}

func TestRecordPointerBindsToRecordSchema(t *testing.T) {
	b := NewBuilder()
	b.FieldTag = "avro"
	s, err := b.Compile(widgetSchema)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[*widget](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[*widget](b, s)
	testhelpers.RequireNoError(t, err)

	want := &widget{Name: "spring", Count: 99}
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if got == nil || *got != *want {
		t.Errorf("GOT: %v; WANT: %v", got, want)
	}
}
