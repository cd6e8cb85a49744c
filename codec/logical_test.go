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
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	. "github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/internal/testhelpers"
)

func TestTemporalDateRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"int","logicalType":"date"}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)

	want := time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC)
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if !got.Equal(want) {
		t.Errorf("GOT: %v; WANT: %v", got, want)
	}
}

func TestTemporalTimestampMicrosRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"long","logicalType":"timestamp-micros"}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)

	want := time.Date(2024, time.July, 4, 10, 30, 0, 123000, time.UTC)
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if !got.Equal(want) {
		t.Errorf("GOT: %v; WANT: %v", got, want)
	}
}

func TestTemporalDurationRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"fixed","name":"Duration","size":12,"logicalType":"duration"}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[LogicalDuration](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[LogicalDuration](b, s)
	testhelpers.RequireNoError(t, err)

	want := LogicalDuration{Months: 1, Days: 2, Milliseconds: 3000}
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, want)
}

func TestDecimalBytesRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"bytes","logicalType":"decimal","precision":10,"scale":2}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[decimal.Decimal](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[decimal.Decimal](b, s)
	testhelpers.RequireNoError(t, err)

	want := decimal.NewFromFloat(-123.45)
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if !got.Equal(want) {
		t.Errorf("GOT: %v; WANT: %v", got, want)
	}
}

// TestDecimalEncodeTruncatesExcessScaleTowardZero covers a value with more
// fractional digits than the schema's declared scale: the excess digits are
// dropped by rescaling toward zero rather than rounded.
func TestDecimalEncodeTruncatesExcessScaleTowardZero(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"bytes","logicalType":"decimal","precision":6,"scale":2}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[decimal.Decimal](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[decimal.Decimal](b, s)
	testhelpers.RequireNoError(t, err)

	in := decimal.RequireFromString("-1666.6666")
	buf, err := enc(nil, in)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	want := decimal.RequireFromString("-1666.66")
	if !got.Equal(want) {
		t.Errorf("GOT: %v; WANT: %v (truncated toward zero, not rounded)", got, want)
	}
}

// TestDecimalEncodeOverflowsWhenUnscaledExceedsPrecision covers a value
// whose unscaled coefficient, after rescaling to the schema's declared
// scale, no longer fits in the schema's declared precision.
func TestDecimalEncodeOverflowsWhenUnscaledExceedsPrecision(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"bytes","logicalType":"decimal","precision":3,"scale":0}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[decimal.Decimal](b, s)
	testhelpers.RequireNoError(t, err)

	_, err = enc(nil, decimal.RequireFromString("12345"))
	testhelpers.RequireCodecErrorKind(t, err, Overflow)
}

func TestUuidStringRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"string","logicalType":"uuid"}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[uuid.UUID](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[uuid.UUID](b, s)
	testhelpers.RequireNoError(t, err)

	want := uuid.New()
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if got != want {
		t.Errorf("GOT: %v; WANT: %v", got, want)
	}
}

func TestEnumStringRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS","CLUBS","DIAMONDS"]}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[string](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[string](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, "HEARTS")
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if got != "HEARTS" {
		t.Errorf("GOT: %v; WANT: HEARTS", got)
	}
}

func TestEnumUnknownSymbolFails(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS"]}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[string](b, s)
	testhelpers.RequireNoError(t, err)
	_, err = enc(nil, "JOKER")
	testhelpers.RequireCodecErrorKind(t, err, InvalidData)
}

// TestEnumDecodeFallsBackToDefaultForUnknownOrdinal covers the case where a
// writer schema carries more symbols than the reader knows about: an ordinal
// past the end of the reader's symbol list resolves to the enum's declared
// default instead of failing, while an in-range ordinal still decodes
// normally.
func TestEnumDecodeFallsBackToDefaultForUnknownOrdinal(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"enum","name":"Ordinal","symbols":["NONE","FIRST","SECOND","THIRD","FOURTH"],"default":"NONE"}`)
	testhelpers.RequireNoError(t, err)

	dec, err := BuildBinaryDecoder[string](b, s)
	testhelpers.RequireNoError(t, err)

	w := NewBinaryWriter(nil)
	EncodeLongBinary(w, 5)
	got, _, err := dec(w.Bytes())
	testhelpers.RequireNoError(t, err)
	if got != "NONE" {
		t.Errorf("GOT: %v; WANT: NONE (out-of-range ordinal falls back to the enum default)", got)
	}

	w2 := NewBinaryWriter(nil)
	EncodeLongBinary(w2, 2)
	got2, _, err := dec(w2.Bytes())
	testhelpers.RequireNoError(t, err)
	if got2 != "SECOND" {
		t.Errorf("GOT: %v; WANT: SECOND", got2)
	}
}

// The ordinal-bound enum shape applies the same unknown-symbol fallback as
// the string-bound shape: an out-of-range wire ordinal resolves to the
// declared default's ordinal, else InvalidData.
func TestEnumOrdinalDecodeFallsBackToDefault(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"enum","name":"Ordinal","symbols":["NONE","FIRST","SECOND"],"default":"NONE"}`)
	testhelpers.RequireNoError(t, err)

	dec, err := BuildBinaryDecoder[int32](b, s)
	testhelpers.RequireNoError(t, err)

	w := NewBinaryWriter(nil)
	EncodeLongBinary(w, 9)
	got, _, err := dec(w.Bytes())
	testhelpers.RequireNoError(t, err)
	if got != 0 {
		t.Errorf("GOT: %d; WANT: 0 (ordinal of the declared default)", got)
	}
}

func TestEnumOrdinalDecodeOutOfRangeWithoutDefaultFails(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"enum","name":"Ordinal","symbols":["NONE","FIRST"]}`)
	testhelpers.RequireNoError(t, err)

	dec, err := BuildBinaryDecoder[int32](b, s)
	testhelpers.RequireNoError(t, err)

	w := NewBinaryWriter(nil)
	EncodeLongBinary(w, 5)
	_, _, err = dec(w.Bytes())
	testhelpers.RequireCodecErrorKind(t, err, InvalidData)
}

// A plain String schema with no logical overlay binds to time.Time and
// time.Duration through their ISO-8601 text forms.
func TestStringSchemaBindsInstantAsISO8601(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"string"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)

	want := time.Date(2024, time.July, 4, 10, 30, 0, 123000000, time.UTC)
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if !got.Equal(want) {
		t.Errorf("GOT: %v; WANT: %v", got, want)
	}

	tenc, err := BuildTextEncoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)
	tbuf, err := tenc(nil, want)
	testhelpers.RequireNoError(t, err)
	if string(tbuf) != `"2024-07-04T10:30:00.123Z"` {
		t.Errorf("GOT: %s; WANT: \"2024-07-04T10:30:00.123Z\"", tbuf)
	}
}

func TestStringSchemaKeepsInstantOffset(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"string"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[time.Time](b, s)
	testhelpers.RequireNoError(t, err)
	loc := time.FixedZone("", 2*3600)
	buf, err := enc(nil, time.Date(2024, time.July, 4, 12, 30, 0, 0, loc))
	testhelpers.RequireNoError(t, err)
	if string(buf) != `"2024-07-04T12:30:00+02:00"` {
		t.Errorf("GOT: %s; WANT: \"2024-07-04T12:30:00+02:00\"", buf)
	}
}

func TestStringSchemaBindsDurationAsISO8601(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"string"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[time.Duration](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildTextDecoder[time.Duration](b, s)
	testhelpers.RequireNoError(t, err)

	want := 26*time.Hour + 3*time.Minute + 4*time.Second + 500*time.Millisecond
	buf, err := enc(nil, want)
	testhelpers.RequireNoError(t, err)
	if string(buf) != `"P1DT2H3M4.5S"` {
		t.Errorf("GOT: %s; WANT: \"P1DT2H3M4.5S\"", buf)
	}
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if got != want {
		t.Errorf("GOT: %v; WANT: %v", got, want)
	}

	zero, err := enc(nil, 0)
	testhelpers.RequireNoError(t, err)
	if string(zero) != `"PT0S"` {
		t.Errorf("GOT: %s; WANT: \"PT0S\"", zero)
	}
}

func TestStringSchemaDurationRejectsCalendarDesignators(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"string"`)
	testhelpers.RequireNoError(t, err)

	dec, err := BuildTextDecoder[time.Duration](b, s)
	testhelpers.RequireNoError(t, err)
	_, _, err = dec([]byte(`"P1Y2M"`))
	testhelpers.RequireCodecErrorKind(t, err, InvalidData)
}

func TestUuidBytesStringFormIsCanonical(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`{"type":"string","logicalType":"uuid"}`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[uuid.UUID](b, s)
	testhelpers.RequireNoError(t, err)
	id := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")
	buf, err := enc(nil, id)
	testhelpers.RequireNoError(t, err)
	if string(buf) != `"f47ac10b-58cc-4372-a567-0e02b2c3d479"` {
		t.Errorf("GOT: %s", buf)
	}
}
