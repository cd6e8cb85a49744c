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
	"bytes"
	"testing"

	. "github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/internal/testhelpers"
)

// End-to-end scenarios with literal expected bytes, checked against both
// encodings.

func TestScenarioIntOne(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"int"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[int32](b, s)
	testhelpers.RequireNoError(t, err)
	buf, err := enc(nil, 1)
	testhelpers.RequireNoError(t, err)
	if !bytes.Equal(buf, []byte{0x02}) {
		t.Errorf("GOT: % x; WANT: 02", buf)
	}

	tenc, err := BuildTextEncoder[int32](b, s)
	testhelpers.RequireNoError(t, err)
	tbuf, err := tenc(nil, 1)
	testhelpers.RequireNoError(t, err)
	if string(tbuf) != "1" {
		t.Errorf("GOT: %s; WANT: 1", tbuf)
	}
}

func TestScenarioStringMage(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`"string"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[string](b, s)
	testhelpers.RequireNoError(t, err)
	buf, err := enc(nil, "\U0001F9D9")
	testhelpers.RequireNoError(t, err)
	if !bytes.Equal(buf, []byte{0x08, 0xF0, 0x9F, 0xA7, 0x99}) {
		t.Errorf("GOT: % x; WANT: 08 f0 9f a7 99", buf)
	}

	tenc, err := BuildTextEncoder[string](b, s)
	testhelpers.RequireNoError(t, err)
	tbuf, err := tenc(nil, "\U0001F9D9")
	testhelpers.RequireNoError(t, err)
	if string(tbuf) != `"🧙"` {
		t.Errorf("GOT: %s; WANT: \"🧙\"", tbuf)
	}
}

func TestScenarioNullableIntUnion(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`["null","int"]`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[*int32](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, nil)
	testhelpers.RequireNoError(t, err)
	if !bytes.Equal(buf, []byte{0x00}) {
		t.Errorf("GOT: % x; WANT: 00", buf)
	}

	seven := int32(7)
	buf, err = enc(nil, &seven)
	testhelpers.RequireNoError(t, err)
	if !bytes.Equal(buf, []byte{0x02, 0x0E}) {
		t.Errorf("GOT: % x; WANT: 02 0e", buf)
	}

	tenc, err := BuildTextEncoder[*int32](b, s)
	testhelpers.RequireNoError(t, err)
	tbuf, err := tenc(nil, nil)
	testhelpers.RequireNoError(t, err)
	if string(tbuf) != "null" {
		t.Errorf("GOT: %s; WANT: null", tbuf)
	}
	tbuf, err = tenc(nil, &seven)
	testhelpers.RequireNoError(t, err)
	if string(tbuf) != `{"int":7}` {
		t.Errorf("GOT: %s; WANT: {\"int\":7}", tbuf)
	}
}

// Branch indices follow schema order: swapping the union's branch order
// swaps which index the null and non-null branches encode to.
func TestScenarioUnionOrderSwapsBranchIndices(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`["int","null"]`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[*int32](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, nil)
	testhelpers.RequireNoError(t, err)
	if !bytes.Equal(buf, []byte{0x02}) {
		t.Errorf("GOT: % x; WANT: 02 (null is branch 1 here)", buf)
	}

	seven := int32(7)
	buf, err = enc(nil, &seven)
	testhelpers.RequireNoError(t, err)
	if !bytes.Equal(buf, []byte{0x00, 0x0E}) {
		t.Errorf("GOT: % x; WANT: 00 0e (int is branch 0 here)", buf)
	}

	dec, err := BuildBinaryDecoder[*int32](b, s)
	testhelpers.RequireNoError(t, err)
	got, rest, err := dec([]byte{0x00, 0x0E})
	testhelpers.RequireNoError(t, err)
	if len(rest) != 0 || got == nil || *got != 7 {
		t.Errorf("GOT: %v (rest %d); WANT: 7", got, len(rest))
	}
}
