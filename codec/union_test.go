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

func TestUnionNullableBinaryRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`["null","string"]`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[*string](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[*string](b, s)
	testhelpers.RequireNoError(t, err)

	val := "branch value"
	buf, err := enc(nil, &val)
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if got == nil || *got != val {
		t.Errorf("GOT: %v; WANT: %v", got, val)
	}

	buf, err = enc(nil, nil)
	testhelpers.RequireNoError(t, err)
	got, _, err = dec(buf)
	testhelpers.RequireNoError(t, err)
	if got != nil {
		t.Errorf("GOT: %v; WANT: nil", got)
	}
}

func TestUnionNullableTextRoundTrip(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`["null","string"]`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[*string](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildTextDecoder[*string](b, s)
	testhelpers.RequireNoError(t, err)

	val := "tagged"
	buf, err := enc(nil, &val)
	testhelpers.RequireNoError(t, err)
	if string(buf) != `{"string":"tagged"}` {
		t.Errorf("GOT: %s; WANT: {\"string\":\"tagged\"}", buf)
	}

	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	if got == nil || *got != val {
		t.Errorf("GOT: %v; WANT: %v", got, val)
	}

	buf, err = enc(nil, nil)
	testhelpers.RequireNoError(t, err)
	if string(buf) != "null" {
		t.Errorf("GOT: %s; WANT: null", buf)
	}
}

func TestUnionNonNullablePairFailsOnPointer(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`["string","int"]`)
	testhelpers.RequireNoError(t, err)

	_, err = BuildBinaryEncoder[*string](b, s)
	testhelpers.RequireBuildErrorKind(t, err, UnsupportedSchema)
}

func TestUnionMultiBranchBindsToDynamic(t *testing.T) {
	b := NewBuilder()
	s, err := b.Compile(`["null","string","int"]`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildTextEncoder[interface{}](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildTextDecoder[interface{}](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, int32(7))
	testhelpers.RequireNoError(t, err)
	got, _, err := dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, map[string]interface{}{"int": int64(7)})
}
