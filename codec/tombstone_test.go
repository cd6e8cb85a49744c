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

func TestTombstonePermissiveBypassesCodec(t *testing.T) {
	b := NewBuilder()
	b.Tombstone = TombstonePermissive
	s, err := b.Compile(`"bytes"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[[]byte](b, s)
	testhelpers.RequireNoError(t, err)
	dec, err := BuildBinaryDecoder[[]byte](b, s)
	testhelpers.RequireNoError(t, err)

	buf, err := enc(nil, nil)
	testhelpers.RequireNoError(t, err)
	if len(buf) != 0 {
		t.Errorf("GOT: % x; WANT: empty payload for nil value", buf)
	}

	got, rest, err := dec(nil)
	testhelpers.RequireNoError(t, err)
	if got != nil || rest != nil {
		t.Errorf("GOT: %v (rest %v); WANT: nil, nil", got, rest)
	}

	// A non-nil value still runs the codec normally.
	buf, err = enc(nil, []byte{0xAA})
	testhelpers.RequireNoError(t, err)
	got, _, err = dec(buf)
	testhelpers.RequireNoError(t, err)
	testhelpers.RequireDeepEqual(t, got, []byte{0xAA})
}

func TestTombstoneStrictRejectsNullAdmittingSchema(t *testing.T) {
	b := NewBuilder()
	b.Tombstone = TombstoneStrict
	s, err := b.Compile(`["null","string"]`)
	testhelpers.RequireNoError(t, err)

	_, err = BuildBinaryEncoder[*string](b, s)
	testhelpers.RequireBuildErrorKind(t, err, UnsupportedSchema)

	_, err = BuildTextDecoder[*string](b, s)
	testhelpers.RequireBuildErrorKind(t, err, UnsupportedSchema)
}

func TestTombstoneStrictStillBypassesOnNonNullSchema(t *testing.T) {
	b := NewBuilder()
	b.Tombstone = TombstoneStrict
	s, err := b.Compile(`"bytes"`)
	testhelpers.RequireNoError(t, err)

	enc, err := BuildBinaryEncoder[[]byte](b, s)
	testhelpers.RequireNoError(t, err)
	buf, err := enc(nil, nil)
	testhelpers.RequireNoError(t, err)
	if len(buf) != 0 {
		t.Errorf("GOT: % x; WANT: empty payload for nil value", buf)
	}
}
