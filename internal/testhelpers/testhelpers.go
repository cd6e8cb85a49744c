// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package testhelpers collects the table-driven test helpers shared across
// codec/schema/schemabuilder/registry tests.
package testhelpers

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mohae/deepcopy"

	"github.com/linkedin/avrogo/codec"
)

// RequireDeepEqual fails t unless got and want compare equal, using
// mohae/deepcopy to snapshot want before comparison so a later mutation of
// the caller's expectation value (common when want is reused across
// subtests) can't silently change what was actually asserted. Nil and
// empty slices/maps compare equal: the binary block decoder always
// materializes a non-nil (possibly empty) collection.
func RequireDeepEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	wantCopy := deepcopy.Copy(want)
	if diff := cmp.Diff(wantCopy, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

// RequireNoError fails t if err is non-nil.
func RequireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// RequireErrorContains fails t unless err is non-nil and its message
// contains substr.
func RequireErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if substr != "" && !contains(err.Error(), substr) {
		t.Fatalf("GOT: %v; WANT error containing: %v", err, substr)
	}
}

// RequireBuildErrorKind fails t unless err is a *codec.BuildError of the
// given kind, so a failing-build test actually distinguishes
// UnsupportedSchema/UnsupportedType/DefaultMissing rather than accepting
// any non-nil error.
func RequireBuildErrorKind(t *testing.T, err error, kind codec.BuildErrorKind) {
	t.Helper()
	var be *codec.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("GOT: %T (%v); WANT: *codec.BuildError of kind %s", err, err, kind)
	}
	if be.Kind != kind {
		t.Fatalf("GOT: BuildError kind %s; WANT: %s", be.Kind, kind)
	}
}

// RequireCodecErrorKind fails t unless err is a *codec.CodecError of the
// given kind, so a failing-run test actually distinguishes
// InvalidData/Overflow rather than accepting any non-nil error.
func RequireCodecErrorKind(t *testing.T, err error, kind codec.RuntimeErrorKind) {
	t.Helper()
	var ce *codec.CodecError
	if !errors.As(err, &ce) {
		t.Fatalf("GOT: %T (%v); WANT: *codec.CodecError of kind %s", err, err, kind)
	}
	if ce.Kind != kind {
		t.Fatalf("GOT: CodecError kind %s; WANT: %s", ce.Kind, kind)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
