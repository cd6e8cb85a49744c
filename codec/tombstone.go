// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package codec

import (
	"reflect"

	"github.com/linkedin/avrogo/schema"
)

// isTombstoneValue reports whether v is the "absent" form that bypasses the
// codec when a tombstone policy is active: an untyped nil, or a nil value
// of a nil-able kind.
func isTombstoneValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// schemaAdmitsNull reports whether s can already represent null at its top
// level, which makes an empty payload ambiguous: it could be a tombstone or
// an encoded null. TombstoneStrict refuses to build codecs for such schemas.
func schemaAdmitsNull(s schema.Schema) bool {
	resolved := schema.Resolve(s)
	if resolved.Kind() == schema.Null {
		return true
	}
	if us, ok := resolved.(*schema.UnionSchema); ok {
		return us.NullIndex() >= 0
	}
	return false
}

// checkTombstonePolicy is the build-time gate run by every BuildXxx
// entrypoint before compiling.
func (b *Builder) checkTombstonePolicy(s schema.Schema, t reflect.Type) error {
	if b.Tombstone != TombstoneStrict {
		return nil
	}
	if schemaAdmitsNull(s) {
		return &BuildError{
			Kind:   UnsupportedSchema,
			Schema: s,
			Type:   t,
			Msg:    "strict tombstone mode cannot distinguish an empty payload from an encoded null; the top-level schema must not admit null",
		}
	}
	return nil
}
