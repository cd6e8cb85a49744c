// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package typedesc

import (
	"reflect"
	"strings"
)

// fieldOptions is the per-field information read from a struct tag, in the
// style of encoding/json's own tag: `avro:"name,omitempty"`-like, but the
// second segment here carries a literal default value instead of an
// encoding hint (omitempty has no Avro analogue; a schema field is either
// present with a default or not).
type fieldOptions struct {
	skip       bool
	hasDefault bool
	def        interface{}
}

// fieldNameAndOptions reads tag (e.g. "avro") off sf, falling back to the
// bare Go field name when no tag is present or the tag name is empty.
func fieldNameAndOptions(sf reflect.StructField, tag string) (string, fieldOptions) {
	if tag == "" {
		return sf.Name, fieldOptions{}
	}
	raw, ok := sf.Tag.Lookup(tag)
	if !ok {
		return sf.Name, fieldOptions{}
	}
	if raw == "-" {
		return sf.Name, fieldOptions{skip: true}
	}
	parts := strings.Split(raw, ",")
	name := parts[0]
	if name == "" {
		name = sf.Name
	}
	opts := fieldOptions{}
	for _, p := range parts[1:] {
		if strings.HasPrefix(p, "default=") {
			opts.hasDefault = true
			opts.def = strings.TrimPrefix(p, "default=")
		}
	}
	return name, opts
}
