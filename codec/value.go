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

// ValueCodec is a compiled (encoder, decoder) pair specialized to one
// (schema, host type) pairing, carried for both the binary and JSON
// encodings at once: four codec functions plus two skip functions. Skip
// functions consume exactly one value's span without producing a host
// value, which is what record decoding uses for fields the host type has
// no member for.
type ValueCodec struct {
	Schema schema.Schema

	EncodeBinary func(w *BinaryWriter, v reflect.Value) error
	DecodeBinary func(r *BinaryReader) (reflect.Value, error)
	SkipBinary   func(r *BinaryReader) error

	EncodeText func(w *TextWriter, v reflect.Value) error
	DecodeText func(r *TextReader) (reflect.Value, error)
	SkipText   func(r *TextReader) error
}

// BuildContext is handed to every Case.Attempt call. It carries the schema
// node and host type under consideration, the path from the build root
// (for error messages), and a handle back to the Builder so a case may
// recursively build sub-codecs, which is how user cases delegate nested
// schema/type pairs back to the default chain.
type BuildContext struct {
	Builder *Builder
	Schema  schema.Schema
	Type    reflect.Type
	Path    string

	state *buildState
}

// Build recursively builds a sub-codec for (s, t), reusing this context's
// build state (forward-reference table) and extending the path for error
// reporting. User cases call this to delegate to the default case chain
// for nested schema/type pairs, e.g. a record field or a union branch.
func (ctx *BuildContext) Build(s schema.Schema, t reflect.Type, pathSuffix string) (*ValueCodec, error) {
	return ctx.Builder.build(ctx.state, s, t, joinPath(ctx.Path, pathSuffix))
}

func joinPath(base, suffix string) string {
	if base == "" {
		return suffix
	}
	if suffix == "" {
		return base
	}
	return base + "." + suffix
}

// Case implements one handler in the builder's ordered dispatch chain.
// Attempt returns (codec, nil) on a match, (nil, nil) to let the next case
// try, or (nil, err) to halt the chain. Implementations must be
// deterministic given their inputs and must not rely on shared mutable
// state.
type Case interface {
	Name() string
	Attempt(ctx *BuildContext) (*ValueCodec, error)
}

// CaseFunc adapts a plain function to the Case interface, for the common
// case of a stateless case with no fields of its own.
type CaseFunc struct {
	CaseName string
	Fn       func(ctx *BuildContext) (*ValueCodec, error)
}

func (c CaseFunc) Name() string { return c.CaseName }
func (c CaseFunc) Attempt(ctx *BuildContext) (*ValueCodec, error) { return c.Fn(ctx) }

// forwardKey identifies one (named-schema identity, host type) pairing
// within a single build, used to detect and resolve recursive schemas.
type forwardKey struct {
	schema schema.Schema
	typ    reflect.Type
}

// buildState is allocated fresh for every top-level build call, so
// concurrent builds never share mutable state.
type buildState struct {
	forwardRefs map[forwardKey]*ValueCodec
}

func newBuildState() *buildState {
	return &buildState{forwardRefs: map[forwardKey]*ValueCodec{}}
}

func isNamedKind(k schema.Kind) bool {
	return k == schema.Record || k == schema.Enum || k == schema.Fixed
}
