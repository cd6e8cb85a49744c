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
	"fmt"
	"reflect"

	"github.com/linkedin/avrogo/schema"
)

// BuildErrorKind distinguishes the three kinds of BuildError. The first two
// are raised while a (schema, type) pair is compiled; DefaultMissing is
// raised while decoding.
type BuildErrorKind int

const (
	// UnsupportedSchema: the schema node itself is malformed or cannot be
	// represented (e.g. Decimal precision <= 0, empty union, a union with
	// two unnamed branches of the same kind).
	UnsupportedSchema BuildErrorKind = iota
	// UnsupportedType: the host type cannot represent values of this
	// schema (e.g. a plain int target for a nullable union).
	UnsupportedType
	// DefaultMissing: a field absent from decode input has no declared
	// default to fall back on.
	DefaultMissing
)

func (k BuildErrorKind) String() string {
	switch k {
	case UnsupportedSchema:
		return "UnsupportedSchema"
	case UnsupportedType:
		return "UnsupportedType"
	case DefaultMissing:
		return "DefaultMissing"
	default:
		return "BuildError"
	}
}

// BuildError is returned by build_encoder/build_decoder (and therefore by
// every Case.Attempt) when a schema cannot be compiled against a host type.
// It carries the offending schema node, host type, and the schema path from
// root so the failure is actionable.
type BuildError struct {
	Kind   BuildErrorKind
	Schema schema.Schema
	Type   reflect.Type
	Path   string
	Msg    string
}

func (e *BuildError) Error() string {
	typeName := "<nil>"
	if e.Type != nil {
		typeName = e.Type.String()
	}
	schemaDesc := "<nil>"
	if e.Schema != nil {
		schemaDesc = e.Schema.Kind().String()
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: at %s: schema %s, type %s: %s", e.Kind, e.Path, schemaDesc, typeName, e.Msg)
	}
	return fmt.Sprintf("%s: schema %s, type %s: %s", e.Kind, schemaDesc, typeName, e.Msg)
}

func newBuildError(kind BuildErrorKind, ctx *BuildContext, format string, args ...interface{}) *BuildError {
	return &BuildError{
		Kind:   kind,
		Schema: ctx.Schema,
		Type:   ctx.Type,
		Path:   ctx.Path,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// RuntimeErrorKind distinguishes the two ways an otherwise-built codec can
// fail while actually encoding or decoding a value.
type RuntimeErrorKind int

const (
	// InvalidData: the input bytes/JSON do not conform (wrong tag, bad
	// varint continuation, negative length, schema-id mismatch).
	InvalidData RuntimeErrorKind = iota
	// Overflow: a decoded integer exceeds the target's representable
	// range, or an encoded decimal exceeds the schema's precision.
	Overflow
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case InvalidData:
		return "InvalidData"
	case Overflow:
		return "Overflow"
	default:
		return "CodecError"
	}
}

// CodecError is returned at run time by a compiled encoder/decoder. Offset
// is a byte offset for binary codecs; TokenPath is a token path for JSON
// codecs. Exactly one of the two is meaningful for any given error.
type CodecError struct {
	Kind      RuntimeErrorKind
	Offset    int64
	TokenPath string
	Msg       string
}

func (e *CodecError) Error() string {
	if e.TokenPath != "" {
		return fmt.Sprintf("%s: at %s: %s", e.Kind, e.TokenPath, e.Msg)
	}
	return fmt.Sprintf("%s: at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func newInvalidData(format string, args ...interface{}) *CodecError {
	return &CodecError{Kind: InvalidData, Msg: fmt.Sprintf(format, args...)}
}

func newOverflow(format string, args ...interface{}) *CodecError {
	return &CodecError{Kind: Overflow, Msg: fmt.Sprintf(format, args...)}
}

func withOffset(err error, offset int64) error {
	if ce, ok := err.(*CodecError); ok && ce.Offset == 0 {
		ce.Offset = offset
	}
	return err
}
