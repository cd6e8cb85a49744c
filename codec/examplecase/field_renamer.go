// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package examplecase

import (
	"reflect"

	"github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/schema"
)

// FieldRenamer rewrites a record schema's field names through Rename
// before delegating to the default record case, for host structs whose
// field names follow a systematic convention the schema's field names
// don't (e.g. a schema using snake_case against Go's exported
// CamelCase), without disabling the default chain's type handling for
// every other schema kind: field matching is overridden for one record
// without reimplementing arrays, unions, and the rest.
//
// The renamed schema is compiled through the full chain, so it reaches
// FieldRenamer again; Attempt skips whenever Rename changes no field name,
// which ends that second pass as long as Rename maps its own output to
// itself.
type FieldRenamer struct {
	Rename func(schemaFieldName string) string
}

func (r FieldRenamer) Name() string { return "examplecase.FieldRenamer" }

func (r FieldRenamer) Attempt(ctx *codec.BuildContext) (*codec.ValueCodec, error) {
	rs, ok := ctx.Schema.(*schema.RecordSchema)
	if !ok {
		return nil, nil
	}
	if ctx.Type.Kind() != reflect.Struct {
		return nil, nil
	}

	renamed := &schema.RecordSchema{Name: rs.Name, Fields: make([]*schema.Field, len(rs.Fields))}
	if ls := rs.Logical(); ls != nil {
		_ = ls // records never carry a logical overlay; kept for symmetry
	}
	changed := false
	for i, f := range rs.Fields {
		nf := *f
		nf.Name = r.Rename(f.Name)
		changed = changed || nf.Name != f.Name
		renamed.Fields[i] = &nf
	}
	if !changed {
		// nothing to rename, which is also the case when the renamed schema
		// comes back through the chain: leave it to the default record case
		return nil, nil
	}

	vc, err := ctx.Build(renamed, ctx.Type, "")
	if err != nil {
		return nil, err
	}
	// the delegate compiled against renamed field names; present it to
	// callers under the original schema so error messages and Schema()
	// accessors still describe the schema actually being matched.
	out := *vc
	out.Schema = rs
	return &out, nil
}
