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
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOfPrimitives(t *testing.T) {
	d, err := Of(reflect.TypeOf(int32(0)), "")
	if err != nil {
		t.Fatal(err)
	}
	p, ok := d.(Primitive)
	if !ok || p.Which != I32 {
		t.Errorf("GOT: %#v; WANT: Primitive{Which: I32}", d)
	}
}

func TestOfTimeIsInstant(t *testing.T) {
	d, err := Of(reflect.TypeOf(time.Time{}), "")
	if err != nil {
		t.Fatal(err)
	}
	tmp, ok := d.(Temporal)
	if !ok || tmp.Which != InstantWithOffset {
		t.Errorf("GOT: %#v; WANT: Temporal{Which: InstantWithOffset}", d)
	}
}

type innerThing struct {
	Value string `avro:"value"`
}

type outerThing struct {
	Name     string     `avro:"name"`
	Inner    innerThing `avro:"inner"`
	Tags     []string   `avro:"tags"`
	Hidden   string     `avro:"-"`
	unexport string
}

func TestOfRecordFields(t *testing.T) {
	d, err := Of(reflect.TypeOf(outerThing{}), "avro")
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := d.(Record)
	if !ok {
		t.Fatalf("GOT: %T; WANT: Record", d)
	}
	if len(rec.Fields) != 3 {
		t.Fatalf("GOT: %d fields; WANT: 3 (skip Hidden and unexport)", len(rec.Fields))
	}
	names := map[string]bool{}
	for _, f := range rec.Fields {
		names[f.Name] = true
	}
	for _, want := range []string{"name", "inner", "tags"} {
		if !names[want] {
			t.Errorf("missing field %q in %v", want, names)
		}
	}
}

type selfRef struct {
	Next *selfRef `avro:"next"`
}

func TestOfPointerCycleViaOption(t *testing.T) {
	d, err := Of(reflect.TypeOf(selfRef{}), "avro")
	if err != nil {
		t.Fatal(err)
	}
	rec := d.(Record)
	next := rec.Fields[0].Type.(Option)
	if next.Inner.Kind() != KindRecord {
		t.Errorf("GOT: %#v; WANT an Option wrapping a Record", next)
	}
}

func TestOfDecimalDecimalIsBigDecimal(t *testing.T) {
	d, err := Of(reflect.TypeOf(decimal.Decimal{}), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(BigDecimal); !ok {
		t.Errorf("GOT: %#v; WANT: BigDecimal (shopspring/decimal.Decimal is the one host big-decimal type codec/case_decimal.go compiles against)", d)
	}
}

func TestOfUnsupportedGoKindErrors(t *testing.T) {
	_, err := Of(reflect.TypeOf(make(chan int)), "")
	if err == nil {
		t.Fatal("expected an error for an unsupported channel type")
	}
}

func TestOfMapAcceptsStringConvertibleKeys(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeOf(map[string]int32{}),
		reflect.TypeOf(map[int]string{}),
		reflect.TypeOf(map[uint16]string{}),
	} {
		d, err := Of(typ, "")
		if err != nil {
			t.Errorf("%s: %v", typ, err)
			continue
		}
		if d.Kind() != KindMap {
			t.Errorf("%s: GOT: %#v; WANT: Map", typ, d)
		}
	}
}

func TestOfMapRejectsNonConvertibleKey(t *testing.T) {
	_, err := Of(reflect.TypeOf(map[float64]string{}), "")
	if err == nil {
		t.Fatal("expected an error for a float-keyed map; floats do not round-trip through a string key")
	}
}
