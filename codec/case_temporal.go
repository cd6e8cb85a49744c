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
	"time"

	"github.com/linkedin/avrogo/schema"
)

var (
	timeGoType     = reflect.TypeOf(time.Time{})
	durationGoType = reflect.TypeOf(time.Duration(0))
)

// LogicalDuration is the host representation of the Avro duration logical
// type (a 12-byte Fixed schema carrying three little-endian uint32 counts):
// a calendar span that cannot be collapsed into a single time.Duration
// because months and days have no fixed length.
type LogicalDuration struct {
	Months       uint32
	Days         uint32
	Milliseconds uint32
}

// caseTemporal implements standard case 13: the Date/TimeMillis/TimeMicros/
// TimestampMillis/TimestampMicros/TimestampNanos/Duration logical overlays
// bind to time.Time, time.Duration, or LogicalDuration respectively.
// It runs after caseIntLong, which skips whenever a logical overlay is
// present, after caseFixed, which skips the Duration overlay, and after
// caseDecimal, which claims the Decimal overlay first.
func caseTemporal(ctx *BuildContext) (*ValueCodec, error) {
	ls := ctx.Schema.Logical()
	if ls == nil {
		return nil, nil
	}
	switch ls.Type {
	case schema.Date:
		if ctx.Schema.Kind() != schema.Int {
			return nil, newBuildError(UnsupportedSchema, ctx, "date logical type requires an int schema")
		}
		return dateCodec(ctx)
	case schema.TimeMillis:
		if ctx.Schema.Kind() != schema.Int {
			return nil, newBuildError(UnsupportedSchema, ctx, "time-millis logical type requires an int schema")
		}
		return timeOfDayCodec(ctx, time.Millisecond)
	case schema.TimeMicros:
		if ctx.Schema.Kind() != schema.Long {
			return nil, newBuildError(UnsupportedSchema, ctx, "time-micros logical type requires a long schema")
		}
		return timeOfDayCodec(ctx, time.Microsecond)
	case schema.TimestampMillis:
		if ctx.Schema.Kind() != schema.Long {
			return nil, newBuildError(UnsupportedSchema, ctx, "timestamp-millis logical type requires a long schema")
		}
		return timestampCodec(ctx, time.Millisecond)
	case schema.TimestampMicros:
		if ctx.Schema.Kind() != schema.Long {
			return nil, newBuildError(UnsupportedSchema, ctx, "timestamp-micros logical type requires a long schema")
		}
		return timestampCodec(ctx, time.Microsecond)
	case schema.TimestampNanos:
		if ctx.Schema.Kind() != schema.Long {
			return nil, newBuildError(UnsupportedSchema, ctx, "timestamp-nanos logical type requires a long schema")
		}
		return timestampCodec(ctx, time.Nanosecond)
	case schema.DurationLogical:
		fs, ok := ctx.Schema.(*schema.FixedSchema)
		if !ok || fs.Size != 12 {
			return nil, newBuildError(UnsupportedSchema, ctx, "duration logical type requires a fixed(12) schema")
		}
		return durationCodec(ctx)
	default:
		return nil, nil
	}
}

func dateCodec(ctx *BuildContext) (*ValueCodec, error) {
	if ctx.Type != timeGoType {
		return nil, newBuildError(UnsupportedType, ctx, "date schema requires a time.Time type; got %s", typeName(ctx.Type))
	}
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			days := daysSinceEpoch(v.Interface().(time.Time))
			EncodeLongBinary(w, int64(days))
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			days, err := DecodeLongBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(epochDate(int32(days))), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeLongBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			days := daysSinceEpoch(v.Interface().(time.Time))
			EncodeLongText(w, int64(days))
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			days, err := DecodeLongText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(epochDate(int32(days))), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func daysSinceEpoch(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return date.Unix() / 86400
}

func epochDate(days int32) time.Time {
	return time.Unix(int64(days)*86400, 0).UTC()
}

func timeOfDayCodec(ctx *BuildContext, unit time.Duration) (*ValueCodec, error) {
	if ctx.Type != durationGoType {
		return nil, newBuildError(UnsupportedType, ctx, "time-of-day schema requires a time.Duration type; got %s", typeName(ctx.Type))
	}
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			d := v.Interface().(time.Duration)
			EncodeLongBinary(w, int64(d/unit))
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			n, err := DecodeLongBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(time.Duration(n) * unit), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeLongBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			d := v.Interface().(time.Duration)
			EncodeLongText(w, int64(d/unit))
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			n, err := DecodeLongText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(time.Duration(n) * unit), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func timestampCodec(ctx *BuildContext, unit time.Duration) (*ValueCodec, error) {
	if ctx.Type != timeGoType {
		return nil, newBuildError(UnsupportedType, ctx, "timestamp schema requires a time.Time type; got %s", typeName(ctx.Type))
	}
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			t := v.Interface().(time.Time)
			EncodeLongBinary(w, unixUnits(t, unit))
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			n, err := DecodeLongBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(fromUnixUnits(n, unit)), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeLongBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			t := v.Interface().(time.Time)
			EncodeLongText(w, unixUnits(t, unit))
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			n, err := DecodeLongText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(fromUnixUnits(n, unit)), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func unixUnits(t time.Time, unit time.Duration) int64 {
	return t.UnixNano() / int64(unit)
}

func fromUnixUnits(n int64, unit time.Duration) time.Time {
	return time.Unix(0, n*int64(unit)).UTC()
}

var logicalDurationGoType = reflect.TypeOf(LogicalDuration{})

func durationCodec(ctx *BuildContext) (*ValueCodec, error) {
	if ctx.Type != logicalDurationGoType {
		return nil, newBuildError(UnsupportedType, ctx, "duration schema requires a codec.LogicalDuration type; got %s", typeName(ctx.Type))
	}
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			d := v.Interface().(LogicalDuration)
			b := make([]byte, 12)
			putUint32LE(b[0:4], d.Months)
			putUint32LE(b[4:8], d.Days)
			putUint32LE(b[8:12], d.Milliseconds)
			EncodeFixedBinary(w, b)
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			b, err := DecodeFixedBinary(r, 12)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(LogicalDuration{
				Months:       getUint32LE(b[0:4]),
				Days:         getUint32LE(b[4:8]),
				Milliseconds: getUint32LE(b[8:12]),
			}), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := r.readN(12); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			d := v.Interface().(LogicalDuration)
			b := make([]byte, 12)
			putUint32LE(b[0:4], d.Months)
			putUint32LE(b[4:8], d.Days)
			putUint32LE(b[8:12], d.Milliseconds)
			return EncodeBytesText(w, b)
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			b, err := DecodeBytesText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if len(b) != 12 {
				return reflect.Value{}, newInvalidData("duration: value has length %d, want 12", len(b))
			}
			return reflect.ValueOf(LogicalDuration{
				Months:       getUint32LE(b[0:4]),
				Days:         getUint32LE(b[4:8]),
				Milliseconds: getUint32LE(b[8:12]),
			}), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
