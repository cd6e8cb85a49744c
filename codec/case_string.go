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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linkedin/avrogo/schema"
)

// caseString implements standard case 7: String schema binds to any
// string-kinded Go type; to a uuid.UUID rendered in its canonical
// 8-4-4-4-12 text form when the schema carries the uuid logical overlay;
// and, for an overlay-free String schema, to a time.Time as an ISO-8601
// date-time (offset kept when the value carries one, "Z" otherwise) or a
// time.Duration as an ISO-8601 duration (PnDTnHnMnS).
func caseString(ctx *BuildContext) (*ValueCodec, error) {
	if ctx.Schema.Kind() != schema.String {
		return nil, nil
	}

	if ls := ctx.Schema.Logical(); ls != nil && ls.Type == schema.Uuid && ctx.Type == uuidGoType {
		return &ValueCodec{
			Schema: ctx.Schema,
			EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
				id := v.Interface().(uuid.UUID)
				EncodeStringBinary(w, id.String())
				return nil
			},
			DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
				s, err := DecodeStringBinary(r)
				if err != nil {
					return reflect.Value{}, err
				}
				id, err := uuid.Parse(s)
				if err != nil {
					return reflect.Value{}, newInvalidData("invalid uuid string %q: %s", s, err)
				}
				return reflect.ValueOf(id), nil
			},
			SkipBinary: func(r *BinaryReader) error { _, err := DecodeStringBinary(r); return err },
			EncodeText: func(w *TextWriter, v reflect.Value) error {
				id := v.Interface().(uuid.UUID)
				return EncodeStringText(w, id.String())
			},
			DecodeText: func(r *TextReader) (reflect.Value, error) {
				s, err := DecodeStringText(r)
				if err != nil {
					return reflect.Value{}, err
				}
				id, err := uuid.Parse(s)
				if err != nil {
					return reflect.Value{}, newInvalidData("invalid uuid string %q: %s", s, err)
				}
				return reflect.ValueOf(id), nil
			},
			SkipText: func(r *TextReader) error { return r.SkipValue() },
		}, nil
	}

	if ctx.Schema.Logical() == nil {
		switch ctx.Type {
		case timeGoType:
			return stringAsInstant(ctx)
		case durationGoType:
			return stringAsDuration(ctx)
		}
	}

	if ctx.Type.Kind() != reflect.String {
		return nil, newBuildError(UnsupportedType, ctx, "string schema requires a string-kinded type; got %s", typeName(ctx.Type))
	}
	t := ctx.Type
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			EncodeStringBinary(w, v.String())
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			s, err := DecodeStringBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(s).Convert(t), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeStringBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			return EncodeStringText(w, v.String())
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			s, err := DecodeStringText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(s).Convert(t), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

// stringAsInstant binds an overlay-free String schema to time.Time via the
// RFC 3339 date-time text form: the offset is kept when the value carries
// one, UTC renders as "Z".
func stringAsInstant(ctx *BuildContext) (*ValueCodec, error) {
	parse := func(s string) (reflect.Value, error) {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return reflect.Value{}, newInvalidData("invalid ISO-8601 date-time %q: %s", s, err)
		}
		return reflect.ValueOf(t), nil
	}
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			EncodeStringBinary(w, v.Interface().(time.Time).Format(time.RFC3339Nano))
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			s, err := DecodeStringBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return parse(s)
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeStringBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			return EncodeStringText(w, v.Interface().(time.Time).Format(time.RFC3339Nano))
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			s, err := DecodeStringText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return parse(s)
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

// stringAsDuration binds an overlay-free String schema to time.Duration via
// the ISO-8601 duration text form (PnDTnHnMnS).
func stringAsDuration(ctx *BuildContext) (*ValueCodec, error) {
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			EncodeStringBinary(w, formatDurationISO8601(v.Interface().(time.Duration)))
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			s, err := DecodeStringBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			d, err := parseDurationISO8601(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeStringBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			return EncodeStringText(w, formatDurationISO8601(v.Interface().(time.Duration)))
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			s, err := DecodeStringText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			d, err := parseDurationISO8601(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

// formatDurationISO8601 renders d as PnDTnHnMnS. Fractional seconds keep
// only their significant digits; a negative duration takes a leading '-'.
func formatDurationISO8601(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	sb.WriteByte('P')
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
	}
	if d > 0 {
		sb.WriteByte('T')
		h := d / time.Hour
		d -= h * time.Hour
		m := d / time.Minute
		d -= m * time.Minute
		if h > 0 {
			fmt.Fprintf(&sb, "%dH", h)
		}
		if m > 0 {
			fmt.Fprintf(&sb, "%dM", m)
		}
		if d > 0 {
			secs := d / time.Second
			nanos := d % time.Second
			if nanos == 0 {
				fmt.Fprintf(&sb, "%dS", secs)
			} else {
				frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
				fmt.Fprintf(&sb, "%d.%sS", secs, frac)
			}
		}
	}
	return sb.String()
}

// parseDurationISO8601 is the inverse of formatDurationISO8601. Year and
// month designators have no fixed length and cannot map onto a
// time.Duration, so they are InvalidData here.
func parseDurationISO8601(s string) (time.Duration, error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if len(s) < 2 || s[0] != 'P' {
		return 0, newInvalidData("invalid ISO-8601 duration %q", orig)
	}
	s = s[1:]
	var total time.Duration
	inTime := false
	for len(s) > 0 {
		if s[0] == 'T' {
			inTime = true
			s = s[1:]
			continue
		}
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, newInvalidData("invalid ISO-8601 duration %q", orig)
		}
		f, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, newInvalidData("invalid ISO-8601 duration %q: %s", orig, err)
		}
		var unit time.Duration
		switch {
		case !inTime && s[i] == 'W':
			unit = 7 * 24 * time.Hour
		case !inTime && s[i] == 'D':
			unit = 24 * time.Hour
		case inTime && s[i] == 'H':
			unit = time.Hour
		case inTime && s[i] == 'M':
			unit = time.Minute
		case inTime && s[i] == 'S':
			unit = time.Second
		default:
			return 0, newInvalidData("invalid ISO-8601 duration %q: unsupported designator %q", orig, string(s[i]))
		}
		total += time.Duration(f * float64(unit))
		s = s[i+1:]
	}
	if neg {
		total = -total
	}
	return total, nil
}
