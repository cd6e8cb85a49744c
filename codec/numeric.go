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
	"math"
	"reflect"
)

// isIntegerKind reports whether k is one of Go's built-in integer kinds.
func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// int64FromValue widens any integer-kinded reflect.Value to int64. A
// uint64 value whose top bit is set cannot be represented and is an
// encode-time Overflow.
func int64FromValue(v reflect.Value) (int64, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, newOverflow("uint value %d would overflow int64", u)
		}
		return int64(u), nil
	default:
		return 0, newInvalidData("value of kind %s is not an integer", v.Kind())
	}
}

// int64ToValue narrows val into a new reflect.Value of kind t, raising
// Overflow if val is outside t's representable range.
func int64ToValue(t reflect.Type, val int64) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Int64:
		return reflect.ValueOf(val).Convert(t), nil
	case reflect.Int:
		if strconvIntOverflows(val) {
			return reflect.Value{}, newOverflow("value %d would overflow int", val)
		}
		return reflect.ValueOf(int(val)).Convert(t), nil
	case reflect.Int32:
		if val < math.MinInt32 || val > math.MaxInt32 {
			return reflect.Value{}, newOverflow("value %d would overflow int32", val)
		}
		return reflect.ValueOf(int32(val)).Convert(t), nil
	case reflect.Int16:
		if val < math.MinInt16 || val > math.MaxInt16 {
			return reflect.Value{}, newOverflow("value %d would overflow int16", val)
		}
		return reflect.ValueOf(int16(val)).Convert(t), nil
	case reflect.Int8:
		if val < math.MinInt8 || val > math.MaxInt8 {
			return reflect.Value{}, newOverflow("value %d would overflow int8", val)
		}
		return reflect.ValueOf(int8(val)).Convert(t), nil
	case reflect.Uint, reflect.Uint64:
		if val < 0 {
			return reflect.Value{}, newOverflow("value %d would overflow unsigned type", val)
		}
		return reflect.ValueOf(val).Convert(t), nil
	case reflect.Uint32:
		if val < 0 || val > math.MaxUint32 {
			return reflect.Value{}, newOverflow("value %d would overflow uint32", val)
		}
		return reflect.ValueOf(uint32(val)).Convert(t), nil
	case reflect.Uint16:
		if val < 0 || val > math.MaxUint16 {
			return reflect.Value{}, newOverflow("value %d would overflow uint16", val)
		}
		return reflect.ValueOf(uint16(val)).Convert(t), nil
	case reflect.Uint8:
		if val < 0 || val > math.MaxUint8 {
			return reflect.Value{}, newOverflow("value %d would overflow uint8", val)
		}
		return reflect.ValueOf(uint8(val)).Convert(t), nil
	default:
		return reflect.Value{}, newInvalidData("type kind %s is not an integer", t.Kind())
	}
}

func strconvIntOverflows(val int64) bool {
	// int is 64-bit on every platform this repo targets; kept as a
	// distinct branch so a 32-bit int platform would only need to change
	// this one check.
	return false
}

// float64FromValue widens any integer- or float-kinded value to float64.
// Integer-to-float widening on encode is deliberate and silent.
func float64FromValue(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	default:
		if isIntegerKind(v.Kind()) {
			i, err := int64FromValue(v)
			if err != nil {
				return 0, err
			}
			return float64(i), nil
		}
		return 0, newInvalidData("value of kind %s is not numeric", v.Kind())
	}
}
