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
	"math/big"
	"reflect"

	"github.com/shopspring/decimal"

	"github.com/linkedin/avrogo/schema"
)

var decimalGoType = reflect.TypeOf(decimal.Decimal{})

// decimalRescale returns the unscaled coefficient of d as if expressed at
// exponent exp, matching decimal.Decimal's own (unexported) rescale
// semantics via its public Coefficient/Exponent accessors.
func decimalRescale(d decimal.Decimal, exp int32) *big.Int {
	curExp := d.Exponent()
	value := new(big.Int).Set(d.Coefficient())
	if curExp == exp {
		return value
	}
	diff := curExp - exp
	if diff < 0 {
		diff = -diff
	}
	expScale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(diff)), nil)
	if exp > curExp {
		value.Quo(value, expScale)
	} else {
		value.Mul(value, expScale)
	}
	return value
}

// caseDecimal implements standard case 12: the decimal logical type over a
// Bytes or Fixed schema binds to a shopspring/decimal.Decimal, whose own
// (coefficient, exponent) representation is exactly Avro's (unscaled
// integer, scale) pair once rescaled to the schema's declared scale.
// The wire form itself, a
// two's-complement big-endian byte string, is Avro-specific and has no
// counterpart in the decimal package, so it is hand-rolled against
// math/big here.
func caseDecimal(ctx *BuildContext) (*ValueCodec, error) {
	var precision, scale, fixedSize int
	var fixed bool

	switch s := ctx.Schema.(type) {
	case *schema.BytesSchema:
		ls := s.Logical()
		if ls == nil || ls.Type != schema.Decimal {
			return nil, nil
		}
		precision, scale = ls.Precision, ls.Scale
	case *schema.FixedSchema:
		ls := s.Logical()
		if ls == nil || ls.Type != schema.Decimal {
			return nil, nil
		}
		precision, scale = ls.Precision, ls.Scale
		fixed = true
		fixedSize = s.Size
	default:
		return nil, nil
	}

	if precision <= 0 {
		return nil, newBuildError(UnsupportedSchema, ctx, "decimal precision must be positive; got %d", precision)
	}
	if scale < 0 || scale > precision {
		return nil, newBuildError(UnsupportedSchema, ctx, "decimal scale %d out of range for precision %d", scale, precision)
	}
	if ctx.Type != decimalGoType {
		return nil, newBuildError(UnsupportedType, ctx, "decimal schema requires a decimal.Decimal type; got %s", typeName(ctx.Type))
	}

	maxUnscaled := new(big.Int).Sub(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil), big.NewInt(1))

	toUnscaled := func(v reflect.Value) (*big.Int, error) {
		d := v.Interface().(decimal.Decimal)
		unscaled := decimalRescale(d, int32(-scale))
		if new(big.Int).Abs(unscaled).Cmp(maxUnscaled) > 0 {
			return nil, newOverflow("decimal value %s exceeds precision %d", d.String(), precision)
		}
		return unscaled, nil
	}
	fromUnscaled := func(unscaled *big.Int) reflect.Value {
		return reflect.ValueOf(decimal.NewFromBigInt(unscaled, int32(-scale)))
	}

	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			unscaled, err := toUnscaled(v)
			if err != nil {
				return err
			}
			b := twosComplementBytes(unscaled)
			if fixed {
				if len(b) > fixedSize {
					return newOverflow("decimal value needs %d bytes but fixed size is %d", len(b), fixedSize)
				}
				b = signExtend(b, fixedSize)
				EncodeFixedBinary(w, b)
			} else {
				EncodeBytesBinary(w, b)
			}
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			var b []byte
			var err error
			if fixed {
				b, err = DecodeFixedBinary(r, fixedSize)
			} else {
				b, err = DecodeBytesBinary(r)
			}
			if err != nil {
				return reflect.Value{}, err
			}
			return fromUnscaled(twosComplementToBigInt(b)), nil
		},
		SkipBinary: func(r *BinaryReader) error {
			if fixed {
				_, err := r.readN(fixedSize)
				return err
			}
			_, err := DecodeBytesBinary(r)
			return err
		},
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			unscaled, err := toUnscaled(v)
			if err != nil {
				return err
			}
			b := twosComplementBytes(unscaled)
			if fixed {
				b = signExtend(b, fixedSize)
			}
			return EncodeBytesText(w, b)
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			b, err := DecodeBytesText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if fixed && len(b) != fixedSize {
				return reflect.Value{}, newInvalidData("fixed(%d): value has length %d", fixedSize, len(b))
			}
			return fromUnscaled(twosComplementToBigInt(b)), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

// twosComplementBytes returns the minimal big-endian two's-complement
// encoding of n, per the Avro decimal logical type's wire representation.
func twosComplementBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	numBytes := n.BitLen()/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(numBytes*8))
	twos := new(big.Int).Add(mod, n)
	b := twos.Bytes()
	for len(b) < numBytes {
		b = append([]byte{0}, b...)
	}
	if b[0]&0x80 == 0 {
		b = append([]byte{0xff}, b...)
	}
	return b
}

// twosComplementToBigInt is the inverse of twosComplementBytes.
func twosComplementToBigInt(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		n.Sub(n, mod)
	}
	return n
}

// signExtend pads b to size bytes, preserving its two's-complement sign,
// for a Fixed-backed decimal whose declared size exceeds the minimal
// encoding.
func signExtend(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	pad := byte(0x00)
	if len(b) > 0 && b[0]&0x80 != 0 {
		pad = 0xff
	}
	out := make([]byte, size-len(b))
	for i := range out {
		out[i] = pad
	}
	return append(out, b...)
}
