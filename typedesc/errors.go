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
	"fmt"
	"reflect"
)

func errUnsupportedGoKind(t reflect.Type) error {
	return fmt.Errorf("typedesc: Go kind %s (type %s) has no Avro Type-Descriptor mapping", t.Kind(), t)
}

func errUnsupportedKey(t reflect.Type) error {
	return fmt.Errorf("typedesc: map type %s has key %s that is not string-convertible; Avro map keys must be a string or integer kind or implement encoding.TextMarshaler/TextUnmarshaler", t, t.Key())
}

func errRecursiveWithoutRecord(t reflect.Type) error {
	return fmt.Errorf("typedesc: %s is a pointer cycle not mediated by a record; cannot reflect", t)
}
