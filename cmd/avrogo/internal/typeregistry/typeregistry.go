// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package typeregistry resolves the host-type locator argument of the
// create and registry-test commands. Go has no runtime
// type-by-name lookup, so cmd/avrogo ships a small static name->reflect.Type
// table seeded with the primitive kinds every example can reach; a caller
// embedding cmd/avrogo commands into their own binary registers their
// domain structs with Register in an init function.
package typeregistry

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	mu    sync.RWMutex
	types = map[string]reflect.Type{
		"bool":            reflect.TypeOf(false),
		"int32":           reflect.TypeOf(int32(0)),
		"int64":           reflect.TypeOf(int64(0)),
		"float32":         reflect.TypeOf(float32(0)),
		"float64":         reflect.TypeOf(float64(0)),
		"string":          reflect.TypeOf(""),
		"bytes":           reflect.TypeOf([]byte(nil)),
		"time.Time":       reflect.TypeOf(time.Time{}),
		"uuid.UUID":       reflect.TypeOf(uuid.UUID{}),
		"decimal.Decimal": reflect.TypeOf(decimal.Decimal{}),
	}
)

// Register adds t under name, for use as a create/registry-test --type
// locator. Intended to be called from an embedding binary's init function.
func Register(name string, t reflect.Type) {
	mu.Lock()
	defer mu.Unlock()
	types[name] = t
}

// Lookup resolves name to a registered reflect.Type.
func Lookup(name string) (reflect.Type, error) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := types[name]
	if !ok {
		return nil, fmt.Errorf("typeregistry: no type registered under %q", name)
	}
	return t, nil
}
