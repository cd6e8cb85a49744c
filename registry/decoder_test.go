// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/schema"
)

type fakeClient struct {
	mu     sync.Mutex
	docs   map[int]string
	lookup int
}

func (f *fakeClient) GetSchemaByID(ctx context.Context, id int) (string, error) {
	f.mu.Lock()
	f.lookup++
	f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return "", fmt.Errorf("fakeClient: no schema registered for id %d", id)
	}
	return doc, nil
}

func (f *fakeClient) GetSchemaByVersion(ctx context.Context, subject string, version int) (int, string, error) {
	return 0, "", fmt.Errorf("not implemented")
}

func (f *fakeClient) GetLatestSchema(ctx context.Context, subject string) (int, string, error) {
	return 0, "", fmt.Errorf("not implemented")
}

func (f *fakeClient) RegisterSchema(ctx context.Context, subject string, doc string) (int, error) {
	return 0, fmt.Errorf("not implemented")
}

func TestCachingDecoderDecodesFramedPayload(t *testing.T) {
	client := &fakeClient{docs: map[int]string{1: `"string"`}}
	builder := codec.NewBuilder()
	d := NewCachingDecoder(client, builder)

	enc, err := codec.BuildBinaryEncoder[string](builder, mustCompile(t, builder, `"string"`))
	if err != nil {
		t.Fatal(err)
	}
	payload, err := enc(nil, "hello")
	if err != nil {
		t.Fatal(err)
	}
	wire := Frame(1, payload)

	val, rest, err := d.Decode(context.Background(), wire)
	if err != nil {
		t.Fatal(err)
	}
	if val != "hello" {
		t.Errorf("GOT: %v; WANT: hello", val)
	}
	if len(rest) != 0 {
		t.Errorf("GOT leftover bytes: %v", rest)
	}
}

func TestCachingDecoderCachesCompiledDecoderPerSchemaID(t *testing.T) {
	client := &fakeClient{docs: map[int]string{1: `"long"`}}
	builder := codec.NewBuilder()
	d := NewCachingDecoder(client, builder)

	enc, err := codec.BuildBinaryEncoder[int64](builder, mustCompile(t, builder, `"long"`))
	if err != nil {
		t.Fatal(err)
	}
	payload, err := enc(nil, int64(5))
	if err != nil {
		t.Fatal(err)
	}
	wire := Frame(1, payload)

	for i := 0; i < 5; i++ {
		if _, _, err := d.Decode(context.Background(), wire); err != nil {
			t.Fatal(err)
		}
	}
	if client.lookup != 1 {
		t.Errorf("GOT: %d schema lookups; WANT: 1 (subsequent decodes should hit the cache)", client.lookup)
	}
}

func TestCachingDecoderUnknownSchemaIDFails(t *testing.T) {
	client := &fakeClient{docs: map[int]string{}}
	builder := codec.NewBuilder()
	d := NewCachingDecoder(client, builder)

	wire := Frame(404, []byte{0x00})
	if _, _, err := d.Decode(context.Background(), wire); err == nil {
		t.Fatal("expected an error for an unregistered schema id")
	}
}

func mustCompile(t *testing.T, b *codec.Builder, doc string) schema.Schema {
	t.Helper()
	s, err := b.Compile(doc)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
