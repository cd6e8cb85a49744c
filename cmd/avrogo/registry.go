// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkedin/avrogo/cmd/avrogo/internal/programerror"
	"github.com/linkedin/avrogo/cmd/avrogo/internal/typeregistry"
	"github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/registry"
)

// registryFlags are the schema-locator options shared by registry-get and
// registry-test: either --id, or --subject with an optional --version
// (latest when omitted).
type registryFlags struct {
	url     string
	id      int
	subject string
	version int
}

func (f *registryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "registry-url", "", "base URL of the schema registry")
	cmd.Flags().IntVar(&f.id, "id", 0, "schema id")
	cmd.Flags().StringVar(&f.subject, "subject", "", "registry subject")
	cmd.Flags().IntVar(&f.version, "version", 0, "subject version (latest when omitted)")
	cmd.MarkFlagRequired("registry-url")
}

// fetch resolves the locator against the registry and returns the raw
// schema document.
func (f *registryFlags) fetch(ctx context.Context) (string, error) {
	client := registry.NewHTTPClient(f.url, nil)
	switch {
	case f.id != 0:
		return client.GetSchemaByID(ctx, f.id)
	case f.subject != "" && f.version != 0:
		_, doc, err := client.GetSchemaByVersion(ctx, f.subject, f.version)
		return doc, err
	case f.subject != "":
		_, doc, err := client.GetLatestSchema(ctx, f.subject)
		return doc, err
	default:
		return "", fmt.Errorf("either --id or --subject is required")
	}
}

func newRegistryGetCommand() *cobra.Command {
	var flags registryFlags
	cmd := &cobra.Command{
		Use:   "registry-get",
		Short: "print a schema document fetched from the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := flags.fetch(cmd.Context())
			if err != nil {
				return programerror.Wrap("registry-get", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newRegistryTestCommand() *cobra.Command {
	var (
		flags    registryFlags
		typeName string
	)
	cmd := &cobra.Command{
		Use:   "registry-test",
		Short: "confirm a registered Go type is compatible with a registry schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := typeregistry.Lookup(typeName)
			if err != nil {
				return programerror.Wrap("registry-test", err)
			}
			doc, err := flags.fetch(cmd.Context())
			if err != nil {
				return programerror.Wrap("registry-test", err)
			}

			b := codec.NewBuilder()
			b.FieldTag = "avro"
			s, err := b.Compile(doc)
			if err != nil {
				return programerror.Wrap("registry-test: parsing schema", err)
			}
			if _, err := codec.NewCache(b).Get(s, t); err != nil {
				return programerror.Wrap(fmt.Sprintf("registry-test: %s is not compatible with the schema", typeName), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is compatible with the schema\n", typeName)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&typeName, "type", "", "host-type locator (name registered in typeregistry)")
	cmd.MarkFlagRequired("type")
	return cmd
}
