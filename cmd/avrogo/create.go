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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkedin/avrogo/cmd/avrogo/internal/programerror"
	"github.com/linkedin/avrogo/cmd/avrogo/internal/typeregistry"
	"github.com/linkedin/avrogo/schema"
	"github.com/linkedin/avrogo/schemabuilder"
)

// newCreateCommand prints the schema-builder's default schema for a
// host-type locator.
func newCreateCommand() *cobra.Command {
	var (
		typeName        string
		temporal        string
		nullableRefs    bool
		enumsAsIntegers bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "print the schema-builder's default schema for a registered Go type",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := typeregistry.Lookup(typeName)
			if err != nil {
				return programerror.Wrap("create", err)
			}

			behavior, err := parseTemporalBehavior(temporal)
			if err != nil {
				return programerror.Wrap("create", err)
			}

			b := schemabuilder.New(
				schemabuilder.WithTemporalBehavior(behavior),
				schemabuilder.WithNullableReferences(nullableRefs),
				schemabuilder.WithEnumsAsIntegers(enumsAsIntegers),
				schemabuilder.WithFieldTag("avro"),
			)
			s, err := b.SchemaOf(t)
			if err != nil {
				return programerror.Wrap(fmt.Sprintf("create: deriving schema for %s", typeName), err)
			}
			doc, err := schema.WriteJSON(s)
			if err != nil {
				return programerror.Wrap("create: rendering schema JSON", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "host-type locator (name registered in typeregistry)")
	cmd.Flags().StringVar(&temporal, "temporal", "iso8601", "temporal rendering: iso8601, epoch-millis, epoch-micros")
	cmd.Flags().BoolVar(&nullableRefs, "nullable-refs", false, "wrap reference-typed fields in Union(null, T)")
	cmd.Flags().BoolVar(&enumsAsIntegers, "enums-as-integers", false, "render untyped enums as plain int schemas")
	cmd.MarkFlagRequired("type")
	return cmd
}

func parseTemporalBehavior(s string) (schemabuilder.TemporalBehavior, error) {
	switch s {
	case "", "iso8601":
		return schemabuilder.ISO8601, nil
	case "epoch-millis":
		return schemabuilder.EpochMillis, nil
	case "epoch-micros":
		return schemabuilder.EpochMicros, nil
	default:
		return 0, fmt.Errorf("unrecognized --temporal value %q", s)
	}
}
