// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Command avrogo is the thin CLI front-end over the avrogo libraries:
// create, generate, registry-get, and registry-test. The core packages
// (schema, typedesc, codec, schemabuilder) never import this one; it only
// consumes their public entrypoints.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/linkedin/avrogo/cmd/avrogo/internal/programerror"
)

func main() {
	root := &cobra.Command{
		Use:           "avrogo",
		Short:         "avrogo is a schema/codec toolkit for the avrogo Go Avro library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCreateCommand(),
		newGenerateCommand(),
		newRegistryGetCommand(),
		newRegistryTestCommand(),
	)
	if err := root.Execute(); err != nil {
		pe, ok := err.(*programerror.ProgramError)
		if !ok {
			pe = programerror.Wrap("avrogo", err)
		}
		pe.Exit()
	}
	os.Exit(0)
}
