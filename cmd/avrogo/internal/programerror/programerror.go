// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package programerror is cmd/avrogo's user-facing error envelope: every
// inner error is wrapped in a ProgramError carrying an exit code, a
// message written to stderr, and the cause.
package programerror

import (
	"fmt"
	"os"
)

// ProgramError wraps an inner error with the exit code and stderr message
// a CLI command reports to its caller.
type ProgramError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ProgramError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProgramError) Unwrap() error { return e.Cause }

// Wrap builds a code=1 ProgramError around cause, prefixed with message.
func Wrap(message string, cause error) *ProgramError {
	return &ProgramError{Code: 1, Message: message, Cause: cause}
}

// Exit writes e's message to stderr and terminates the process with e's
// code. It never returns.
func (e *ProgramError) Exit() {
	fmt.Fprintln(os.Stderr, e.Error())
	os.Exit(e.Code)
}
