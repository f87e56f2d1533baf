// Copyright 2025 The Leakrun Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package invocation

import "fmt"

// Kind classifies the failures that map onto the normalized report
// document. Validation kinds are detected before the scanner starts;
// KindScanFailed is only produced after the scanner process exits.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindMissingSource means the source option was not supplied.
	KindMissingSource
	// KindInvalidSource means the source path does not exist.
	KindInvalidSource
	// KindUnrecognizedArguments means the command or subcommand tokens
	// were missing or malformed, or a recognized option had a bad value.
	KindUnrecognizedArguments
	// KindScanFailed means the scanner itself reported an error.
	KindScanFailed
)

func (k Kind) String() string {
	switch k {
	case KindMissingSource:
		return "missing-source"
	case KindInvalidSource:
		return "invalid-source"
	case KindUnrecognizedArguments:
		return "unrecognized-arguments"
	case KindScanFailed:
		return "scan-failed"
	default:
		return "unknown"
	}
}

// Error is a validation or scan failure with a user-facing message. The
// message is what ends up in the report document's error_message field,
// minus the common failure prefix applied during serialization.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
