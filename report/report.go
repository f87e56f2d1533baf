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

// Package report normalizes scanner outcomes, successful and failed,
// into a single structured document serialized to the report path and
// standard output.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// failurePrefix starts every normalized error message.
const failurePrefix = "Gitleaks scan failed: "

// FailureExitCode is the normalized exit code reported for validation
// and scan failures, regardless of the scanner's own exit code.
const FailureExitCode = 2

// Finding is one normalized scanner finding.
type Finding struct {
	Filename    string `json:"filename" jsonschema:"title=Filename,description=File the secret was found in"`
	LineRange   string `json:"line_range" jsonschema:"title=Line Range,description=Start and end line of the match"`
	Description string `json:"description" jsonschema:"title=Description,description=Rule description reported by the scanner"`
	RuleID      string `json:"rule_id,omitempty" jsonschema:"title=Rule ID,description=Scanner rule that produced the finding"`
}

// Document is the normalized result of one scan invocation. It is
// created once per invocation, serialized, and discarded.
type Document struct {
	ExitCode     int       `json:"exit_code" jsonschema:"title=Exit Code,description=Normalized exit code of the invocation"`
	ErrorMessage string    `json:"error_message,omitempty" jsonschema:"title=Error Message,description=Set when the invocation failed"`
	Findings     []Finding `json:"findings,omitempty" jsonschema:"title=Findings,description=Normalized scanner findings"`
}

// NewFailure builds the document for a failed validation or scan. The
// message is prefixed with the common failure prefix.
func NewFailure(msg string) Document {
	return Document{
		ExitCode:     FailureExitCode,
		ErrorMessage: failurePrefix + msg,
	}
}

// NewSuccess builds the document for a completed scan.
func NewSuccess(findings []Finding) Document {
	return Document{Findings: findings}
}

// Schema returns the JSON schema describing the document.
func (Document) Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Document{})
}

// Encode renders the document as indented JSON with a trailing newline.
func (d Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile serializes the document to path, creating missing parent
// directories.
func (d Document) WriteFile(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return nil
}
