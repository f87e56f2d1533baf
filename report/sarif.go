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

package report

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/owenrumney/go-sarif/sarif"
)

const (
	sarifToolName = "gitleaks"
	sarifToolURI  = "https://github.com/zricethezav/gitleaks"
)

// WriteSarif serializes the document's findings as a SARIF 2.1.0 log at
// path, creating missing parent directories.
func (d Document) WriteSarif(path string) error {
	rep, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating sarif report: %w", err)
	}

	run := sarif.NewRun(sarifToolName, sarifToolURI)
	seen := map[string]bool{}
	for _, finding := range d.Findings {
		ruleID := finding.RuleID
		if ruleID == "" {
			ruleID = "secret-detected"
		}
		if !seen[ruleID] {
			run.AddRule(ruleID).WithDescription(finding.Description)
			seen[ruleID] = true
		}
		run.AddResult(ruleID).
			WithLevel("error").
			WithMessage(finding.Description).
			WithLocationDetails(finding.Filename, finding.startLine(), 1)
	}
	rep.AddRun(run)

	if err := ensureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sarif file: %w", err)
	}
	defer f.Close()

	if err := rep.PrettyWrite(f); err != nil {
		return fmt.Errorf("writing sarif report: %w", err)
	}
	return nil
}

// startLine parses the first line number out of the "start-end" range.
func (f Finding) startLine() int {
	start, _, _ := strings.Cut(f.LineRange, "-")
	n, err := strconv.Atoi(start)
	if err != nil {
		return 1
	}
	return n
}
