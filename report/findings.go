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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gobwas/glob"
	glreport "github.com/zricethezav/gitleaks/v8/report"

	"github.com/leakrun/leakrun/log"
)

// LoadScannerReport reads the report file gitleaks wrote and decodes it
// with the scanner's own types. A missing or empty file yields no
// findings.
func LoadScannerReport(path string) ([]glreport.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("scanner wrote no report to %s", path)
			return nil, nil
		}
		return nil, fmt.Errorf("reading scanner report: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var findings []glreport.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("decoding scanner report: %w", err)
	}
	return findings, nil
}

// Normalize converts raw gitleaks findings into their compact report
// form, dropping any whose filename matches an ignore pattern.
func Normalize(raw []glreport.Finding, ignore []glob.Glob) []Finding {
	findings := []Finding{}
	for _, gf := range raw {
		if matchesAny(gf.File, ignore) {
			log.Debugf("ignoring finding in %s", gf.File)
			continue
		}
		findings = append(findings, Finding{
			Filename:    gf.File,
			LineRange:   fmt.Sprintf("%d-%d", gf.StartLine, gf.EndLine),
			Description: gf.Description,
			RuleID:      strings.ToLower(gf.RuleID),
		})
	}
	return findings
}

// CompileIgnorePatterns compiles configured glob patterns, skipping any
// that fail to compile.
func CompileIgnorePatterns(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			log.Warnf("skipping invalid ignore pattern %q: %v", pattern, err)
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

func matchesAny(path string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// FromScannerStderr builds the failure document for a scanner run that
// exited with an error. Gitleaks reports unknown passthrough flags as
// "unknown flag: X"; that line is rewritten into a stable message so
// callers are not coupled to the scanner's exact wording.
func FromScannerStderr(stderr string) Document {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = "no error message captured"
	}
	if idx := strings.Index(msg, "unknown flag: "); idx >= 0 {
		name := msg[idx+len("unknown flag: "):]
		if nl := strings.IndexByte(name, '\n'); nl >= 0 {
			name = name[:nl]
		}
		msg = fmt.Sprintf("unknown argument '%s'", strings.TrimSpace(name))
	}
	return NewFailure(msg)
}
