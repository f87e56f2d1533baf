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

// Package leakrun wires argument validation, scanner invocation and
// result normalization into the single validate-then-run cycle
// performed for every CLI invocation.
package leakrun

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/leakrun/leakrun/config"
	"github.com/leakrun/leakrun/gitleaks"
	"github.com/leakrun/leakrun/invocation"
	"github.com/leakrun/leakrun/log"
	"github.com/leakrun/leakrun/report"
)

// Exit statuses of the leakrun process.
const (
	ExitSuccess = 0
	// ExitLaunchFailure is used when the scanner process could not be
	// started at all. Launch failures are never normalized into the
	// report document.
	ExitLaunchFailure = 1
	// ExitFailure is the normalized status for validation and scan
	// failures.
	ExitFailure = report.FailureExitCode
)

// Run performs one validate-then-run cycle for the given raw command
// line tokens and returns the process exit code. Handled failures are
// reported both on stdout and at the report path; exactly one error is
// reported per invocation.
func Run(ctx context.Context, args []string, settings config.Settings) int {
	req, err := invocation.Parse(args,
		invocation.WithDefaultReportPath(settings.ReportPath),
		invocation.WithDefaultFormat(settings.ReportFormat),
	)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stdout, invocation.UsageText)
			return ExitSuccess
		}

		var verr *invocation.Error
		if errors.As(err, &verr) {
			log.Debugf("validation failed (%s): %s", verr.Kind, verr.Message)
		}
		emit(report.NewFailure(err.Error()),
			invocation.ReportPathFromArgs(args, settings.ReportPath), invocation.FormatJSON)
		return ExitFailure
	}

	runner := gitleaks.NewRunner(gitleaks.WithBinaryPath(settings.ScannerPath))
	result, err := runner.Run(ctx, req)
	if err != nil {
		log.Errorf("%v", err)
		return ExitLaunchFailure
	}

	if !result.Ok() {
		log.Warnf("scanner exited with code %d", result.ExitCode)
		emit(report.FromScannerStderr(result.Stderr), req.ReportPath(), invocation.FormatJSON)
		return ExitFailure
	}

	if result.ExitCode == gitleaks.ExitLeaksFound {
		log.Warnf("scanner detected findings, processing output")
	} else {
		log.Infof("scan completed with no leaks")
	}

	raw, err := report.LoadScannerReport(req.ReportPath())
	if err != nil {
		emit(report.NewFailure(err.Error()), req.ReportPath(), invocation.FormatJSON)
		return ExitFailure
	}

	findings := report.Normalize(raw, report.CompileIgnorePatterns(settings.IgnorePaths))
	emit(report.NewSuccess(findings), req.ReportPath(), req.Format())
	return ExitSuccess
}

// emit echoes the document on stdout and serializes it to the report
// path in the requested format. Failure documents are always JSON.
func emit(doc report.Document, path, format string) {
	if data, err := doc.Encode(); err == nil {
		os.Stdout.Write(data)
	}

	var err error
	if format == invocation.FormatSARIF {
		err = doc.WriteSarif(path)
	} else {
		err = doc.WriteFile(path)
	}
	if err != nil {
		log.Errorf("writing report to %s: %v", path, err)
	}
}
