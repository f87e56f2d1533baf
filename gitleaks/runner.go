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

// Package gitleaks invokes the external gitleaks binary for a validated
// scan request and captures its outcome.
package gitleaks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"

	"github.com/leakrun/leakrun/invocation"
	"github.com/leakrun/leakrun/log"
)

// Exit codes reported by the gitleaks binary.
const (
	// ExitClean means the scan finished and found nothing.
	ExitClean = 0
	// ExitLeaksFound means the scan finished and detected secrets.
	ExitLeaksFound = 1
)

// Result captures the outcome of one scanner run.
type Result struct {
	// Cmd is the full argv the scanner was started with.
	Cmd      []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the scanner run itself succeeded. Gitleaks exits 1
// when leaks were found, which is a successful scan that produced
// findings rather than a failure of the scanner.
func (r Result) Ok() bool {
	return r.ExitCode == ExitClean || r.ExitCode == ExitLeaksFound
}

// Option configures a Runner.
type Option func(*Runner)

// WithBinaryPath overrides the scanner binary invoked by the runner.
func WithBinaryPath(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.binaryPath = path
		}
	}
}

// WithSilent suppresses the console copy of the scanner's output.
func WithSilent(silent bool) Option {
	return func(r *Runner) {
		r.silent = silent
	}
}

// WithGitDetection toggles the repository check that appends --no-git
// when a detect scan targets a plain directory.
func WithGitDetection(enabled bool) Option {
	return func(r *Runner) {
		r.gitDetection = enabled
	}
}

// Runner executes the scanner synchronously, one request per call.
type Runner struct {
	binaryPath   string
	silent       bool
	gitDetection bool
}

// NewRunner builds a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		binaryPath:   "gitleaks",
		gitDetection: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run starts the scanner for the given request and blocks until it
// exits. Stdout and stderr are captured and, unless the runner is
// silent, streamed to the console as the scanner produces them. The
// returned error is non-nil only when the process could not be launched
// or waited on; scanner failures are reported through Result.ExitCode
// and Result.Stderr.
func (r *Runner) Run(ctx context.Context, req *invocation.Request) (Result, error) {
	args := r.buildArgs(req)
	res := Result{Cmd: append([]string{r.binaryPath}, args...)}

	cmd := exec.CommandContext(ctx, r.binaryPath, args...)
	stdoutBuffer := bytes.Buffer{}
	stderrBuffer := bytes.Buffer{}
	stdoutWriters := []io.Writer{&stdoutBuffer}
	stderrWriters := []io.Writer{&stderrBuffer}
	if !r.silent {
		stdoutWriters = append(stdoutWriters, os.Stdout)
		stderrWriters = append(stderrWriters, os.Stderr)
	}

	cmd.Stdout = io.MultiWriter(stdoutWriters...)
	cmd.Stderr = io.MultiWriter(stderrWriters...)

	log.Infof("running %s", strings.Join(res.Cmd, " "))
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("launching %s: %w", r.binaryPath, err)
	}

	if err := cmd.Wait(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return res, fmt.Errorf("waiting for %s: %w", r.binaryPath, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	res.Stdout = stdoutBuffer.String()
	res.Stderr = stderrBuffer.String()
	return res, nil
}

// buildArgs concatenates the subcommand, the source and report options
// and the passthrough flags into the scanner argv.
func (r *Runner) buildArgs(req *invocation.Request) []string {
	args := []string{
		req.Subcommand(),
		"--source", req.Source(),
		"--report-path", req.ReportPath(),
	}

	extra := req.ExtraArgs()
	if r.gitDetection && req.Subcommand() == "detect" &&
		!containsFlag(extra, "--no-git") && !isGitRepository(req.Source()) {
		log.Infof("%s is not a git repository, appending --no-git", req.Source())
		args = append(args, "--no-git")
	}

	return append(args, extra...)
}

func containsFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name || strings.HasPrefix(arg, name+"=") {
			return true
		}
	}
	return false
}

// isGitRepository reports whether path is inside a git worktree.
func isGitRepository(path string) bool {
	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}
