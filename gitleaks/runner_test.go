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

package gitleaks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leakrun/leakrun/invocation"
)

// writeStub writes an executable shell script standing in for the
// scanner binary.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scanner scripts require a unix shell")
	}

	path := filepath.Join(t.TempDir(), "gitleaks-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func parseRequest(t *testing.T, srcDir string, extra ...string) *invocation.Request {
	t.Helper()
	args := append([]string{"-s", srcDir, "-rp", filepath.Join(t.TempDir(), "out.json"), "gitleaks", "detect"}, extra...)
	req, err := invocation.Parse(args)
	require.NoError(t, err)
	return req
}

func TestRunnerCapturesOutputAndExitCode(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		wantCode   int
		wantOk     bool
		wantStdout string
		wantStderr string
	}{
		{
			name:       "clean scan",
			script:     "echo scanning\nexit 0\n",
			wantCode:   0,
			wantOk:     true,
			wantStdout: "scanning",
		},
		{
			name:     "leaks found is still a completed scan",
			script:   "exit 1\n",
			wantCode: 1,
			wantOk:   true,
		},
		{
			name:       "scanner failure",
			script:     "echo 'unknown flag: --jit' >&2\nexit 126\n",
			wantCode:   126,
			wantOk:     false,
			wantStderr: "unknown flag: --jit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := writeStub(t, tt.script)
			runner := NewRunner(WithBinaryPath(stub), WithSilent(true), WithGitDetection(false))

			res, err := runner.Run(context.Background(), parseRequest(t, t.TempDir()))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, res.ExitCode)
			assert.Equal(t, tt.wantOk, res.Ok())
			assert.Contains(t, res.Stdout, tt.wantStdout)
			assert.Contains(t, res.Stderr, tt.wantStderr)
			assert.Equal(t, stub, res.Cmd[0])
		})
	}
}

func TestRunnerLaunchFailure(t *testing.T) {
	runner := NewRunner(
		WithBinaryPath(filepath.Join(t.TempDir(), "does-not-exist")),
		WithSilent(true),
		WithGitDetection(false),
	)

	_, err := runner.Run(context.Background(), parseRequest(t, t.TempDir()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launching")
}

func TestRunnerArgumentOrder(t *testing.T) {
	stub := writeStub(t, `echo "$@"`+"\n")
	srcDir := t.TempDir()
	runner := NewRunner(WithBinaryPath(stub), WithSilent(true), WithGitDetection(false))

	res, err := runner.Run(context.Background(), parseRequest(t, srcDir, "--no-git", "--verbose"))
	require.NoError(t, err)

	argv := strings.Fields(res.Stdout)
	require.GreaterOrEqual(t, len(argv), 7)
	assert.Equal(t, "detect", argv[0])
	assert.Equal(t, "--source", argv[1])
	assert.Equal(t, srcDir, argv[2])
	assert.Equal(t, "--report-path", argv[3])
	assert.Equal(t, []string{"--no-git", "--verbose"}, argv[len(argv)-2:])
}

func TestRunnerGitDetection(t *testing.T) {
	stub := writeStub(t, `echo "$@"`+"\n")

	t.Run("plain directory gets --no-git", func(t *testing.T) {
		runner := NewRunner(WithBinaryPath(stub), WithSilent(true))
		res, err := runner.Run(context.Background(), parseRequest(t, t.TempDir()))
		require.NoError(t, err)
		assert.Contains(t, res.Stdout, "--no-git")
	})

	t.Run("git repository is scanned as-is", func(t *testing.T) {
		srcDir := t.TempDir()
		_, err := git.PlainInit(srcDir, false)
		require.NoError(t, err)

		runner := NewRunner(WithBinaryPath(stub), WithSilent(true))
		res, err := runner.Run(context.Background(), parseRequest(t, srcDir))
		require.NoError(t, err)
		assert.NotContains(t, res.Stdout, "--no-git")
	})

	t.Run("explicit no-git flag is not duplicated", func(t *testing.T) {
		runner := NewRunner(WithBinaryPath(stub), WithSilent(true))
		res, err := runner.Run(context.Background(), parseRequest(t, t.TempDir(), "--no-git"))
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(res.Stdout, "--no-git"))
	})

	t.Run("detection disabled", func(t *testing.T) {
		runner := NewRunner(WithBinaryPath(stub), WithSilent(true), WithGitDetection(false))
		res, err := runner.Run(context.Background(), parseRequest(t, t.TempDir()))
		require.NoError(t, err)
		assert.NotContains(t, res.Stdout, "--no-git")
	})
}
