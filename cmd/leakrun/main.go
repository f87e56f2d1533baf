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

// Command leakrun validates a gitleaks invocation, runs the scanner and
// normalizes its outcome into a structured report.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/leakrun/leakrun"
	"github.com/leakrun/leakrun/config"
	"github.com/leakrun/leakrun/log"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Errorf("loading configuration: %v", err)
		os.Exit(leakrun.ExitLaunchFailure)
	}

	if err := log.Init(settings.LogLevel, settings.LogFile); err != nil {
		log.Errorf("configuring logger: %v", err)
		os.Exit(leakrun.ExitLaunchFailure)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := leakrun.Run(ctx, os.Args[1:], settings)
	cancel()
	os.Exit(code)
}
