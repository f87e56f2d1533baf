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

// Package config loads process-wide settings for leakrun. Settings come
// from an optional .leakrun.yaml file (working directory or home
// directory) and may be overridden through LEAKRUN_* environment
// variables, e.g. LEAKRUN_SCANNER_PATH.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const envPrefix = "LEAKRUN"

// Settings holds the resolved configuration for one process.
type Settings struct {
	// ScannerPath is the gitleaks binary invoked for every scan.
	ScannerPath string
	// ReportPath is the report destination used when -rp is not supplied.
	ReportPath string
	// ReportFormat is the serialization used for successful reports,
	// "json" or "sarif".
	ReportFormat string
	// IgnorePaths holds glob patterns; findings in matching files are
	// dropped from the normalized report.
	IgnorePaths []string
	LogLevel    string
	LogFile     string
}

// Load resolves settings from defaults, the optional config file and the
// environment, in increasing order of precedence.
func Load() (Settings, error) {
	v := viper.New()
	v.SetDefault("scanner.path", "gitleaks")
	v.SetDefault("report.path", "output.json")
	v.SetDefault("report.format", "json")
	v.SetDefault("report.ignore", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetConfigName(".leakrun")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return Settings{
		ScannerPath:  v.GetString("scanner.path"),
		ReportPath:   v.GetString("report.path"),
		ReportFormat: v.GetString("report.format"),
		IgnorePaths:  v.GetStringSlice("report.ignore"),
		LogLevel:     v.GetString("log.level"),
		LogFile:      v.GetString("log.file"),
	}, nil
}
