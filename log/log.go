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

// Package log provides the logging facade used throughout leakrun. The
// default logger writes leveled output to stderr via logrus; callers
// embedding leakrun as a library may install their own implementation
// with SetLogger.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Logger is the minimal leveled logging interface leakrun writes to.
type Logger interface {
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

var logger Logger = defaultLogger()

// SetLogger replaces the package level logger.
func SetLogger(l Logger) {
	logger = l
}

// Init configures the default logrus logger with the given level and,
// when file is non-empty, mirrors every entry to that file in addition
// to stderr.
func Init(level, file string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	l := defaultLogger()
	l.SetLevel(lvl)
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		l.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	logger = l
	return nil
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: !isatty.IsTerminal(os.Stderr.Fd()),
		FullTimestamp: true,
	})
	return l
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}
