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

// Package invocation validates raw command line tokens into an immutable
// scan request. Recognized options may appear in any order but must
// precede the command token; every token after the command and
// subcommand is forwarded to the scanner verbatim.
package invocation

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// CommandLiteral is the only accepted command token.
const CommandLiteral = "gitleaks"

// Report formats accepted by the -f/--format option.
const (
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// UsageText is printed for -h/--help.
const UsageText = `usage: leakrun -s|--source <path> [-rp|--report-path <path>] [-f|--format <format>] gitleaks <subcommand> [scanner flags...]

Run the gitleaks secret scanner and normalize its output into a structured report.

Options:
  -s, --source <path>        source directory or file to scan
  -rp, --report-path <path>  path the normalized report is written to (default "output.json")
  -f, --format <format>      report format, json or sarif (default "json")
  -h, --help                 print this help and exit

Every token after the gitleaks command and its subcommand is forwarded to the
scanner unmodified, e.g.:

  leakrun -s ./repo -rp out.json gitleaks detect --no-git --verbose`

const usageHint = `please provide the arguments like this:
  leakrun -s <source path> -rp <report path> gitleaks <subcommand> [scanner flags...]`

const (
	msgMissingSource = "please provide a source folder"
	msgInvalidSource = "please provide a valid source folder"
)

// recognized maps option names (without dashes) consumed by the parser
// to whether they take a value.
var recognized = map[string]bool{
	"s": true, "source": true,
	"rp": true, "report-path": true,
	"f": true, "format": true,
}

// Request describes one validated scan invocation. It is immutable once
// built; Parse is the only way to obtain one.
type Request struct {
	source     string
	reportPath string
	format     string
	subcommand string
	extraArgs  []string
}

// Source returns the path the scanner is pointed at.
func (r *Request) Source() string { return r.source }

// ReportPath returns the destination of the normalized report.
func (r *Request) ReportPath() string { return r.reportPath }

// Format returns the report serialization format.
func (r *Request) Format() string { return r.format }

// Subcommand returns the scanner subcommand, e.g. "detect".
func (r *Request) Subcommand() string { return r.subcommand }

// ExtraArgs returns a copy of the passthrough flags.
func (r *Request) ExtraArgs() []string {
	out := make([]string, len(r.extraArgs))
	copy(out, r.extraArgs)
	return out
}

// Option adjusts parser defaults.
type Option func(*parser)

// WithDefaultReportPath sets the report path used when -rp is omitted.
func WithDefaultReportPath(path string) Option {
	return func(p *parser) {
		if path != "" {
			p.defaultReportPath = path
		}
	}
}

// WithDefaultFormat sets the report format used when -f is omitted.
func WithDefaultFormat(format string) Option {
	return func(p *parser) {
		if format != "" {
			p.defaultFormat = format
		}
	}
}

type parser struct {
	defaultReportPath string
	defaultFormat     string
}

// Parse validates raw command line tokens and builds the Request.
// Failures are returned as *Error; the first violated rule wins and the
// scanner is never started. A help request is reported as flag.ErrHelp.
func Parse(args []string, opts ...Option) (*Request, error) {
	p := &parser{defaultReportPath: "output.json", defaultFormat: FormatJSON}
	for _, opt := range opts {
		opt(p)
	}

	fs := flag.NewFlagSet("leakrun", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	var source, reportPath, format string
	fs.StringVar(&source, "s", "", "source directory or file to scan")
	fs.StringVar(&source, "source", "", "source directory or file to scan")
	fs.StringVar(&reportPath, "rp", "", "path the normalized report is written to")
	fs.StringVar(&reportPath, "report-path", "", "path the normalized report is written to")
	fs.StringVar(&format, "f", "", "report format, json or sarif")
	fs.StringVar(&format, "format", "", "report format, json or sarif")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, flag.ErrHelp
		}
		// An unrecognized option aborts flag parsing before every value
		// is populated, but the missing and invalid source rules still
		// take precedence, so re-read the source from the raw tokens.
		src, found := sourceFromArgs(args)
		if !found || src == "" {
			return nil, NewError(KindMissingSource, msgMissingSource)
		}
		if _, verr := validSource(src); verr != nil {
			return nil, verr
		}
		tokens := unknownTokens(args)
		if len(tokens) == 0 {
			// A recognized option missing its value; the parse error
			// names the offending token.
			tokens = []string{err.Error()}
		}
		return nil, unrecognized(tokens)
	}

	if source == "" {
		return nil, NewError(KindMissingSource, msgMissingSource)
	}

	src, verr := validSource(source)
	if verr != nil {
		return nil, verr
	}

	rest := fs.Args()
	switch {
	case len(rest) == 0:
		return nil, unrecognized([]string{fmt.Sprintf("expected '%s <subcommand>'", CommandLiteral)})
	case rest[0] != CommandLiteral:
		return nil, unrecognized(rest)
	case len(rest) < 2:
		return nil, unrecognized([]string{fmt.Sprintf("expected a subcommand after '%s'", CommandLiteral)})
	}

	if format == "" {
		format = p.defaultFormat
	}
	if format != FormatJSON && format != FormatSARIF {
		return nil, unrecognized([]string{fmt.Sprintf("unsupported report format %q", format)})
	}

	if reportPath == "" {
		reportPath = p.defaultReportPath
	}
	if expanded, err := homedir.Expand(reportPath); err == nil {
		reportPath = expanded
	}

	return &Request{
		source:     src,
		reportPath: reportPath,
		format:     format,
		subcommand: rest[1],
		extraArgs:  append([]string(nil), rest[2:]...),
	}, nil
}

// ReportPathFromArgs extracts the report path option from raw tokens so
// that validation failures can still be written to the requested
// destination. Falls back to the supplied default; the result receives
// the same home directory expansion Parse applies.
func ReportPathFromArgs(args []string, fallback string) string {
	path := fallback
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			break
		}
		name, value, hasValue := splitOption(arg)
		if name != "rp" && name != "report-path" {
			if !hasValue && recognized[name] {
				i++
			}
			continue
		}
		if hasValue {
			path = value
		} else if i+1 < len(args) {
			path = args[i+1]
		}
		break
	}
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

func validSource(source string) (string, *Error) {
	expanded, err := homedir.Expand(source)
	if err != nil {
		return "", NewError(KindInvalidSource, msgInvalidSource)
	}
	if _, err := os.Stat(expanded); err != nil {
		return "", NewError(KindInvalidSource, msgInvalidSource)
	}
	return expanded, nil
}

func unrecognized(tokens []string) *Error {
	return NewError(KindUnrecognizedArguments,
		"unrecognized arguments: %s\n\n%s", strings.Join(tokens, " "), usageHint)
}

// sourceFromArgs re-reads the source option from the option region of
// args, i.e. before the first positional token. Flag parsing stops at
// the first unrecognized option and may never have reached it.
func sourceFromArgs(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			return "", false
		}
		name, value, hasValue := splitOption(arg)
		if name == "s" || name == "source" {
			if hasValue {
				return value, true
			}
			if i+1 < len(args) {
				return args[i+1], true
			}
			return "", true
		}
		if !hasValue && recognized[name] {
			i++
		}
	}
	return "", false
}

// unknownTokens returns the tail of args starting at the first option
// token the parser does not recognize.
func unknownTokens(args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			return nil
		}
		name, _, hasValue := splitOption(arg)
		if name == "h" || name == "help" {
			continue
		}
		if !recognized[name] {
			return args[i:]
		}
		if !hasValue {
			i++
		}
	}
	return nil
}

// splitOption strips leading dashes and separates an inline =value.
func splitOption(arg string) (name, value string, hasValue bool) {
	name = strings.TrimLeft(arg, "-")
	name, value, hasValue = strings.Cut(name, "=")
	return name, value, hasValue
}
