// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metric

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseError reports a single line that failed the StatsD grammar. It never
// aborts parsing of the rest of a batch; callers log it and move on.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return errors.Wrapf(e.Err, "parse statsd line %q", e.Line).Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(line string, err error) *ParseError {
	return &ParseError{Line: line, Err: err}
}

var (
	errEmptyName    = errors.New("empty metric name")
	errMissingType  = errors.New("missing |type field")
	errUnknownType  = errors.New("unknown metric type")
	errBadValue     = errors.New("invalid value")
	errBadRate      = errors.New("invalid sample rate")
	errNegativeTime = errors.New("timer value must be non-negative")
)

// Parse parses one StatsD line:
//
//	line   := name ':' value '|' type ('|@' rate)?
//	name   := [^:]+           (non-empty, no ':')
//	type   := 'c' | 'g' | 's' | 'ms'
//	rate   := float in (0,1], optional, default 1.0
//
// A 'g' whose value literal begins with '+' or '-' is a relative change
// (KindGaugeDelta); any other 'g' is absolute (KindGauge).
func Parse(line string) (Sample, error) {
	name, rest, ok := strings.Cut(line, ":")
	if !ok || name == "" {
		return Sample{}, newParseError(line, errEmptyName)
	}

	valuePart, typePart, ok := strings.Cut(rest, "|")
	if !ok {
		return Sample{}, newParseError(line, errMissingType)
	}

	// typePart may itself carry a trailing "|@rate" segment.
	typeStr, rateStr, hasRate := strings.Cut(typePart, "|@")
	rate := 1.0
	if hasRate {
		r, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return Sample{}, newParseError(line, errors.Wrap(errBadRate, err.Error()))
		}
		if r <= 0 || r > 1 {
			return Sample{}, newParseError(line, errBadRate)
		}
		rate = r
	}

	switch typeStr {
	case "c":
		n, err := strconv.ParseInt(valuePart, 10, 64)
		if err != nil {
			return Sample{}, newParseError(line, errors.Wrap(errBadValue, err.Error()))
		}
		return Sample{Name: name, Kind: KindCounter, Count: n, SampleRate: rate}, nil

	case "g":
		if valuePart == "" {
			return Sample{}, newParseError(line, errBadValue)
		}
		v, err := strconv.ParseFloat(valuePart, 64)
		if err != nil {
			return Sample{}, newParseError(line, errors.Wrap(errBadValue, err.Error()))
		}
		if valuePart[0] == '+' || valuePart[0] == '-' {
			return Sample{Name: name, Kind: KindGaugeDelta, Delta: v}, nil
		}
		return Sample{Name: name, Kind: KindGauge, Value: v}, nil

	case "s":
		if valuePart == "" {
			return Sample{}, newParseError(line, errBadValue)
		}
		return Sample{Name: name, Kind: KindSet, Member: valuePart}, nil

	case "ms":
		v, err := strconv.ParseFloat(valuePart, 64)
		if err != nil {
			return Sample{}, newParseError(line, errors.Wrap(errBadValue, err.Error()))
		}
		if v < 0 {
			return Sample{}, newParseError(line, errNegativeTime)
		}
		return Sample{Name: name, Kind: KindTimer, Milliseconds: v}, nil

	default:
		return Sample{}, newParseError(line, errUnknownType)
	}
}

// SplitLines splits a request string (one UDP datagram or one TCP chunk's
// worth of complete lines) into individual StatsD lines, trimming
// whitespace and skipping blank lines silently.
func SplitLines(request string) []string {
	rawLines := strings.Split(request, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
