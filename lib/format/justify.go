// Copyright 2022 Silvio Böhler
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

package format

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Elision selects how over-long strings are shortened.
type Elision int

const (
	// TruncateTrailing elides at the end: "abc..".
	TruncateTrailing Elision = iota
	// TruncateLeading elides at the start: "..xyz".
	TruncateLeading
	// TruncateMiddle elides in the middle: "ab..yz".
	TruncateMiddle
	// Abbreviate shortens colon-separated leading segments before
	// falling back to trailing truncation.
	Abbreviate
)

// Truncate shortens s to at most width code points using the given
// elision style. abbrevLen is the target segment length for
// Abbreviate.
func Truncate(s string, width int, style Elision, abbrevLen int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 2 {
		return string(runes[:width])
	}
	switch style {
	case TruncateLeading:
		return ".." + string(runes[len(runes)-(width-2):])
	case TruncateMiddle:
		keep := width - 2
		front := keep/2 + keep%2
		back := keep - front
		return string(runes[:front]) + ".." + string(runes[len(runes)-back:])
	case Abbreviate:
		if abbrevLen > 0 && strings.ContainsRune(s, ':') {
			if res, ok := abbreviate(s, width, abbrevLen); ok {
				return res
			}
		}
	}
	return string(runes[:width-2]) + ".."
}

// abbreviate shortens colon segments before the last one to abbrevLen,
// front to back, until the whole name fits.
func abbreviate(s string, width, abbrevLen int) (string, bool) {
	segments := strings.Split(s, ":")
	for i := 0; i < len(segments)-1; i++ {
		if length(strings.Join(segments, ":")) <= width {
			break
		}
		seg := []rune(segments[i])
		if len(seg) > abbrevLen {
			segments[i] = string(seg[:abbrevLen])
		}
	}
	res := strings.Join(segments, ":")
	if length(res) <= width {
		return res, true
	}
	// Even abbreviated it does not fit; give up and let the caller
	// truncate trailing.
	return "", false
}

func length(s string) int {
	return len([]rune(s))
}

// Justify pads s to at least minWidth and truncates it to at most
// maxWidth code points. A zero maxWidth means unbounded.
func Justify(s string, minWidth, maxWidth int, right bool, style Elision, abbrevLen int) string {
	if maxWidth > 0 {
		s = Truncate(s, maxWidth, style, abbrevLen)
	}
	if minWidth > 0 {
		if right {
			return runewidth.FillLeft(s, minWidth)
		}
		return runewidth.FillRight(s, minWidth)
	}
	return s
}
