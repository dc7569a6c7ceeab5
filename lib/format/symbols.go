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
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/value"
	"github.com/fatih/color"
)

var alert = color.New(color.FgRed)

// Symbols defines the formatting builtins justify and ansify_if on top
// of parent.
func Symbols(parent scope.Scope) *scope.SymbolScope {
	syms := scope.NewSymbolScope(parent)
	syms.Define("justify", justifyFn)
	syms.Define("ansify_if", ansifyIf)
	return syms
}

// justifyFn renders its first argument and justifies it:
// justify(v, min, max, right).
func justifyFn(s scope.Scope) (value.Value, error) {
	args := scope.Args(s)
	if len(args) == 0 {
		return value.Null, value.Errorf("justify: expected an argument")
	}
	rendered := args[0].AsString()
	var minWidth, maxWidth int
	right := true
	if len(args) > 1 {
		n, err := args[1].AsInt()
		if err != nil {
			return value.Null, err
		}
		minWidth = int(n)
	}
	if len(args) > 2 {
		n, err := args[2].AsInt()
		if err != nil {
			return value.Null, err
		}
		maxWidth = int(n)
	}
	if len(args) > 3 {
		right = args[3].Truth()
	}
	return value.Str(Justify(rendered, minWidth, maxWidth, right, TruncateTrailing, 0)), nil
}

// ansifyIf colourises its first argument when the second is true.
func ansifyIf(s scope.Scope) (value.Value, error) {
	args := scope.Args(s)
	if len(args) == 0 {
		return value.Null, value.Errorf("ansify_if: expected an argument")
	}
	rendered := args[0].AsString()
	if len(args) > 1 && args[1].Truth() {
		rendered = alert.Sprint(rendered)
	}
	return value.Str(rendered), nil
}
