// Copyright 2021 Silvio Böhler
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

package commands

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/multierr"
)

// withOutput runs f with a writer for the target path. An empty path
// writes to fallback; otherwise the file is replaced atomically once f
// has succeeded.
func withOutput(path string, fallback io.Writer, f func(io.Writer) error) (err error) {
	if path == "" {
		w := bufio.NewWriter(fallback)
		if err := f(w); err != nil {
			return err
		}
		return w.Flush()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "ledger-*")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(tmp)
	if err = f(w); err != nil {
		return multierr.Combine(err, tmp.Close(), os.Remove(tmp.Name()))
	}
	err = multierr.Combine(w.Flush(), tmp.Close())
	if err != nil {
		return multierr.Append(err, os.Remove(tmp.Name()))
	}
	return atomic.ReplaceFile(tmp.Name(), path)
}
