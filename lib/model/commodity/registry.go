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

package commodity

import (
	"fmt"
	"sync"
	"unicode"
)

// Registry is a thread-safe collection of interned commodities.
type Registry struct {
	index map[string]*Commodity
	mutex sync.RWMutex
}

// NewRegistry creates a new registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]*Commodity),
	}
}

// Get returns the commodity with the given name, creating it if needed.
func (reg *Registry) Get(name string) (*Commodity, error) {
	reg.mutex.RLock()
	res, ok := reg.index[name]
	reg.mutex.RUnlock()
	if ok {
		return res, nil
	}
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	// check if the commodity has been created in the meantime
	if res, ok = reg.index[name]; ok {
		return res, nil
	}
	if !isValidName(name) {
		return nil, fmt.Errorf("invalid commodity name %q", name)
	}
	res = &Commodity{name: name}
	reg.index[name] = res
	return res, nil
}

// MustGet returns the commodity with the given name and panics on an
// invalid name. Use only with literal names.
func (reg *Registry) MustGet(name string) *Commodity {
	c, err := reg.Get(name)
	if err != nil {
		panic(err)
	}
	return c
}

func isValidName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '$' || c == '€' || c == '£' || c == '_') {
			return false
		}
	}
	return true
}
