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
	"sync"

	"github.com/drewr/ledger/lib/common/compare"
)

// Commodity is the unit of measure attached to an amount. Instances are
// interned in a Registry, so identity comparison is sufficient.
type Commodity struct {
	name string

	mutex     sync.RWMutex
	precision int32
}

// Name returns the name of the commodity.
func (c *Commodity) Name() string {
	return c.name
}

func (c *Commodity) String() string {
	return c.name
}

// Precision returns the display precision observed for this commodity.
func (c *Commodity) Precision() int32 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.precision
}

// UpdatePrecision widens the display precision to at least p.
func (c *Commodity) UpdatePrecision(p int32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if p > c.precision {
		c.precision = p
	}
}

// Compare orders commodities by name.
func Compare(c1, c2 *Commodity) compare.Order {
	switch {
	case c1 == c2:
		return compare.Equal
	case c1 == nil:
		return compare.Smaller
	case c2 == nil:
		return compare.Greater
	}
	return compare.Ordered(c1.name, c2.name)
}
