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

// Package prices implements the commodity price database consulted for
// historical valuations.
package prices

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// DB holds dated prices per commodity.
type DB struct {
	entries map[*commodity.Commodity][]entry
}

type entry struct {
	date  time.Time
	price amount.Amount
}

// New creates an empty price database.
func New() *DB {
	return &DB{entries: make(map[*commodity.Commodity][]entry)}
}

// Add inserts a price.
func (db *DB) Add(c *commodity.Commodity, date time.Time, price amount.Amount) {
	es := append(db.entries[c], entry{date: date, price: price})
	sort.SliceStable(es, func(i, j int) bool {
		return es[i].date.Before(es[j].date)
	})
	db.entries[c] = es
}

// AddJournalPrices inserts the price directives of the journal.
func (db *DB) AddJournalPrices(j *journal.Journal) {
	for _, p := range j.Prices {
		db.Add(p.Commodity, p.Date, p.Price)
	}
}

// ValueAt returns the latest price of c at or before t.
func (db *DB) ValueAt(c *commodity.Commodity, t time.Time) (amount.Amount, bool) {
	es := db.entries[c]
	for i := len(es) - 1; i >= 0; i-- {
		if !es[i].date.After(t) {
			return es[i].price, true
		}
	}
	return amount.Amount{}, false
}

// fileEntry is one price in the YAML price database.
type fileEntry struct {
	Date      string `yaml:"date"`
	Commodity string `yaml:"commodity"`
	Price     string `yaml:"price"`
	Target    string `yaml:"target"`
}

// LoadFile reads a YAML price database, e.g. the file named by the
// LEDGER_PRICE_DB environment variable.
func (db *DB) LoadFile(path string, reg *commodity.Registry) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	var es []fileEntry
	if err := dec.Decode(&es); err != nil {
		return fmt.Errorf("invalid price db %s: %w", path, err)
	}
	for _, e := range es {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return fmt.Errorf("invalid price db %s: %w", path, err)
		}
		c, err := reg.Get(e.Commodity)
		if err != nil {
			return fmt.Errorf("invalid price db %s: %w", path, err)
		}
		n, err := decimal.NewFromString(e.Price)
		if err != nil {
			return fmt.Errorf("invalid price db %s: %w", path, err)
		}
		target, err := reg.Get(e.Target)
		if err != nil {
			return fmt.Errorf("invalid price db %s: %w", path, err)
		}
		target.UpdatePrecision(int32(-n.Exponent()))
		db.Add(c, d, amount.New(n, target))
	}
	return nil
}
