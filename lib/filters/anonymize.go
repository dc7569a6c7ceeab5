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

package filters

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"

	"github.com/drewr/ledger/lib/journal"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{40}$`)

// AnonymizePosts replaces the payee and the account name of each
// posting with its SHA-1 hex digest, building a parallel anonymised
// account tree in the journal, and clears notes. Already-anonymised
// postings pass through unchanged, so applying the stage twice yields
// the same output as once.
type AnonymizePosts struct {
	nextHandler
	Journal *journal.Journal

	temps temps
	xacts map[*journal.Xact]*journal.Xact
}

// NewAnonymizePosts creates the stage.
func NewAnonymizePosts(next PostHandler, j *journal.Journal) *AnonymizePosts {
	return &AnonymizePosts{
		nextHandler: nextHandler{next},
		Journal:     j,
		xacts:       make(map[*journal.Xact]*journal.Xact),
	}
}

func (a *AnonymizePosts) Push(p *journal.Posting) error {
	if hexDigest.MatchString(p.Payee()) && hexDigest.MatchString(p.ReportedAccount().FullName()) {
		return a.forward(p)
	}
	xact, ok := a.xacts[p.Xact]
	if !ok {
		xact = a.temps.newXact(p.Xact.Date, digest(p.Payee()))
		xact.State = p.Xact.State
		a.xacts[p.Xact] = xact
	}
	acct := a.Journal.FindAccount(digest(p.ReportedAccount().FullName()), true)
	acct.Temp = true
	clone := a.temps.copyPost(p, xact)
	clone.Account = acct
	clone.Note = ""
	return a.forward(clone)
}

func digest(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
