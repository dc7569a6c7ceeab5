// Package regex bundles several regexes into one matcher.
package regex

import "regexp"

type Regexes []*regexp.Regexp

func (rxs *Regexes) Add(r *regexp.Regexp) {
	*rxs = append(*rxs, r)
}

func (rxs Regexes) MatchString(s string) bool {
	for _, r := range rxs {
		if r.MatchString(s) {
			return true
		}
	}
	return false
}
