// Package sentence splits article text into sentences and filters out
// bylines and other boilerplate before they reach a summary.
package sentence

import (
	"strings"
	"unicode/utf8"
)

// DefaultTerminator ends a sentence in the article bodies we scrape.
const DefaultTerminator = "."

// DefaultMinRunes is the length a sentence has to exceed to be kept.
const DefaultMinRunes = 30

// DefaultBlacklist marks reporter bylines, contact lines and copyright footers.
var DefaultBlacklist = []string{"기자", "이메일", "ⓒ"}

// Split cuts text on every occurrence of terminator and returns the
// non-empty, trimmed pieces in source order with the terminator put back.
// An empty terminator yields the whole trimmed text as one sentence.
func Split(text, terminator string) []string {
	if terminator == "" {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}

	parts := strings.Split(text, terminator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p+terminator)
	}
	return out
}

// Filter decides whether a candidate sentence is narrative text worth
// putting into a summary.
type Filter struct {
	MinRunes  int
	Blacklist []string
}

// DefaultFilter returns the filter used for Korean news bodies.
func DefaultFilter() Filter {
	return Filter{
		MinRunes:  DefaultMinRunes,
		Blacklist: append([]string(nil), DefaultBlacklist...),
	}
}

// Accept reports whether s is longer than MinRunes characters and contains
// none of the blacklisted substrings.
func (f Filter) Accept(s string) bool {
	if utf8.RuneCountInString(s) <= f.MinRunes {
		return false
	}
	for _, b := range f.Blacklist {
		if b != "" && strings.Contains(s, b) {
			return false
		}
	}
	return true
}

// Select splits text and returns at most max accepted sentences, stopping
// at the first max matches. max <= 0 means no cap.
func Select(text, terminator string, f Filter, max int) []string {
	var out []string
	for _, s := range Split(text, terminator) {
		if !f.Accept(s) {
			continue
		}
		out = append(out, s)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
