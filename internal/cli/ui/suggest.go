package ui

import (
	"path"
	"sort"
	"strings"
)

// MaxSuggestions caps the names returned by Suggest.
const MaxSuggestions = 3

// Suggest returns up to MaxSuggestions names close to name, closest first.
// Names are compared case-insensitively, both whole and by their last path
// element, so "logo.png" finds "images/logo.png".
//
//	Suggest("confg.xml", []string{"config.xml", "data/config.xml", "app.yml"})
//	// ["config.xml", "data/config.xml"]
func Suggest(name string, names []string) []string {
	target := strings.ToLower(name)
	limit := maxDistance(target)

	type match struct {
		name     string
		distance int
	}
	var matches []match
	for _, candidate := range names {
		lower := strings.ToLower(candidate)
		if lower == target {
			continue
		}
		d := Distance(target, lower)
		if base := path.Base(lower); base != lower {
			if bd := Distance(target, base); bd < d {
				d = bd
			}
		}
		if d <= limit {
			matches = append(matches, match{name: candidate, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, MaxSuggestions)
	for i := 0; i < len(matches) && i < MaxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// maxDistance allows one edit per three characters, and at least two.
func maxDistance(s string) int {
	if n := len(s) / 3; n > 2 {
		return n
	}
	return 2
}

// Distance returns the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
