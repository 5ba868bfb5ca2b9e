package suspicion

import (
	"sync"

	"golang.org/x/text/cases"
)

// falsy values, compared after case folding
var falsy = map[string]struct{}{
	"false": {},
	"0":     {},
	"0.0":   {},
	"none":  {},
	"nil":   {},
	"null":  {},
}

// a Caser keeps state between calls, so goroutines take their own
var folders = sync.Pool{
	New: func() any { c := cases.Fold(); return &c },
}

func fold(s string) string {
	c := folders.Get().(*cases.Caser)
	out := c.String(s)
	folders.Put(c)
	return out
}

// Truthy reports whether a hypothesis value flags the row. Empty and the
// deny-listed tokens are false in any case; anything else, whitespace
// included, is true
func Truthy(v string) bool {
	if v == "" {
		return false
	}
	_, no := falsy[fold(v)]
	return !no
}
