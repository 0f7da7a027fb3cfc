package session

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far a typo may be from a keyword and still be suggested.
const maxSuggestDistance = 3

// Catalog is the fixed set of machine keywords and item sizes.
type Catalog struct {
	Keywords []Keyword
	Sizes    []Size
	Initial  Keyword
}

// NewCatalog builds a catalog from raw strings. initial defaults to the first keyword.
func NewCatalog(keywords, sizes []string, initial string) (Catalog, error) {
	c := Catalog{}
	seen := map[Keyword]struct{}{}
	for _, raw := range keywords {
		k := Keyword(strings.TrimSpace(raw))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		c.Keywords = append(c.Keywords, k)
	}
	if len(c.Keywords) == 0 {
		return Catalog{}, fmt.Errorf("catalog: no machine keywords")
	}
	for _, raw := range sizes {
		s := Size(strings.TrimSpace(raw))
		if s == NoSize || c.HasSize(s) {
			continue
		}
		c.Sizes = append(c.Sizes, s)
	}
	c.Initial = c.Keywords[0]
	if initial = strings.TrimSpace(initial); initial != "" {
		k, err := c.Resolve(initial)
		if err != nil {
			return Catalog{}, fmt.Errorf("catalog: initial machine: %w", err)
		}
		c.Initial = k
	}
	return c, nil
}

// Contains reports whether k is a known keyword.
func (c Catalog) Contains(k Keyword) bool {
	for _, known := range c.Keywords {
		if known == k {
			return true
		}
	}
	return false
}

// HasSize reports whether s is one of the catalog sizes.
func (c Catalog) HasSize(s Size) bool {
	for _, known := range c.Sizes {
		if known == s {
			return true
		}
	}
	return false
}

// Resolve maps user input to a keyword, case-insensitively. Unknown input returns an
// *UnknownKeywordError with the nearest keyword as a suggestion.
func (c Catalog) Resolve(input string) (Keyword, error) {
	needle := strings.ToLower(strings.TrimSpace(input))
	for _, k := range c.Keywords {
		if strings.ToLower(string(k)) == needle {
			return k, nil
		}
	}
	uerr := &UnknownKeywordError{Input: input}
	best := maxSuggestDistance + 1
	for _, k := range c.Keywords {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(string(k)))
		if d < best {
			best = d
			uerr.Suggestion = k
		}
	}
	return "", uerr
}

// NextSize cycles through the catalog sizes, returning to NoSize after the last one.
func (c Catalog) NextSize(current Size) Size {
	if len(c.Sizes) == 0 {
		return NoSize
	}
	if current == NoSize {
		return c.Sizes[0]
	}
	for i, s := range c.Sizes {
		if s == current {
			if i+1 < len(c.Sizes) {
				return c.Sizes[i+1]
			}
			return NoSize
		}
	}
	return c.Sizes[0]
}
