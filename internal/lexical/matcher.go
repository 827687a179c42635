// Package lexical matches free-text queries against the Tamil phrasings of
// the corpus, first by exact normalized key and then by fuzzy ratio.
package lexical

import (
	"github.com/wgomg/aura/internal/corpus"
)

const DefaultThreshold = 85.0

type Method string

const (
	MethodExact Method = "exact"
	MethodFuzzy Method = "fuzzy"
)

type Result struct {
	Index  int
	Score  float64
	Method Method
}

type entry struct {
	key   []rune
	index int
}

type Matcher struct {
	entries   []entry
	exact     map[string]int
	threshold float64
}

// NewMatcher indexes the Tamil phrase of every record that has one. A fuzzy
// candidate is accepted only when its score is strictly above threshold.
func NewMatcher(c *corpus.Corpus, threshold float64) *Matcher {
	m := &Matcher{
		exact:     make(map[string]int),
		threshold: threshold,
	}

	for i := 0; i < c.Len(); i++ {
		tamil := c.Tamil(i)
		if tamil == "" {
			continue
		}
		key := Normalize(tamil)
		if key == "" {
			continue
		}
		m.entries = append(m.entries, entry{key: []rune(key), index: i})
		if _, seen := m.exact[key]; !seen {
			m.exact[key] = i
		}
	}

	return m
}

func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Size is the number of indexed Tamil keys.
func (m *Matcher) Size() int {
	return len(m.entries)
}

func (m *Matcher) Match(query string) (Result, bool) {
	key := Normalize(query)
	if key == "" || len(m.entries) == 0 {
		return Result{}, false
	}

	if idx, ok := m.exact[key]; ok {
		return Result{Index: idx, Score: 100, Method: MethodExact}, true
	}

	best := Result{Index: -1, Score: -1, Method: MethodFuzzy}
	q := []rune(key)
	for _, e := range m.entries {
		score := ratioRunes(q, e.key)
		if score > best.Score {
			best.Score = score
			best.Index = e.index
		}
	}

	if best.Score > m.threshold {
		return best, true
	}
	return Result{}, false
}
