// Package corpus loads the fixed list of command records the matchers search.
// A Corpus is immutable once built; every accessor hands out deep copies.
package corpus

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed data/nlp_disaster.json
var embeddedCorpus []byte

var (
	ErrEmptyCorpus = errors.New("corpus contains no records")
	ErrNotFound    = errors.New("command not found")
)

type Corpus struct {
	records []CommandRecord
	byID    map[string]int
	source  string
}

// Load reads a JSON array of command records from path.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	c.source = path
	return c, nil
}

// Embedded returns the corpus compiled into the binary.
func Embedded() (*Corpus, error) {
	c, err := Parse(bytes.NewReader(embeddedCorpus))
	if err != nil {
		return nil, fmt.Errorf("load embedded corpus: %w", err)
	}
	c.source = "embedded"
	return c, nil
}

// Open loads path, or the embedded corpus when path is empty.
func Open(path string) (*Corpus, error) {
	if strings.TrimSpace(path) == "" {
		return Embedded()
	}
	return Load(path)
}

func Parse(r io.Reader) (*Corpus, error) {
	var records []CommandRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return New(records)
}

// New validates records and builds a corpus that owns copies of them.
func New(records []CommandRecord) (*Corpus, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}

	c := &Corpus{
		records: make([]CommandRecord, len(records)),
		byID:    make(map[string]int, len(records)),
		source:  "memory",
	}

	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if strings.TrimSpace(rec.English) == "" {
			return nil, fmt.Errorf("record %s: missing english phrase", rec.ID)
		}
		if prev, dup := c.byID[rec.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %s (first seen at %d)", i, rec.ID, prev)
		}
		c.byID[rec.ID] = i
		c.records[i] = rec.Clone()
	}

	return c, nil
}

func (c *Corpus) Len() int {
	return len(c.records)
}

func (c *Corpus) Source() string {
	return c.source
}

// At returns a copy of the record at index i in load order.
func (c *Corpus) At(i int) CommandRecord {
	return c.records[i].Clone()
}

// English and Tamil return phrases without copying parameters; the matchers
// build their indexes from these.
func (c *Corpus) English(i int) string {
	return c.records[i].English
}

func (c *Corpus) Tamil(i int) string {
	return c.records[i].Tamil
}

func (c *Corpus) ID(i int) string {
	return c.records[i].ID
}

func (c *Corpus) Get(id string) (CommandRecord, error) {
	i, ok := c.byID[id]
	if !ok {
		return CommandRecord{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return c.records[i].Clone(), nil
}

// Records returns copies of every record in load order.
func (c *Corpus) Records() []CommandRecord {
	out := make([]CommandRecord, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.Clone()
	}
	return out
}

// SampleEnglish picks up to n distinct English phrases at random.
func (c *Corpus) SampleEnglish(n int, rng *rand.Rand) []string {
	if n > len(c.records) {
		n = len(c.records)
	}
	if n <= 0 {
		return []string{}
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(c.records))
	} else {
		perm = rand.Perm(len(c.records))
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = c.records[perm[i]].English
	}
	return out
}
