// Package dispatch resolves a free-text command to a corpus record, trying
// the lexical matcher before falling back to the semantic one.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wgomg/aura/internal/corpus"
	"github.com/wgomg/aura/internal/lexical"
	"github.com/wgomg/aura/internal/semantic"
	"github.com/wgomg/aura/internal/utils"
)

var ErrEmptyQuery = errors.New("empty query")

type Method string

const (
	MethodExact    Method = "exact"
	MethodFuzzy    Method = "fuzzy"
	MethodSemantic Method = "semantic"
)

type LexicalMatcher interface {
	Match(query string) (lexical.Result, bool)
}

type SemanticMatcher interface {
	Match(ctx context.Context, query string) (semantic.Result, error)
}

// Match is the matched record with the caller's query attached. Method and
// Score describe how it was found and are not part of its JSON form.
type Match struct {
	corpus.CommandRecord
	OriginalQuery string `json:"original_query"`

	Method Method  `json:"-"`
	Score  float64 `json:"-"`
}

type Service struct {
	logger          *utils.Logger
	corpus          *corpus.Corpus
	lexical         LexicalMatcher
	semantic        SemanticMatcher
	semanticTimeout time.Duration
}

// NewService wires the matchers built over c. A zero semanticTimeout leaves
// the semantic step bounded only by the caller's context.
func NewService(
	logger *utils.Logger,
	c *corpus.Corpus,
	lex LexicalMatcher,
	sem SemanticMatcher,
	semanticTimeout time.Duration,
) *Service {
	return &Service{
		logger:          logger,
		corpus:          c,
		lexical:         lex,
		semantic:        sem,
		semanticTimeout: semanticTimeout,
	}
}

func (s *Service) Corpus() *corpus.Corpus {
	return s.corpus
}

func (s *Service) Match(ctx context.Context, query string) (*Match, error) {
	reqID := utils.RequestID(ctx)

	if strings.TrimSpace(query) == "" {
		return nil, utils.WrapErrorf(ErrEmptyQuery, utils.ErrBadParamInput, "could not process empty command")
	}

	if res, ok := s.lexical.Match(query); ok {
		method := MethodFuzzy
		if res.Method == lexical.MethodExact {
			method = MethodExact
		}
		s.logger.Info(reqID, "Matched %s via %s lexical match (score=%.2f)", s.corpus.ID(res.Index), method, res.Score)
		return s.result(res.Index, query, method, res.Score), nil
	}

	semCtx := ctx
	if s.semanticTimeout > 0 {
		var cancel context.CancelFunc
		semCtx, cancel = context.WithTimeout(ctx, s.semanticTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.semantic.Match(semCtx, query)
	if err != nil {
		return nil, utils.WrapErrorf(err, utils.ErrInternalServerError, "semantic match failed")
	}

	s.logger.Info(
		reqID,
		"Matched %s via semantic match on %s phrase (score=%.4f, took %s)",
		s.corpus.ID(res.Index), res.Language, res.Score, time.Since(start).Round(time.Millisecond),
	)
	return s.result(res.Index, query, MethodSemantic, res.Score), nil
}

func (s *Service) result(index int, query string, method Method, score float64) *Match {
	return &Match{
		CommandRecord: s.corpus.At(index),
		OriginalQuery: query,
		Method:        method,
		Score:         score,
	}
}

// Lookup returns a copy of the record with the given id.
func (s *Service) Lookup(id string) (corpus.CommandRecord, error) {
	rec, err := s.corpus.Get(id)
	if err != nil {
		return corpus.CommandRecord{}, utils.WrapErrorf(err, utils.ErrNotFound, "command %q not found", id)
	}
	return rec, nil
}

// Examples returns up to n distinct English phrases in random order.
func (s *Service) Examples(n int) []string {
	return s.corpus.SampleEnglish(n, nil)
}
