package search

import (
	"context"
	"strings"

	"github.com/letieu/agent-directory/internal/llm"
	"github.com/letieu/agent-directory/internal/outcome"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RelevanceThreshold is exclusive: a candidate scored exactly 0.6 is dropped.
const RelevanceThreshold = 0.6

var ErrEmptyQuery = eris.New("search: query is empty")

type Candidate struct {
	Slug           string  `json:"slug"`
	RelevanceScore float64 `json:"relevanceScore"`
	Reason         string  `json:"reason"`
}

// Interpretation is the model's raw answer before any filtering.
type Interpretation struct {
	QueryIsTooGeneral     bool        `json:"queryIsTooGeneral"`
	QueryIsTooSpecific    bool        `json:"queryIsTooSpecific"`
	QueryIsNotSafeForWork bool        `json:"queryIsNotSafeForWork"`
	HasRelevantSlugs      bool        `json:"hasRelevantSlugs"`
	Slugs                 []Candidate `json:"slugs"`
}

// Candidates applies the selection policy: nothing for a too-general query,
// otherwise every candidate above the threshold in the order given.
func (in Interpretation) Candidates() []Candidate {
	if in.QueryIsTooGeneral {
		return []Candidate{}
	}
	kept := make([]Candidate, 0, len(in.Slugs))
	for _, c := range in.Slugs {
		if c.RelevanceScore > RelevanceThreshold {
			kept = append(kept, c)
		}
	}
	return kept
}

type Interpreter struct {
	completer llm.Completer
	model     string
	logger    *zap.Logger
}

// NewInterpreter uses model for every call; an empty model leaves the
// completer's default in place.
func NewInterpreter(completer llm.Completer, model string, logger *zap.Logger) *Interpreter {
	return &Interpreter{completer: completer, model: model, logger: logger}
}

// Interpret asks the model which listings in corpus match query. Failures
// never escape as errors; they come back as a failed outcome.
func (i *Interpreter) Interpret(ctx context.Context, query, corpus string) outcome.Outcome[[]Candidate] {
	query = strings.TrimSpace(query)
	if query == "" {
		return outcome.Failed[[]Candidate](ErrEmptyQuery)
	}
	log := i.logger.With(zap.String("query", query))

	var in Interpretation
	err := i.completer.GenerateObject(ctx, llm.Request{
		Model:      i.model,
		System:     slugsSystemPrompt,
		Prompt:     slugsUserPrompt(query, corpus),
		SchemaName: "slug_search",
		Schema:     interpretationSchema,
	}, &in)
	if err != nil {
		log.Warn("query interpretation failed", zap.Error(err))
		return outcome.Failed[[]Candidate](eris.Wrap(err, "search: interpret query"))
	}

	candidates := in.Candidates()
	log.Info("query interpreted",
		zap.Bool("too_general", in.QueryIsTooGeneral),
		zap.Bool("too_specific", in.QueryIsTooSpecific),
		zap.Bool("not_safe_for_work", in.QueryIsNotSafeForWork),
		zap.Int("returned", len(in.Slugs)),
		zap.Int("kept", len(candidates)),
	)
	return outcome.Ok(candidates)
}
