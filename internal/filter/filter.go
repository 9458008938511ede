// Package filter applies orthology class, relationship and score predicates
// to a canonical table and accounts for every removed record.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/postoga/internal/table"
)

// Stage names, in the order they are applied.
const (
	StageClass        = "class"
	StageRelationship = "relationship"
	StageScore        = "score"
	StageParalog      = "paralog"
)

// Stages lists the filter stages in application order.
var Stages = []string{StageClass, StageRelationship, StageScore, StageParalog}

// InvalidThresholdError reports a score bound outside [0,1].
type InvalidThresholdError struct {
	Name  string
	Value float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid %s threshold %v: must be within [0,1]", e.Name, e.Value)
}

// Predicates configure the filter. Zero values are no-ops.
type Predicates struct {
	Classes           []string                // allowed orthology classes
	Relationships     []string                // allowed orthology relationships
	MinOrthologyScore table.Optional[float64] // inclusive
	MaxParalogScore   table.Optional[float64] // inclusive; absent paralog scores pass
}

// IsZero reports whether no predicate is set.
func (p Predicates) IsZero() bool {
	return len(p.Classes) == 0 && len(p.Relationships) == 0 &&
		!p.MinOrthologyScore.Present() && !p.MaxParalogScore.Present()
}

// Validate checks score bounds.
func (p Predicates) Validate() error {
	if v, ok := p.MinOrthologyScore.Get(); ok && !inUnitRange(v) {
		return &InvalidThresholdError{Name: "orthology score", Value: v}
	}
	if v, ok := p.MaxParalogScore.Get(); ok && !inUnitRange(v) {
		return &InvalidThresholdError{Name: "paralog score", Value: v}
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// StageCount is the number of records removed by one stage.
type StageCount struct {
	Stage   string
	Removed int
}

// DiscardReport accounts for a filter run. Every input record is either
// retained or counted under exactly one stage.
type DiscardReport struct {
	Input              int
	Stages             []StageCount
	Retained           int
	UniqueTranscripts  int
	UniqueGenes        int
	ClassCounts        map[string]int
	RelationshipCounts map[string]int
}

// Removed returns the total number of discarded records.
func (r *DiscardReport) Removed() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Removed
	}
	return n
}

// RemovedAt returns the number of records removed by the named stage.
func (r *DiscardReport) RemovedAt(stage string) int {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Removed
		}
	}
	return 0
}

// Engine applies predicates to tables.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine that logs nothing.
func NewEngine() *Engine {
	return &Engine{logger: zap.NewNop()}
}

// SetLogger sets the logger for per-stage messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Apply filters t with a silent engine.
func Apply(t *table.Table, p Predicates) (*table.Table, *DiscardReport, error) {
	return NewEngine().Apply(t, p)
}

// Apply runs the class, relationship, score and paralog stages in that
// order, each on the output of the previous one. The input table is not
// modified.
func (e *Engine) Apply(t *table.Table, p Predicates) (*table.Table, *DiscardReport, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	report := &DiscardReport{Input: t.Len()}
	current := t

	for _, stage := range Stages {
		keep := p.stage(stage)
		removed := 0
		if keep != nil {
			before := current.Len()
			current = current.Subset(keep)
			removed = before - current.Len()
		}
		report.Stages = append(report.Stages, StageCount{Stage: stage, Removed: removed})
		e.logger.Debug("filter stage",
			zap.String("table", t.Name()),
			zap.String("stage", stage),
			zap.Bool("active", keep != nil),
			zap.Int("removed", removed),
			zap.Int("remaining", current.Len()))
	}

	report.Retained = current.Len()
	report.UniqueTranscripts = current.UniqueTranscripts()
	report.UniqueGenes = current.UniqueGenes()
	report.ClassCounts = current.ClassCounts()
	report.RelationshipCounts = current.RelationshipCounts()

	e.logger.Info("filtered table",
		zap.String("table", t.Name()),
		zap.Int("input", report.Input),
		zap.Int("retained", report.Retained),
		zap.Int("unique_transcripts", report.UniqueTranscripts),
		zap.Int("unique_genes", report.UniqueGenes),
		zap.Any("classes", report.ClassCounts))

	return current, report, nil
}

// stage returns the keep function of a stage, or nil when it is unset.
func (p Predicates) stage(name string) func(*table.TranscriptRecord) bool {
	switch name {
	case StageClass:
		if len(p.Classes) == 0 {
			return nil
		}
		allowed := toSet(p.Classes, strings.TrimSpace)
		return func(r *table.TranscriptRecord) bool {
			return allowed[r.Class]
		}
	case StageRelationship:
		if len(p.Relationships) == 0 {
			return nil
		}
		allowed := toSet(p.Relationships, table.NormalizeRelationship)
		return func(r *table.TranscriptRecord) bool {
			return allowed[table.NormalizeRelationship(r.Relationship)]
		}
	case StageScore:
		minScore, ok := p.MinOrthologyScore.Get()
		if !ok {
			return nil
		}
		return func(r *table.TranscriptRecord) bool {
			s, ok := r.OrthologyScore.Get()
			return ok && s >= minScore
		}
	case StageParalog:
		maxScore, ok := p.MaxParalogScore.Get()
		if !ok {
			return nil
		}
		return func(r *table.TranscriptRecord) bool {
			s, ok := r.ParalogScore.Get()
			return !ok || s <= maxScore
		}
	}
	return nil
}

func toSet(values []string, norm func(string) string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[norm(v)] = true
	}
	return set
}

// ParseSet splits a comma-separated list, dropping empty and repeated items.
func ParseSet(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ParseThreshold parses a score bound. An empty string leaves it unset.
func ParseThreshold(name, s string) (table.Optional[float64], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return table.None[float64](), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return table.None[float64](), fmt.Errorf("parse %s threshold %q: %w", name, s, err)
	}
	if !inUnitRange(v) {
		return table.None[float64](), &InvalidThresholdError{Name: name, Value: v}
	}
	return table.Some(v), nil
}
