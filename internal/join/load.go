package join

import (
	"fmt"

	"github.com/inodb/postoga/internal/toga"
)

// Assembly names one TOGA results directory to build a table from.
type Assembly struct {
	Name     string
	Dir      *toga.Dir
	Isoforms string // optional isoform table
}

// Load reads every table of an assembly that is present on disk.
func Load(a Assembly) (*Sources, error) {
	src := &Sources{Name: a.Name}
	d := a.Dir

	var err error
	if src.Classification, err = toga.ReadClassification(d.Classification); err != nil {
		return nil, fmt.Errorf("read orthology classification: %w", err)
	}
	if d.LossSummary != "" {
		if src.LossSummary, err = toga.ReadLossSummary(d.LossSummary); err != nil {
			return nil, fmt.Errorf("read loss summary: %w", err)
		}
	}
	if d.Scores != "" {
		if src.Scores, err = toga.ReadScores(d.Scores); err != nil {
			return nil, fmt.Errorf("read orthology scores: %w", err)
		}
	}
	if d.QueryGenes != "" {
		if src.QueryGenes, err = toga.ReadQueryGenes(d.QueryGenes); err != nil {
			return nil, fmt.Errorf("read query genes: %w", err)
		}
	}
	if d.Annotation != "" {
		if src.Annotation, err = toga.ReadBED(d.Annotation); err != nil {
			return nil, fmt.Errorf("read query annotation: %w", err)
		}
	}
	if a.Isoforms != "" {
		if src.Isoforms, err = toga.ReadIsoforms(a.Isoforms); err != nil {
			return nil, fmt.Errorf("read isoforms: %w", err)
		}
	}
	return src, nil
}

// LoadAndBuild reads and joins one assembly.
func (j *Joiner) LoadAndBuild(a Assembly) (*Result, error) {
	src, err := Load(a)
	if err != nil {
		return nil, err
	}
	t, stats, err := j.Build(src)
	if err != nil {
		return nil, err
	}
	return &Result{Assembly: a, Table: t, Stats: stats}, nil
}
