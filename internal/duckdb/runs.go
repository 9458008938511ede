package duckdb

import (
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/postoga/internal/filter"
	"github.com/inodb/postoga/internal/haplotype"
	"github.com/inodb/postoga/internal/table"
)

// Stages under which canonical tables are stored.
const (
	StageJoined   = "joined"
	StageFiltered = "filtered"
)

// WriteRun records a run.
func (s *Store) WriteRun(runID string, started time.Time, version, precedence string) error {
	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?)`, runID, started, version, precedence)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// WriteTable stores every record of t under the given stage.
func (s *Store) WriteTable(runID, stage string, t *table.Table) error {
	return s.appendRows("transcripts", func(a *goduckdb.Appender) error {
		for _, r := range t.Records() {
			if err := a.AppendRow(
				runID, t.Name(), stage, r.TranscriptID, r.GeneID,
				nullable(r.ReferenceTranscript), nullable(r.ReferenceGene),
				r.Class, nullable(r.Relationship),
				optional(r.OrthologyScore), optional(r.ParalogScore),
				optional(r.IsoformGroup), int32(len(r.Coordinates)),
			); err != nil {
				return fmt.Errorf("append transcript: %w", err)
			}
		}
		return nil
	})
}

// WriteMerged stores the merged haplotype calls.
func (s *Store) WriteMerged(runID string, m *haplotype.MergedTable) error {
	return s.appendRows("merged_genes", func(a *goduckdb.Appender) error {
		for _, r := range m.Records() {
			if err := a.AppendRow(runID, r.GeneID, r.Class, r.AssemblyName, strings.Join(r.PerAssembly, ",")); err != nil {
				return fmt.Errorf("append merged gene: %w", err)
			}
		}
		return nil
	})
}

// WriteDiscards stores the per-stage discard counts of one filter run.
func (s *Store) WriteDiscards(runID, assembly string, r *filter.DiscardReport) error {
	return s.appendRows("discards", func(a *goduckdb.Appender) error {
		for i, st := range r.Stages {
			if err := a.AppendRow(runID, assembly, int32(i), st.Stage, int64(st.Removed)); err != nil {
				return fmt.Errorf("append discard: %w", err)
			}
		}
		return nil
	})
}

// ClassCounts returns the number of transcripts per class for one stored
// table.
func (s *Store) ClassCounts(runID, assembly, stage string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT orthology_class, count(*)
		FROM transcripts
		WHERE run_id=? AND assembly=? AND stage=?
		GROUP BY orthology_class`, runID, assembly, stage)
	if err != nil {
		return nil, fmt.Errorf("query class counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, fmt.Errorf("scan class count: %w", err)
		}
		counts[class] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class counts: %w", err)
	}
	return counts, nil
}

// GeneCount returns the number of distinct genes of one stored table.
func (s *Store) GeneCount(runID, assembly, stage string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT count(DISTINCT gene_id)
		FROM transcripts
		WHERE run_id=? AND assembly=? AND stage=?`, runID, assembly, stage).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("query gene count: %w", err)
	}
	return n, nil
}

// Discards returns the stored discard counts of one assembly in stage order.
func (s *Store) Discards(runID, assembly string) ([]filter.StageCount, error) {
	rows, err := s.db.Query(`SELECT stage, removed
		FROM discards
		WHERE run_id=? AND assembly=?
		ORDER BY position`, runID, assembly)
	if err != nil {
		return nil, fmt.Errorf("query discards: %w", err)
	}
	defer rows.Close()

	var out []filter.StageCount
	for rows.Next() {
		var sc filter.StageCount
		if err := rows.Scan(&sc.Stage, &sc.Removed); err != nil {
			return nil, fmt.Errorf("scan discard: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discards: %w", err)
	}
	return out, nil
}

// MergedClass returns the stored merged class and winning assembly of a gene.
func (s *Store) MergedClass(runID, gene string) (class, assembly string, err error) {
	err = s.db.QueryRow(`SELECT orthology_class, assembly
		FROM merged_genes
		WHERE run_id=? AND gene_id=?`, runID, gene).Scan(&class, &assembly)
	if err != nil {
		return "", "", fmt.Errorf("query merged gene: %w", err)
	}
	return class, assembly, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optional[T any](o table.Optional[T]) any {
	v, ok := o.Get()
	if !ok {
		return nil
	}
	return v
}
