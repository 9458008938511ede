// Package join builds the canonical transcript table of one assembly from the
// individual TOGA output tables.
package join

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/postoga/internal/table"
	"github.com/inodb/postoga/internal/toga"
)

// Field names reported in schema errors.
const (
	FieldTranscriptID   = "transcript_id"
	FieldGeneID         = "gene_id"
	FieldOrthologyClass = "orthology_class"
)

// Sources are the parsed inputs of one assembly. Only Classification is
// required; the other tables are joined on the projection id when present.
type Sources struct {
	Name           string
	Classification *toga.Classification
	LossSummary    *toga.LossSummary
	Scores         *toga.Scores
	QueryGenes     toga.QueryGenes
	Isoforms       toga.Isoforms
	Annotation     *toga.BED
}

// JoinStats counts what the joiner skipped or could not attach.
type JoinStats struct {
	Records            int
	SkippedNull        int // classification rows without a projection
	GeneOverrides      int
	MissingScore       int
	MissingCoordinates int
	OrphanScores       int // score rows with no classification row
	OrphanLoss         int // loss rows with no classification row
	Unclassified       int // annotated projections with no classification row
}

// Joiner builds canonical tables.
type Joiner struct {
	logger *zap.Logger
}

// NewJoiner creates a joiner that logs nothing.
func NewJoiner() *Joiner {
	return &Joiner{logger: zap.NewNop()}
}

// SetLogger sets the logger for progress and warning messages.
func (j *Joiner) SetLogger(l *zap.Logger) {
	j.logger = l
}

// Build joins one assembly with a silent joiner.
func Build(src *Sources) (*table.Table, JoinStats, error) {
	return NewJoiner().Build(src)
}

// Build joins the source tables of one assembly into a canonical table in
// classification row order.
func (j *Joiner) Build(src *Sources) (*table.Table, JoinStats, error) {
	var stats JoinStats

	c := src.Classification
	if c == nil {
		return nil, stats, &toga.SchemaError{File: src.Name, Field: FieldTranscriptID}
	}
	if !c.HasClass() && src.LossSummary == nil {
		return nil, stats, &toga.SchemaError{File: c.File, Field: FieldOrthologyClass}
	}
	if !c.HasGene() && c.Columns.ReferenceGene < 0 && len(src.QueryGenes) == 0 {
		return nil, stats, &toga.SchemaError{File: c.File, Field: FieldGeneID}
	}
	stats.SkippedNull = c.Skipped

	classified := make(map[string]bool, len(c.Rows))
	records := make([]*table.TranscriptRecord, 0, len(c.Rows))

	for _, row := range c.Rows {
		classified[row.Transcript] = true

		rec := &table.TranscriptRecord{
			TranscriptID:        row.Transcript,
			ReferenceTranscript: row.ReferenceTranscript,
			ReferenceGene:       row.ReferenceGene,
			Relationship:        row.Relationship,
		}

		rec.GeneID = row.Gene
		if gene, ok := src.QueryGenes[row.Transcript]; ok {
			rec.GeneID = gene
			stats.GeneOverrides++
		}
		if rec.GeneID == "" {
			rec.GeneID = row.ReferenceGene
		}
		if rec.GeneID == "" {
			return nil, stats, &toga.SchemaError{File: c.File, Field: FieldGeneID, Line: row.Line}
		}

		rec.Class = row.Class
		if rec.Class == "" {
			rec.Class, _ = src.LossSummary.Get(row.Transcript)
		}
		if rec.Class == "" {
			return nil, stats, &toga.SchemaError{File: c.File, Field: FieldOrthologyClass, Line: row.Line}
		}

		if src.Scores != nil {
			if s, ok := src.Scores.Rows[row.Transcript]; ok {
				rec.OrthologyScore = s.Orthology
				rec.ParalogScore = s.Paralog
			} else {
				stats.MissingScore++
			}
		}

		if src.Annotation != nil {
			rec.Coordinates = src.Annotation.Intervals(row.Transcript)
			if len(rec.Coordinates) == 0 {
				stats.MissingCoordinates++
			}
		}

		if src.Isoforms != nil {
			if group, ok := src.Isoforms[row.Transcript]; ok {
				rec.IsoformGroup = table.Some(group)
			}
		}

		records = append(records, rec)
	}

	if src.Scores != nil {
		stats.OrphanScores = countOrphans(src.Scores.Order, classified)
	}
	if src.LossSummary != nil {
		stats.OrphanLoss = countOrphans(src.LossSummary.Order, classified)
	}
	if src.Annotation != nil {
		stats.Unclassified = countOrphans(src.Annotation.Projections(), classified)
	}

	t, err := table.New(src.Name, records)
	if err != nil {
		return nil, stats, fmt.Errorf("build table %s: %w", src.Name, err)
	}
	stats.Records = t.Len()

	j.logger.Info("built canonical table",
		zap.String("assembly", src.Name),
		zap.Int("records", stats.Records),
		zap.Int("genes", t.UniqueGenes()),
		zap.Int("skipped_null", stats.SkippedNull),
		zap.Int("gene_overrides", stats.GeneOverrides))
	if stats.MissingScore > 0 || stats.MissingCoordinates > 0 {
		j.logger.Warn("records with missing data",
			zap.String("assembly", src.Name),
			zap.Int("missing_score", stats.MissingScore),
			zap.Int("missing_coordinates", stats.MissingCoordinates))
	}
	if stats.OrphanScores > 0 || stats.OrphanLoss > 0 || stats.Unclassified > 0 {
		j.logger.Warn("projections without a classification row",
			zap.String("assembly", src.Name),
			zap.Int("scores", stats.OrphanScores),
			zap.Int("loss_summary", stats.OrphanLoss),
			zap.Int("annotation", stats.Unclassified))
	}

	return t, stats, nil
}

func countOrphans(ids []string, classified map[string]bool) int {
	n := 0
	for _, id := range ids {
		if !classified[id] {
			n++
		}
	}
	return n
}
