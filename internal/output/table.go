// Package output writes canonical tables, merged haplotype calls and run
// reports.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/postoga/internal/table"
)

// absent is written for optional values that are not set.
const absent = "-"

// TableColumns is the header of a canonical table file.
var TableColumns = []string{
	"transcript_id",
	"gene_id",
	"reference_transcript",
	"reference_gene",
	"orthology_class",
	"orthology_relationship",
	"orthology_score",
	"paralog_score",
	"isoform_group",
	"coordinates",
}

// TableWriter writes canonical records in tab-delimited format.
type TableWriter struct {
	w *bufio.Writer
}

// NewTableWriter creates a new canonical table writer.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TableWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(TableColumns, "\t") + "\n")
	return err
}

// Write writes a single record.
func (tw *TableWriter) Write(r *table.TranscriptRecord) error {
	values := []string{
		r.TranscriptID,
		r.GeneID,
		orAbsent(r.ReferenceTranscript),
		orAbsent(r.ReferenceGene),
		r.Class,
		orAbsent(r.Relationship),
		formatScore(r.OrthologyScore),
		formatScore(r.ParalogScore),
		orAbsent(r.IsoformGroup.OrElse("")),
		formatCoordinates(r.Coordinates),
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteTable writes the header and every record of t.
func (tw *TableWriter) WriteTable(t *table.Table) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range t.Records() {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TableWriter) Flush() error {
	return tw.w.Flush()
}

func orAbsent(s string) string {
	if s == "" {
		return absent
	}
	return s
}

func formatScore(o table.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return absent
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatCoordinates renders intervals as chrom:start-end:strand, comma
// separated for fragmented projections.
func formatCoordinates(c table.Coordinates) string {
	if len(c) == 0 {
		return absent
	}
	parts := make([]string, len(c))
	for i, iv := range c {
		parts[i] = iv.Chrom + ":" + iv.Start + "-" + iv.End + ":" + iv.Strand
	}
	return strings.Join(parts, ",")
}
