package output

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/inodb/postoga/internal/completeness"
	"github.com/inodb/postoga/internal/filter"
	"github.com/inodb/postoga/internal/haplotype"
	"github.com/inodb/postoga/internal/join"
)

// WriteFilterSummary writes a discard report as key<TAB>value lines headed by
// the table name.
func WriteFilterSummary(w io.Writer, name string, r *filter.DiscardReport) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# filter summary: %s\n", name)
	fmt.Fprintf(bw, "input\t%d\n", r.Input)
	for _, s := range r.Stages {
		fmt.Fprintf(bw, "removed_by_%s\t%d\n", s.Stage, s.Removed)
	}
	fmt.Fprintf(bw, "retained\t%d\n", r.Retained)
	fmt.Fprintf(bw, "unique_transcripts\t%d\n", r.UniqueTranscripts)
	fmt.Fprintf(bw, "unique_genes\t%d\n", r.UniqueGenes)
	fmt.Fprintf(bw, "class_counts\t%s\n", formatCounts(r.ClassCounts))
	fmt.Fprintf(bw, "relationship_counts\t%s\n", formatCounts(r.RelationshipCounts))
	return bw.Flush()
}

// WriteJoinStats writes the joiner counters of one assembly.
func WriteJoinStats(w io.Writer, name string, s join.JoinStats) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# join summary: %s\n", name)
	fmt.Fprintf(bw, "records\t%d\n", s.Records)
	fmt.Fprintf(bw, "skipped_null_projection\t%d\n", s.SkippedNull)
	fmt.Fprintf(bw, "gene_overrides\t%d\n", s.GeneOverrides)
	fmt.Fprintf(bw, "missing_score\t%d\n", s.MissingScore)
	fmt.Fprintf(bw, "missing_coordinates\t%d\n", s.MissingCoordinates)
	fmt.Fprintf(bw, "orphan_scores\t%d\n", s.OrphanScores)
	fmt.Fprintf(bw, "orphan_loss_summary\t%d\n", s.OrphanLoss)
	fmt.Fprintf(bw, "unclassified_projections\t%d\n", s.Unclassified)
	return bw.Flush()
}

// WriteMergeSummary writes merged class and winner counts.
func WriteMergeSummary(w io.Writer, m *haplotype.MergedTable) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# haplotype merge: %s\n", strings.Join(m.Assemblies(), ","))
	fmt.Fprintf(bw, "genes\t%d\n", m.Len())
	fmt.Fprintf(bw, "class_counts\t%s\n", formatCounts(m.ClassCounts()))
	fmt.Fprintf(bw, "winner_counts\t%s\n", formatCounts(m.WinnerCounts()))
	return bw.Flush()
}

// CompletenessColumns is the header of a completeness report.
var CompletenessColumns = []string{
	"catalog",
	"namespace",
	"entries",
	"size",
	"found",
	"coverage_pct",
	"untranslatable_catalog",
	"untranslatable_genes",
	"untranslatable",
	"by_class",
}

// WriteCompleteness writes one line per catalog report.
func WriteCompleteness(w io.Writer, reports []*completeness.Report) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(CompletenessColumns, "\t") + "\n")
	for _, r := range reports {
		classes := make([]string, len(r.ByClass))
		for i, c := range r.ByClass {
			classes[i] = fmt.Sprintf("%s=%d(%.2f%%)", c.Class, c.Count, c.Percent)
		}
		byClass := strings.Join(classes, ",")
		fmt.Fprintf(bw, "%s\t%s\t%d\t%d\t%d\t%.2f\t%d\t%d\t%d\t%s\n",
			r.Catalog, r.Namespace, r.Entries, r.Size, r.Found, r.Coverage,
			r.CatalogUntranslatable, r.UntranslatableGenes, r.Untranslatable, orAbsent(byClass))
	}
	return bw.Flush()
}

// formatCounts renders a count map as key=value pairs sorted by key.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return absent
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, ",")
}
