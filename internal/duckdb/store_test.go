package duckdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/postoga/internal/filter"
	"github.com/inodb/postoga/internal/haplotype"
	"github.com/inodb/postoga/internal/table"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTable(t *testing.T, name string) *table.Table {
	t.Helper()
	tbl, err := table.New(name, []*table.TranscriptRecord{
		{
			TranscriptID:   "T1",
			GeneID:         "G1",
			ReferenceGene:  "ENSG1",
			Class:          "I",
			Relationship:   "one2one",
			OrthologyScore: table.Some(0.9),
			Coordinates:    table.Coordinates{{Chrom: "chr1"}, {Chrom: "chr2"}},
		},
		{TranscriptID: "T2", GeneID: "G1", Class: "PG", ParalogScore: table.Some(0.7)},
		{TranscriptID: "T3", GeneID: "G2", Class: "I", IsoformGroup: table.Some("iso")},
	})
	require.NoError(t, err)
	return tbl
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "", s.Path())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestWriteTableAndCounts(t *testing.T) {
	s := openInMemory(t)
	tbl := sampleTable(t, "hap1")

	require.NoError(t, s.WriteTable("run1", StageJoined, tbl))
	require.NoError(t, s.WriteTable("run1", StageFiltered, tbl.Subset(func(r *table.TranscriptRecord) bool { return r.Class == "I" })))

	counts, err := s.ClassCounts("run1", "hap1", StageJoined)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"I": 2, "PG": 1}, counts)

	counts, err = s.ClassCounts("run1", "hap1", StageFiltered)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"I": 2}, counts)

	n, err := s.GeneCount("run1", "hap1", StageJoined)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.GeneCount("other", "hap1", StageJoined)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWriteTable_NullOptionals(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteTable("run1", StageJoined, sampleTable(t, "hap1")))

	var nullScores, nullParalog, fragments int
	require.NoError(t, s.DB().QueryRow(`SELECT
		count(*) FILTER (WHERE orthology_score IS NULL),
		count(*) FILTER (WHERE paralog_score IS NULL),
		sum(fragments)::BIGINT
		FROM transcripts`).Scan(&nullScores, &nullParalog, &fragments))
	assert.Equal(t, 2, nullScores)
	assert.Equal(t, 2, nullParalog)
	assert.Equal(t, 2, fragments)

	var group string
	require.NoError(t, s.DB().QueryRow(`SELECT isoform_group FROM transcripts WHERE transcript_id='T3'`).Scan(&group))
	assert.Equal(t, "iso", group)
}

func TestWriteMerged(t *testing.T) {
	s := openInMemory(t)

	hap2, err := table.New("hap2", []*table.TranscriptRecord{{TranscriptID: "X", GeneID: "G1", Class: "FI"}})
	require.NoError(t, err)
	m, err := haplotype.Merge([]*table.Table{sampleTable(t, "hap1"), hap2}, table.DefaultOrder())
	require.NoError(t, err)

	require.NoError(t, s.WriteMerged("run1", m))

	class, assembly, err := s.MergedClass("run1", "G1")
	require.NoError(t, err)
	assert.Equal(t, "FI", class)
	assert.Equal(t, "hap2", assembly)

	class, assembly, err = s.MergedClass("run1", "G2")
	require.NoError(t, err)
	assert.Equal(t, "I", class)
	assert.Equal(t, "hap1", assembly)

	_, _, err = s.MergedClass("run1", "missing")
	assert.Error(t, err)
}

func TestWriteDiscards(t *testing.T) {
	s := openInMemory(t)

	_, report, err := filter.Apply(sampleTable(t, "hap1"), filter.Predicates{Classes: []string{"I"}})
	require.NoError(t, err)
	require.NoError(t, s.WriteDiscards("run1", "hap1", report))

	stages, err := s.Discards("run1", "hap1")
	require.NoError(t, err)
	assert.Equal(t, report.Stages, stages)
}

func TestWriteRun(t *testing.T) {
	s := openInMemory(t)
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.WriteRun("run1", started, "0.1.0", table.DefaultRule))
	assert.Error(t, s.WriteRun("run1", started, "0.1.0", table.DefaultRule), "run ids are unique")

	var version string
	require.NoError(t, s.DB().QueryRow(`SELECT version FROM runs WHERE run_id='run1'`).Scan(&version))
	assert.Equal(t, "0.1.0", version)
}
