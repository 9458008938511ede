package join

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/postoga/internal/table"
	"github.com/inodb/postoga/internal/toga"
)

func testDataDir(t *testing.T) string {
	t.Helper()
	p := filepath.Join("..", "..", "testdata", "toga")
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("Test data not found: %s", p)
	}
	return p
}

func testAssembly(t *testing.T, name string) Assembly {
	t.Helper()
	d, err := toga.ResolveDir(testDataDir(t), toga.TargetBED)
	require.NoError(t, err)
	return Assembly{Name: name, Dir: d}
}

func mustClassification(t *testing.T, input string) *toga.Classification {
	t.Helper()
	c, err := toga.ParseClassification("orthology_classification.tsv", strings.NewReader(input))
	require.NoError(t, err)
	return c
}

func TestBuild_TestData(t *testing.T) {
	res, err := NewJoiner().LoadAndBuild(testAssembly(t, "hap1"))
	require.NoError(t, err)

	tbl, stats := res.Table, res.Stats
	assert.Equal(t, "hap1", tbl.Name())
	require.Equal(t, 4, tbl.Len())

	ids := make([]string, 0, tbl.Len())
	for _, r := range tbl.Records() {
		ids = append(ids, r.TranscriptID)
	}
	assert.Equal(t, []string{"ENST01.1#chain10", "ENST02.1#chain20", "ENST02.1#chain21", "ENST04.1#chain40"}, ids)

	r := tbl.Get("ENST02.1#chain21")
	require.NotNil(t, r)
	assert.Equal(t, "reg_3b", r.GeneID, "query_genes overrides the classification gene")
	assert.Equal(t, "PG", r.Class)
	assert.Equal(t, "one2many", r.Relationship)
	assert.Equal(t, "ENSG02", r.ReferenceGene)
	assert.Equal(t, 0.12, r.OrthologyScore.OrElse(-1))
	assert.False(t, r.ParalogScore.Present())
	assert.Len(t, r.Coordinates, 2)
	assert.False(t, r.IsoformGroup.Present())

	assert.Equal(t, "FI", tbl.Get("ENST01.1#chain10").Class)

	assert.Equal(t, JoinStats{
		Records:       4,
		SkippedNull:   1,
		GeneOverrides: 1,
		Unclassified:  1,
	}, stats)
}

func TestBuild_MissingScoreIsAbsent(t *testing.T) {
	scores, err := toga.ParseScores("scores.tsv", strings.NewReader("projection\torthology_score\nT1\t0.7\nT9\t0.1\n"))
	require.NoError(t, err)

	tbl, stats, err := Build(&Sources{
		Name:           "a",
		Classification: mustClassification(t, "transcript_id\tgene_id\tloss_status\nT1\tG1\tI\nT2\tG1\tL\n"),
		Scores:         scores,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.7, tbl.Get("T1").OrthologyScore.OrElse(-1))
	assert.False(t, tbl.Get("T2").OrthologyScore.Present())
	assert.Equal(t, 1, stats.MissingScore)
	assert.Equal(t, 1, stats.OrphanScores)
}

func TestBuild_ClassFromClassificationWins(t *testing.T) {
	loss, err := toga.ParseLossSummary("loss.tsv", strings.NewReader("PROJECTION\tT1\tL\nPROJECTION\tT2\tM\n"))
	require.NoError(t, err)

	tbl, _, err := Build(&Sources{
		Name:           "a",
		Classification: mustClassification(t, "transcript_id\tgene_id\tclass\nT1\tG1\tI\nT2\tG2\tNA\n"),
		LossSummary:    loss,
	})
	require.NoError(t, err)
	assert.Equal(t, "I", tbl.Get("T1").Class)
	assert.Equal(t, "M", tbl.Get("T2").Class, "null class falls back to the loss summary")
}

func TestBuild_ReferenceGeneFallback(t *testing.T) {
	tbl, _, err := Build(&Sources{
		Name: "a",
		Classification: mustClassification(t,
			"reference_gene\tquery_gene\tquery_transcript\tloss_status\nENSG1\tNone\tT1\tI\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ENSG1", tbl.Get("T1").GeneID)
}

func TestBuild_Isoforms(t *testing.T) {
	iso, err := toga.ParseIsoforms("iso.tsv", strings.NewReader("G1\tT1$1\n"))
	require.NoError(t, err)

	tbl, _, err := Build(&Sources{
		Name:           "a",
		Classification: mustClassification(t, "transcript_id\tgene_id\tloss_status\nT1\tG1\tI\nT2\tG2\tI\n"),
		Isoforms:       iso,
	})
	require.NoError(t, err)

	group, ok := tbl.Get("T1").IsoformGroup.Get()
	assert.True(t, ok)
	assert.Equal(t, "G1", group)
	assert.False(t, tbl.Get("T2").IsoformGroup.Present())
}

func TestBuild_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   *Sources
		field string
		line  int
	}{
		{
			name:  "no class column anywhere",
			src:   &Sources{Classification: mustClassification(t, "transcript_id\tgene_id\nT1\tG1\n")},
			field: FieldOrthologyClass,
		},
		{
			name:  "no gene column anywhere",
			src:   &Sources{Classification: mustClassification(t, "transcript_id\tloss_status\nT1\tI\n")},
			field: FieldGeneID,
		},
		{
			name:  "row without class",
			src:   &Sources{Classification: mustClassification(t, "transcript_id\tgene_id\tclass\nT1\tG1\tI\nT2\tG2\tNone\n")},
			field: FieldOrthologyClass,
			line:  3,
		},
		{
			name:  "row without gene",
			src:   &Sources{Classification: mustClassification(t, "transcript_id\tgene_id\tclass\nT1\t-\tI\n")},
			field: FieldGeneID,
			line:  2,
		},
		{
			name:  "no classification",
			src:   &Sources{Name: "a"},
			field: FieldTranscriptID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Build(tt.src)
			var schemaErr *toga.SchemaError
			require.True(t, errors.As(err, &schemaErr), "got %v", err)
			assert.Equal(t, tt.field, schemaErr.Field)
			assert.Equal(t, tt.line, schemaErr.Line)
		})
	}
}

func TestBuild_DoesNotMutateSources(t *testing.T) {
	c := mustClassification(t, "transcript_id\tgene_id\tloss_status\nT1\tG1\tI\n")
	before := c.Rows[0]

	_, _, err := Build(&Sources{Name: "a", Classification: c, QueryGenes: toga.QueryGenes{"T1": "G9"}})
	require.NoError(t, err)
	assert.Equal(t, before, c.Rows[0])
}

func TestBuildAll_InputOrder(t *testing.T) {
	names := []string{"hap1", "hap2", "hap3", "hap4"}
	var assemblies []Assembly
	for _, n := range names {
		assemblies = append(assemblies, testAssembly(t, n))
	}

	results, err := NewJoiner().BuildAll(context.Background(), assemblies, 0)
	require.NoError(t, err)
	require.Len(t, results, len(names))
	for i, r := range results {
		assert.Equal(t, names[i], r.Table.Name())
		assert.Equal(t, 4, r.Table.Len())
	}
}

func TestBuildAll_FirstErrorInOrder(t *testing.T) {
	bad := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bad, "orthology_classification.tsv"), []byte("transcript_id\tgene_id\nT1\tG1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(bad, "query_annotation.bed"), nil, 0o644))
	d, err := toga.ResolveDir(bad, toga.TargetBED)
	require.NoError(t, err)

	assemblies := []Assembly{testAssembly(t, "good"), {Name: "bad", Dir: d}, testAssembly(t, "later")}

	_, err = NewJoiner().BuildAll(context.Background(), assemblies, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build bad")

	var schemaErr *toga.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestBuildAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJoiner().BuildAll(ctx, []Assembly{testAssembly(t, "hap1")}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrderedCollect_OutOfOrder(t *testing.T) {
	results := make(chan WorkResult, 3)
	for _, seq := range []int{2, 0, 1} {
		results <- WorkResult{Seq: seq, Result: &Result{Table: mustTable(t, seq)}}
	}
	close(results)

	var got []int
	err := OrderedCollect(results, func(r WorkResult) error {
		got = append(got, r.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func mustTable(t *testing.T, seq int) *table.Table {
	t.Helper()
	tbl, err := table.New(string(rune('a'+seq)), nil)
	require.NoError(t, err)
	return tbl
}
