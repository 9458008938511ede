package toga

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadClassification(t *testing.T) {
	c, err := ReadClassification(findTestFile(t, "orthology_classification.tsv"))
	require.NoError(t, err)

	// TOGA2 names the relationship column "orthology_class"
	assert.Equal(t, 3, c.Columns.Transcript)
	assert.Equal(t, 2, c.Columns.Gene)
	assert.Equal(t, 4, c.Columns.Relationship)
	assert.Equal(t, -1, c.Columns.Class)
	assert.False(t, c.HasClass())
	assert.True(t, c.HasGene())

	require.Len(t, c.Rows, 4)
	assert.Equal(t, 1, c.Skipped, "one2zero row without a projection")

	first := c.Rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "ENST01.1#chain10", first.Transcript)
	assert.Equal(t, "reg_1", first.Gene)
	assert.Equal(t, "ENSG01", first.ReferenceGene)
	assert.Equal(t, "ENST01.1", first.ReferenceTranscript)
	assert.Equal(t, "one2one", first.Relationship)

	assert.Equal(t, "ENST04.1#chain40", c.Rows[3].Transcript)
}

func TestParseClassification_ClassAndRelationshipColumns(t *testing.T) {
	input := "transcript_id\tgene_id\torthology_class\torthology_relationship\n" +
		"T1\tG1\tI\to2o\n" +
		"T2\tG2\tPG\tm2m\n"

	c, err := ParseClassification("test.tsv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Columns.Class)
	assert.Equal(t, 3, c.Columns.Relationship)
	require.Len(t, c.Rows, 2)
	assert.Equal(t, "I", c.Rows[0].Class)
	assert.Equal(t, "one2one", c.Rows[0].Relationship)
	assert.Equal(t, "many2many", c.Rows[1].Relationship)
}

func TestParseClassification_Headerless(t *testing.T) {
	input := "g\tt\tq\tp\tr\n" +
		"ENSG01\tENST01\treg_1\tENST01#c1\tone2one\n"

	c, err := ParseClassification("test.tsv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, c.Rows, 1)
	assert.Equal(t, "ENST01#c1", c.Rows[0].Transcript)
	assert.Equal(t, "reg_1", c.Rows[0].Gene)
}

func TestParseClassification_DuplicateKey(t *testing.T) {
	input := "transcript_id\tgene_id\tloss_status\n" +
		"T1\tG1\tI\n" +
		"\n" +
		"T1\tG2\tL\n"

	_, err := ParseClassification("dup.tsv", strings.NewReader(input))
	require.Error(t, err)

	var dupErr *DuplicateKeyError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "dup.tsv", dupErr.File)
	assert.Equal(t, "T1", dupErr.Key)
	assert.Equal(t, 2, dupErr.FirstLine)
	assert.Equal(t, 4, dupErr.Line)
}

func TestParseClassification_MissingTranscriptColumn(t *testing.T) {
	input := "gene_id\tloss_status\nG1\tI\n"

	_, err := ParseClassification("bad.tsv", strings.NewReader(input))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, ColTranscriptID, schemaErr.Field)
	assert.Equal(t, 0, schemaErr.Line)
}

func TestParseClassification_Empty(t *testing.T) {
	_, err := ParseClassification("empty.tsv", strings.NewReader(""))
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Error(), "no header")
}

func TestReadClassification_Gzip(t *testing.T) {
	src, err := os.ReadFile(findTestFile(t, "orthology_classification.tsv"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "orthology_classification.tsv.gz")
	writeGzip(t, path, src)

	c, err := ReadClassification(path)
	require.NoError(t, err)
	assert.Len(t, c.Rows, 4)
}

func TestReadClassification_MissingFile(t *testing.T) {
	_, err := ReadClassification(filepath.Join(t.TempDir(), "nope.tsv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
