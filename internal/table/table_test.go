package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(tx, gene, class string) *TranscriptRecord {
	return &TranscriptRecord{TranscriptID: tx, GeneID: gene, Class: class}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New("asm", []*TranscriptRecord{rec("T1", "G1", "I"), rec("T1", "G2", "L")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "T1")
}

func TestNew_RejectsEmptyGene(t *testing.T) {
	_, err := New("asm", []*TranscriptRecord{rec("T1", "", "I")})
	require.Error(t, err)
}

func TestTable_PreservesOrder(t *testing.T) {
	tbl, err := New("asm", []*TranscriptRecord{
		rec("T3", "G2", "I"),
		rec("T1", "G1", "L"),
		rec("T2", "G2", "PI"),
	})
	require.NoError(t, err)

	var ids []string
	for _, r := range tbl.Records() {
		ids = append(ids, r.TranscriptID)
	}
	assert.Equal(t, []string{"T3", "T1", "T2"}, ids)
	assert.Equal(t, []string{"G2", "G1"}, tbl.Genes())
	assert.Equal(t, 2, tbl.UniqueGenes())
	assert.Equal(t, "L", tbl.Get("T1").Class)
	assert.Nil(t, tbl.Get("T9"))
}

func TestTable_Subset(t *testing.T) {
	tbl, err := New("asm", []*TranscriptRecord{
		rec("T1", "G1", "I"),
		rec("T2", "G1", "M"),
		rec("T3", "G2", "I"),
	})
	require.NoError(t, err)

	sub := tbl.Subset(func(r *TranscriptRecord) bool { return r.Class == "I" })
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, 3, tbl.Len(), "parent table must be unchanged")
	assert.NotNil(t, sub.Get("T3"))
	assert.Nil(t, sub.Get("T2"))
	assert.Same(t, tbl.Get("T1"), sub.Get("T1"))
}

func TestTable_UniqueTranscripts(t *testing.T) {
	a := rec("ENST1#chain1", "G1", "I")
	a.ReferenceTranscript = "ENST1"
	b := rec("ENST1#chain2", "G1", "PI")
	b.ReferenceTranscript = "ENST1"
	c := rec("ENST2#chain3", "G2", "I")

	tbl, err := New("asm", []*TranscriptRecord{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.UniqueTranscripts())
}

func TestTable_Counts(t *testing.T) {
	a := rec("T1", "G1", "I")
	a.Relationship = RelOneToOne
	b := rec("T2", "G1", "I")
	b.Relationship = RelOneToMany
	c := rec("T3", "G2", "L")

	tbl, err := New("asm", []*TranscriptRecord{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"I": 2, "L": 1}, tbl.ClassCounts())
	assert.Equal(t, map[string]int{RelOneToOne: 1, RelOneToMany: 1}, tbl.RelationshipCounts())
}

func TestTable_BestClassPerGene(t *testing.T) {
	tbl, err := New("asm", []*TranscriptRecord{
		rec("T1", "G1", "M"),
		rec("T2", "G2", "L"),
		rec("T3", "G1", "PI"),
		rec("T4", "G1", "UL"),
	})
	require.NoError(t, err)

	calls := tbl.BestClassPerGene(DefaultOrder())
	assert.Equal(t, []GeneCall{{GeneID: "G1", Class: "PI"}, {GeneID: "G2", Class: "L"}}, calls)
}

func TestNormalizeRelationship(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"o2o", RelOneToOne},
		{"O2M", RelOneToMany},
		{" m2o ", RelManyToOne},
		{"m2m", RelManyToMany},
		{"o2z", RelOneToZero},
		{"one2one", RelOneToOne},
		{"weird", "weird"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRelationship(tt.in))
		})
	}
}

func TestOptional(t *testing.T) {
	var absent Optional[float64]
	_, ok := absent.Get()
	assert.False(t, ok)
	assert.Equal(t, 0.5, absent.OrElse(0.5))

	zero := Some(0.0)
	v, ok := zero.Get()
	assert.True(t, ok, "present zero must not look absent")
	assert.Equal(t, 0.0, v)
	assert.False(t, None[string]().Present())
}
