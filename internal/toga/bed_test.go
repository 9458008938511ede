package toga

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBED(t *testing.T) {
	b, err := ReadBED(findTestFile(t, "query_annotation.bed"))
	require.NoError(t, err)

	assert.Equal(t, 5, b.Len())
	assert.Equal(t, []string{
		"ENST01.1#chain10",
		"ENST02.1#chain20",
		"ENST02.1#chain21",
		"ENST04.1#chain40",
		"ENST99.1#chain99",
	}, b.Projections())

	// Fragmented projection keeps both pieces
	frags := b.Intervals("ENST02.1#chain21")
	require.Len(t, frags, 2)
	assert.Equal(t, "ENST02.1#chain21$1", frags[0].Name)
	assert.Equal(t, "chr3", frags[1].Chrom)
	assert.Equal(t, "50", frags[1].Start)
	assert.True(t, strings.HasPrefix(frags[1].Line, "chr3\t50\t150\tENST02.1#chain21$2\t"))

	assert.Equal(t, "-", b.Intervals("ENST02.1#chain20")[0].Strand)
	assert.Nil(t, b.Intervals("missing"))
}

func TestParseBED_SkipsHeaders(t *testing.T) {
	input := "track name=toga\n# comment\nbrowser position chr1\nchr1\t0\t10\tT1\t0\t+\n"

	b, err := ParseBED("q.bed", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, b.Projections())
}

func TestParseBED_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"too few columns", "chr1\t0\t10\tT1\n", "at least 6 columns"},
		{"bad start", "chr1\tx\t10\tT1\t0\t+\n", "invalid start"},
		{"end before start", "chr1\t10\t5\tT1\t0\t+\n", "before start"},
		{"empty name", "chr1\t0\t10\t$1\t0\t+\n", "empty name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBED("q.bed", strings.NewReader(tt.input))
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, parseErr.Message, tt.msg)
			assert.Equal(t, 1, parseErr.Line)
		})
	}
}

func TestProjectionID(t *testing.T) {
	assert.Equal(t, "T1#c1", ProjectionID("T1#c1$3"))
	assert.Equal(t, "T1#c1", ProjectionID("T1#c1"))
	assert.Equal(t, "", ProjectionID("$1"))
}
