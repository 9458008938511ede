package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/postoga/internal/filter"
	"github.com/inodb/postoga/internal/table"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	c, err := FromViper(newViper(map[string]any{KeyTogaDir: "/data/toga"}))
	require.NoError(t, err)

	assert.Equal(t, "/data/toga", c.TogaDir)
	assert.Equal(t, "gtf", c.Format)
	assert.Equal(t, "bed", c.Target)
	assert.Equal(t, "ensembl", c.Namespace)
	assert.Equal(t, table.DefaultRule, c.Rule)
	assert.True(t, c.Predicates.IsZero())
	assert.False(t, c.HaplotypeMode())
	assert.Equal(t, []string{"/data/toga"}, c.Inputs())
}

func TestFromViper_Filters(t *testing.T) {
	c, err := FromViper(newViper(map[string]any{
		KeyTogaDir:           "/data/toga",
		KeyClasses:           "I,PI, UL",
		KeyRelationships:     []any{"o2o", "o2m"},
		KeyMinOrthologyScore: "0.5",
		KeyMaxParalogScore:   0.25,
		KeyFormat:            "GFF",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"I", "PI", "UL"}, c.Predicates.Classes)
	assert.Equal(t, []string{"o2o", "o2m"}, c.Predicates.Relationships)
	assert.Equal(t, 0.5, c.Predicates.MinOrthologyScore.OrElse(-1))
	assert.Equal(t, 0.25, c.Predicates.MaxParalogScore.OrElse(-1))
	assert.Equal(t, "gff", c.Format)
}

func TestFromViper_Haplotypes(t *testing.T) {
	c, err := FromViper(newViper(map[string]any{
		KeyHaplotypes: "/runs/hap1,/runs/hap2",
		KeyRule:       "I>PI>UL>L>M>PM>PG>abs",
		KeyCatalogs:   []string{"a.txt", "b.txt"},
	}))
	require.NoError(t, err)

	assert.True(t, c.HaplotypeMode())
	assert.Equal(t, []string{"/runs/hap1", "/runs/hap2"}, c.Inputs())
	assert.Equal(t, []string{"a.txt", "b.txt"}, c.Catalogs)

	order, err := c.Order()
	require.NoError(t, err)
	assert.Equal(t, "I>PI>UL>L>M>PM>PG", order.String())
}

func TestFromViper_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "no input",
			values: map[string]any{},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "no input")
			},
		},
		{
			name:   "both inputs",
			values: map[string]any{KeyTogaDir: "a", KeyHaplotypes: "b,c"},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "mutually exclusive")
			},
		},
		{
			name:   "score out of range",
			values: map[string]any{KeyTogaDir: "a", KeyMinOrthologyScore: "1.2"},
			check: func(t *testing.T, err error) {
				var thErr *filter.InvalidThresholdError
				assert.True(t, errors.As(err, &thErr))
			},
		},
		{
			name:   "duplicate rule token",
			values: map[string]any{KeyTogaDir: "a", KeyRule: "I>L>I"},
			check: func(t *testing.T, err error) {
				var orderErr *table.OrderError
				assert.True(t, errors.As(err, &orderErr))
			},
		},
		{
			name:   "bad format",
			values: map[string]any{KeyTogaDir: "a", KeyFormat: "gff3"},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "unsupported output format")
			},
		},
		{
			name:   "bad target",
			values: map[string]any{KeyTogaDir: "a", KeyTarget: "cds"},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "annotation target")
			},
		},
		{
			name:   "bad level",
			values: map[string]any{KeyTogaDir: "a", KeyLevel: "chatty"},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "log level")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromViper(newViper(tt.values))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
