package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("I>PI>UL>L>M>PM>PG>abs")
	require.NoError(t, err)

	assert.Equal(t, []string{"I", "PI", "UL", "L", "M", "PM", "PG"}, o.Tokens())
	assert.Equal(t, 0, o.Rank("I"))
	assert.Equal(t, 6, o.Rank("PG"))
	assert.Equal(t, "I>PI>UL>L>M>PM>PG", o.String())
}

func TestParseOrder_Commas(t *testing.T) {
	o, err := ParseOrder("I, PI ,L")
	require.NoError(t, err)
	assert.Equal(t, []string{"I", "PI", "L"}, o.Tokens())
}

func TestParseOrder_Duplicate(t *testing.T) {
	_, err := ParseOrder("I>PI>I")
	require.Error(t, err)

	var oe *OrderError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "I>PI>I", oe.Rule)
	assert.Contains(t, oe.Message, `"I"`)
}

func TestParseOrder_Empty(t *testing.T) {
	_, err := ParseOrder(" > ")
	require.Error(t, err)

	_, err = ParseOrder("NF>abs")
	require.Error(t, err, "absence aliases alone are not an order")
}

func TestPrecedenceOrder_UnseenAndAbsent(t *testing.T) {
	o, err := ParseOrder("I>PI>L")
	require.NoError(t, err)

	assert.Equal(t, 3, o.Rank("XYZ"), "unseen tokens rank after listed tokens")
	assert.Equal(t, 4, o.Rank(ClassNotFound))
	assert.Equal(t, 4, o.AbsentRank())
	assert.True(t, o.Better("XYZ", ClassNotFound), "real data beats absence")
	assert.True(t, o.Better("I", "PI"))
	assert.False(t, o.Better("PI", "PI"))
}

func TestDefaultOrder(t *testing.T) {
	o := DefaultOrder()
	assert.True(t, o.Better(ClassFullyIntact, ClassIntact))
	assert.True(t, o.Better(ClassIntact, ClassPartiallyIntact))
	assert.True(t, o.Better(ClassParalogousGene, ClassNotFound))
}
