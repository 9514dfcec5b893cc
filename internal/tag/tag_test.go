package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/model"
)

func TestDefaultSet(t *testing.T) {
	s := DefaultSet()

	assert.Equal(t, "<V>", s.Token(model.Formal))
	assert.Equal(t, "<T>", s.Token(model.Informal))
	assert.Empty(t, s.Token(model.Neutral))
	assert.Empty(t, s.Token(model.Unknown))

	assert.Equal(t, "<T> Will you come?", s.Prepend(model.Informal, "Will you come?"))
	assert.Equal(t, "Will you come?", s.Prepend(model.Neutral, "Will you come?"))
}

func TestStrip(t *testing.T) {
	s := DefaultSet()

	l, rest, ok := s.Strip("<V> Sign here, please.")
	assert.True(t, ok)
	assert.Equal(t, model.Formal, l)
	assert.Equal(t, "Sign here, please.", rest)

	l, rest, ok = s.Strip("<T>")
	assert.True(t, ok)
	assert.Equal(t, model.Informal, l)
	assert.Empty(t, rest)

	_, rest, ok = s.Strip("<X> Sign here.")
	assert.False(t, ok)
	assert.Equal(t, "<X> Sign here.", rest)
}

func TestNewSet_NeutralTag(t *testing.T) {
	s, err := NewSet(model.SideConstraintConfig{Formal: "<V>", Informal: "<T>", Neutral: "<N>"})
	require.NoError(t, err)

	assert.Equal(t, "<N> Hi.", s.Prepend(model.Neutral, "Hi."))
	l, _, ok := s.Strip("<N> Hi.")
	assert.True(t, ok)
	assert.Equal(t, model.Neutral, l)
	assert.Equal(t, map[string]string{"formal": "<V>", "informal": "<T>", "neutral": "<N>", "unknown": ""}, s.Mapping())
}

func TestNewSet_Invalid(t *testing.T) {
	_, err := NewSet(model.SideConstraintConfig{Formal: "<X>", Informal: "<X>"})
	assert.Error(t, err)

	_, err = NewSet(model.SideConstraintConfig{Formal: "<formal tag>"})
	assert.Error(t, err)
}
