package spanstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

func TestStacksContract(t *testing.T) {
	s := NewStacks()
	p := NewPath(nil)
	s.Attach(p)
	s.Attach(p)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{p.ID()}, s.IDs())

	cur, err := s.Current(p.ID())
	require.NoError(t, err)
	assert.Nil(t, cur)

	h := &tracer.Span{}
	require.NoError(t, s.Push(p.ID(), h))
	cur, err = s.Current(p.ID())
	require.NoError(t, err)
	assert.Same(t, h, cur)

	got, err := s.Pop(p.ID())
	require.NoError(t, err)
	assert.Same(t, h, got)

	_, err = s.Pop(p.ID())
	assert.ErrorIs(t, err, ErrStackUnderflow)

	s.Detach(p.ID())
	s.Detach(p.ID())
	assert.Equal(t, 0, s.Len())
}

func TestStacksUnknownPath(t *testing.T) {
	s := NewStacks()

	_, err := s.Current("missing")
	assert.ErrorIs(t, err, ErrUnknownPath)
	assert.ErrorIs(t, s.Push("missing", &tracer.Span{}), ErrUnknownPath)
	_, err = s.Pop("missing")
	assert.ErrorIs(t, err, ErrUnknownPath)
	assert.False(t, IsViolation(err))
}
