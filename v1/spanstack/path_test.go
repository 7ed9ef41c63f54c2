package spanstack

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/flowtrace/v1/tracer"
)

func TestPushPopIsLIFO(t *testing.T) {
	p := NewPath(nil)
	a, b, c := &tracer.Span{}, &tracer.Span{}, &tracer.Span{}

	assert.Nil(t, p.Current())
	assert.Equal(t, 1, p.Push(a))
	assert.Equal(t, 2, p.Push(b))
	assert.Equal(t, 3, p.Push(c))
	assert.Same(t, c, p.Current())

	for _, want := range []*tracer.Span{c, b, a} {
		got, err := p.Pop()
		require.NoError(t, err)
		assert.Same(t, want, got)
	}
	assert.Equal(t, 0, p.Depth())
}

func TestPopOnEmptyStackIsUnderflow(t *testing.T) {
	p := NewPath(nil)

	_, err := p.Pop()
	assert.ErrorIs(t, err, ErrStackUnderflow)
	assert.True(t, IsViolation(err))

	assert.ErrorIs(t, p.Release(&tracer.Span{}), ErrStackUnderflow)
}

func TestReleaseOutOfOrderLeavesStackIntact(t *testing.T) {
	p := NewPath(nil)
	a, b := &tracer.Span{}, &tracer.Span{}
	p.Push(a)
	p.Push(b)

	err := p.Release(a)
	assert.ErrorIs(t, err, ErrOutOfOrder)
	assert.Equal(t, 2, p.Depth())
	assert.Same(t, b, p.Current())

	require.NoError(t, p.Release(b))
	require.NoError(t, p.Release(a))
	assert.Equal(t, 0, p.Depth())
}

func TestRecursiveNestingVariableDepth(t *testing.T) {
	p := NewPath(nil)

	var recurse func(n int)
	recurse = func(n int) {
		s := &tracer.Span{}
		p.Push(s)
		defer func() { require.NoError(t, p.Release(s)) }()
		if n > 0 {
			recurse(n - 1)
		}
		assert.Same(t, s, p.Current())
	}

	recurse(25)
	assert.Equal(t, 0, p.Depth())
}

func TestForkUsesCurrentAsBase(t *testing.T) {
	p := NewPath(nil)
	a := &tracer.Span{}
	p.Push(a)

	f := p.Fork()
	assert.NotEqual(t, p.ID(), f.ID())
	assert.Same(t, a, f.Current())
	assert.Same(t, p, f.Parent())
	assert.Equal(t, 0, f.Depth())

	b := &tracer.Span{}
	f.Push(b)
	assert.Same(t, b, f.Current())
	assert.Same(t, a, p.Current())

	_, err := f.Pop()
	require.NoError(t, err)
	_, err = f.Pop()
	assert.ErrorIs(t, err, ErrStackUnderflow)
}

func TestDisablePropagatesToForks(t *testing.T) {
	p := NewPath(nil)
	f := p.Fork()

	assert.False(t, f.Disabled())
	p.Disable()
	assert.True(t, p.Disabled())
	assert.True(t, f.Disabled())
	assert.False(t, NewPath(nil).Disabled())
}

func TestContextCarriesPath(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, Current(context.Background()))
	assert.Equal(t, context.Background(), Fork(context.Background()))

	p := NewPath(nil)
	a := &tracer.Span{}
	p.Push(a)
	ctx := WithPath(context.Background(), p)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Same(t, a, Current(ctx))

	forked, ok := FromContext(Fork(ctx))
	require.True(t, ok)
	assert.NotSame(t, p, forked)
	assert.Same(t, a, forked.Current())
}

func TestIndependentPathsDoNotCrossTalk(t *testing.T) {
	const paths = 100

	var wg sync.WaitGroup
	errs := make(chan string, paths)

	for i := 0; i < paths; i++ {
		wg.Add(1)
		go func(depth int) {
			defer wg.Done()
			p := NewPath(nil)
			own := make([]*tracer.Span, depth)
			for j := range own {
				own[j] = &tracer.Span{}
				p.Push(own[j])
				if p.Current() != own[j] {
					errs <- "foreign span on top"
					return
				}
			}
			for j := depth - 1; j >= 0; j-- {
				if err := p.Release(own[j]); err != nil {
					errs <- err.Error()
					return
				}
			}
		}(i%7 + 1)
	}

	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
