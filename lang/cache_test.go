package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileReader_Cache(t *testing.T) {
	t.Cleanup(ClearCache)

	reg := testRegistry(t)
	src := `And(){ Pair(alpha = 1); };`

	a, err := CompileReader(context.Background(), strings.NewReader(src), WithRegistry(reg))
	require.NoError(t, err)

	b, err := CompileReader(context.Background(), strings.NewReader(src), WithRegistry(reg))
	require.NoError(t, err)

	require.Len(t, b.Ops, 1)
	assert.Equal(t, a.Ops[0].String(), b.Ops[0].String())
	assert.NotSame(t, a.Ops[0], b.Ops[0])

	// Mutating one result does not leak into the next.
	a.Ops[0].Children[0].Args.Set("alpha", "changed")

	c, err := CompileReader(context.Background(), strings.NewReader(src), WithRegistry(reg))
	require.NoError(t, err)

	v, _ := c.Ops[0].Children[0].Args.Get("alpha")
	assert.Equal(t, "1", v)
}

func TestCompileReader_CachedFailure(t *testing.T) {
	t.Cleanup(ClearCache)

	reg := testRegistry(t)

	for range 2 {
		s, err := CompileReader(context.Background(), strings.NewReader("Bogus();"),
			WithRegistry(reg))
		require.ErrorIs(t, err, ErrCompile)
		assert.NotEmpty(t, s.Feedback)
		assert.True(t, s.HasErrors())
		assert.True(t, s.Parsed())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestCompileReader_ReadError(t *testing.T) {
	_, err := CompileReader(context.Background(), failingReader{},
		WithRegistry(testRegistry(t)))

	require.ErrorIs(t, err, ErrReadInput)
	assert.ErrorContains(t, err, "boom")
}
