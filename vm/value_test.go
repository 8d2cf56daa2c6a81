package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestContext() *Context {
	g := NewGroup()
	ctx := NewContext(g)
	g.Release() // ctx already retained its own reference
	return ctx
}

func TestValueCoercionNumberFromString(t *testing.T) {
	ctx := newTestContext()
	defer ctx.Close()

	var v Value
	ctx.InitString(&v, "42.5", InvalidateReferences)
	require.Equal(t, 42.5, ctx.AsNumber(&v))
	require.Nil(t, ctx.Err)
}

func TestValueCoercionNumberFromBadStringStops(t *testing.T) {
	ctx := newTestContext()
	defer ctx.Close()

	var v Value
	ctx.InitString(&v, "not a number", InvalidateReferences)
	ctx.AsNumber(&v)
	require.ErrorIs(t, ctx.Err, ErrCantMakeNumber)
}

func TestValueCoercionBooleanCaseInsensitive(t *testing.T) {
	ctx := newTestContext()
	defer ctx.Close()

	var v Value
	ctx.InitString(&v, "TRUE", InvalidateReferences)
	require.True(t, ctx.AsBoolean(&v))
	require.Nil(t, ctx.Err)
}

func TestValueCoercionBooleanFromBadStringStops(t *testing.T) {
	ctx := newTestContext()
	defer ctx.Close()

	var v Value
	ctx.InitString(&v, "maybe", InvalidateReferences)
	ctx.AsBoolean(&v)
	require.True(t, errors.Is(ctx.Err, ErrCantMakeBoolean))
}

func TestValueAsStringTruncates(t *testing.T) {
	ctx := newTestContext()
	defer ctx.Close()

	long := make([]byte, maxPrintLen+500)
	for i := range long {
		long[i] = 'x'
	}
	var v Value
	ctx.InitString(&v, string(long), InvalidateReferences)
	require.Len(t, v.AsString(), maxPrintLen)
}

func TestValueAsStringFormatsIntegralNumberWithoutDecimalPoint(t *testing.T) {
	ctx := newTestContext()
	defer ctx.Close()

	var v Value
	ctx.InitNumber(&v, 7, InvalidateReferences)
	require.Equal(t, "7", v.AsString())
}

func TestValueInitTracksLiveStringAllocations(t *testing.T) {
	g := NewGroup()
	ctx := NewContext(g)
	g.Release()
	defer ctx.Close()

	var a, b Value
	ctx.InitString(&a, "one", InvalidateReferences)
	ctx.InitString(&b, "two", InvalidateReferences)
	require.EqualValues(t, 2, g.LiveStrings())

	ctx.Cleanup(&a)
	require.EqualValues(t, 1, g.LiveStrings())

	ctx.Cleanup(&b)
	require.EqualValues(t, 0, g.LiveStrings())
}

func TestValueSetAsStringReplacesContentInPlace(t *testing.T) {
	ctx := newTestContext()
	defer ctx.Close()

	var v Value
	ctx.InitNumber(&v, 1, InvalidateReferences)
	ctx.SetAsString(&v, "now a string", KeepReferences)
	require.Equal(t, KindString, v.Kind())
	require.Equal(t, "now a string", v.AsString())
}

// countingReferenceTable records how many times Invalidate is called, so
// tests can tell KeepReferences and InvalidateReferences apart.
type countingReferenceTable struct{ invalidations int }

func (c *countingReferenceTable) Invalidate(*Value) { c.invalidations++ }

func TestValueSetAsStringHonorsReferencePolicy(t *testing.T) {
	refs := &countingReferenceTable{}
	g := NewGroup()
	g.SetReferenceTable(refs)
	ctx := NewContext(g)
	g.Release()
	defer ctx.Close()

	var v Value
	ctx.InitNumber(&v, 1, InvalidateReferences)

	ctx.SetAsString(&v, "kept", KeepReferences)
	require.Equal(t, 0, refs.invalidations)

	ctx.SetAsNumber(&v, 2, InvalidateReferences)
	require.Equal(t, 1, refs.invalidations)
}
