package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScriptFindHandlerIsCaseInsensitive(t *testing.T) {
	s := NewScript(1, 1)
	idx := s.AddCommandHandlerNamed("DoThing")
	s.Command(idx).AppendInstruction(NewInstruction(uint16(ExitToTop), 0, 0))

	h, ok := s.FindCommandHandlerNamed("dothing")
	require.True(t, ok)
	require.Equal(t, "DoThing", h.Name())

	_, ok = s.FindCommandHandlerNamed("nope")
	require.False(t, ok)
}

func TestScriptFindFunctionVsCommandAreSeparateNamespaces(t *testing.T) {
	s := NewScript(1, 1)
	s.AddCommandHandlerNamed("greet")
	s.AddFunctionHandlerNamed("total")

	_, ok := s.FindFunctionHandlerNamed("greet")
	require.False(t, ok)
	_, ok = s.FindCommandHandlerNamed("total")
	require.False(t, ok)

	_, ok = s.FindCommandHandlerNamed("greet")
	require.True(t, ok)
	_, ok = s.FindFunctionHandlerNamed("total")
	require.True(t, ok)
}

func TestScriptRetainRelease(t *testing.T) {
	s := NewScript(1, 1)
	require.EqualValues(t, 1, s.RefCount())

	s.Retain()
	require.EqualValues(t, 2, s.RefCount())

	s.Release()
	require.EqualValues(t, 1, s.RefCount())
}

func TestScriptOverReleasePanics(t *testing.T) {
	s := NewScript(1, 1)
	s.Release()

	require.Panics(t, func() { s.Release() })
}

func TestScriptNameTruncatedAtHandlerNameLimit(t *testing.T) {
	long := make([]byte, maxHandlerNameBytes+50)
	for i := range long {
		long[i] = 'a'
	}
	s := NewScript(1, 1)
	idx := s.AddCommandHandlerNamed(string(long))
	require.Len(t, s.Command(idx).Name(), maxHandlerNameBytes-1)
}
