package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleHelloWorld(t *testing.T) {
	mod, err := Assemble(`
		pushstr @ "Hello, world!"
		print @
		exittotop
	`)
	require.NoError(t, err)
	require.Len(t, mod.Instructions, 3)
	require.Equal(t, []string{"Hello, world!"}, mod.Strings)
	require.Equal(t, uint16(PushStringFromTable), mod.Instructions[0].Opcode)
	require.Equal(t, uint16(Print), mod.Instructions[1].Opcode)
	require.Equal(t, uint16(ExitToTop), mod.Instructions[2].Opcode)
}

func TestAssembleResolvesBackwardLabel(t *testing.T) {
	mod, err := Assemble(`
		pushnum @ 3
		loop:
		addnum 0 -1
		pushstr @ "x"
		print @
		jgtz 0 loop
		exittotop
	`)
	require.NoError(t, err)

	jgtz := mod.Instructions[4]
	require.Equal(t, uint16(JumpRelativeIfGreaterThanZero), jgtz.Opcode)
	require.Equal(t, int32(-3), jgtz.asInt32())
}

func TestAssembleUnknownMnemonicErrors(t *testing.T) {
	_, err := Assemble("bogus @ 1")
	require.Error(t, err)
}

func TestAssembleDuplicateLabelErrors(t *testing.T) {
	_, err := Assemble(`
		here:
		noop
		here:
		noop
	`)
	require.Error(t, err)
}

func TestAssembleInternsSharedStringLiteralOnce(t *testing.T) {
	mod, err := Assemble(`
		pushstr @ "same"
		pushstr @ "same"
	`)
	require.NoError(t, err)
	require.Len(t, mod.Strings, 1)
}
