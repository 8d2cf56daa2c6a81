package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOwnerRegistryReuseInvalidatesOldSeed(t *testing.T) {
	r := NewOwnerRegistry()
	id, seed := r.Create()
	require.True(t, r.Resolve(id, seed))

	newSeed := r.Reuse(id)
	require.NotEqual(t, seed, newSeed)
	require.False(t, r.Resolve(id, seed))
	require.True(t, r.Resolve(id, newSeed))
}

// TestScenarioHandlerSlotReusedByAnotherOwner exercises Reuse's contract
// (a Script still holding the old seed observes DanglingOwner): a script
// built against a since-reassigned (id, seed) pair must see ErrDanglingOwner
// exactly as it would for an outright-destroyed owner, never silently
// resolving against the new occupant.
func TestScenarioHandlerSlotReusedByAnotherOwner(t *testing.T) {
	group := NewGroup()
	call, ret := RegisterIntrinsics(group)

	ownerID, ownerSeed := group.Owners.Create()
	script := NewScript(ownerID, ownerSeed)
	script.Strings = []string{"hi", "greet"}

	cmdIdx := script.AddCommandHandlerNamed("greet")
	script.Command(cmdIdx).Instructions = []Instruction{
		NewInstruction(uint16(PushStringFromTable), 0, 0),
		NewInstruction(uint16(Print), uint16(BackOfStack), 0),
		NewInstruction(uint16(ret), 0, 0),
	}

	mainHandler := &Handler{
		Instructions: []Instruction{
			NewInstruction(uint16(call), 1, 0),
			NewInstruction(uint16(ExitToTop), 0, 0),
		},
	}

	ctx := NewContext(group)
	group.Release()
	defer ctx.Close()

	ctx.PrepareHandler(script, mainHandler)
	ctx.Run()
	require.Nil(t, ctx.Err)

	// A new owner takes over the same id slot; script's recorded seed is
	// now stale even though the id itself is still registered.
	group.Owners.Reuse(ownerID)

	ctx.PrepareHandler(script, mainHandler)
	ctx.Run()
	require.ErrorIs(t, ctx.Err, ErrDanglingOwner)
}
