package vm

import (
	"fmt"
	"sync/atomic"
)

// OpcodeFunc is the signature every instruction function implements. Step
// advances ctx.pc past the instruction before calling it (see dispatch.go),
// so non-branching opcodes leave ctx.pc alone and branching opcodes
// overwrite it.
type OpcodeFunc func(ctx *Context)

// Dispatcher is the Go replacement for the source's global
// gInstructions/add_instructions table: an explicit, per-group table of
// opcode functions so multiple independent VMs (or a VM and its tests) can
// register different host extensions without stepping on each other's
// opcode numbers (Design Notes: "Replace with an explicit Dispatcher object
// passed (or context-held)").
type Dispatcher struct {
	funcs []OpcodeFunc
	names []string
}

// NewDispatcher returns a Dispatcher pre-populated with the trap at opcode
// 0 and the core catalogue of opcodes 1-16 (§4.4).
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{}
	d.Register(coreOpcodeFuncs(), coreOpcodeNames())
	if got := Opcode(len(d.funcs)); got != firstHostOpcode {
		panic(fmt.Sprintf("core opcode catalogue registered %d opcodes, want %d (firstHostOpcode)", got, firstHostOpcode))
	}
	return d
}

// Register appends a family of opcode functions to the table and returns
// the opcode id the first one was assigned, the Go analogue of
// add_instructions/LEOAddInstructionsToInstructionArray's outFirstNewInstruction.
func (d *Dispatcher) Register(fns []OpcodeFunc, names []string) Opcode {
	first := Opcode(len(d.funcs))
	d.funcs = append(d.funcs, fns...)
	d.names = append(d.names, names...)
	return first
}

// lookup returns the function for op, or the trap at opcode 0 if op is out
// of range (§4.4 step 2).
func (d *Dispatcher) lookup(op Opcode) OpcodeFunc {
	if int(op) < 0 || int(op) >= len(d.funcs) {
		return d.funcs[Invalid]
	}
	return d.funcs[op]
}

// NameOf returns the mnemonic registered for op, or "?unknown?" if none was
// given.
func (d *Dispatcher) NameOf(op Opcode) string {
	if int(op) >= 0 && int(op) < len(d.names) && d.names[op] != "" {
		return d.names[op]
	}
	return op.String()
}

// ReferenceTable is the external collaborator that tracks weak
// back-references into the value stack. The core only ever needs to notify
// it that a slot's previous occupant is gone (the kInvalidateReferences
// policy); the reference bookkeeping itself is explicitly out of scope
// (§1, §9 "Weak back-references on values").
type ReferenceTable interface {
	Invalidate(v *Value)
}

// NopReferenceTable is a ReferenceTable that does nothing, suitable for
// embedders that never hand out LEOValueReference-style weak references.
type NopReferenceTable struct{}

// Invalidate implements ReferenceTable.
func (NopReferenceTable) Invalidate(*Value) {}

// stringAllocTracker counts live owned-string allocations across a group's
// contexts, standing in for the C allocator-counter tests spec.md §8 calls
// for ("every push is eventually matched by a destructor call").
type stringAllocTracker struct {
	live atomic.Int64
}

func (t *stringAllocTracker) alloc() { t.live.Add(1) }
func (t *stringAllocTracker) free()  { t.live.Add(-1) }

// Live returns the number of currently-live owned string allocations.
func (t *stringAllocTracker) Live() int64 { return t.live.Load() }

// Group collects the state shared between a set of Contexts: the opcode
// dispatch table, the weak-reference table, the owner registry used to
// detect dangling scripts, and the allocator counter tests observe. It
// corresponds to LEOContextGroup. A Group may be shared by contexts running
// on different goroutines; its own bookkeeping (Dispatcher aside — built
// once and treated as read-only after NewGroup) is safe for that via
// atomics, the same pattern the teacher's device bus uses in
// vm/devices.go for cross-goroutine request counts.
type Group struct {
	refcount atomic.Int64
	dispatch *Dispatcher
	refs     ReferenceTable
	strings  *stringAllocTracker
	Owners   *OwnerRegistry
}

// NewGroup creates a Group with refcount 1, a default Dispatcher, a no-op
// ReferenceTable, and a fresh OwnerRegistry. Callers wanting host-registered
// opcodes or a real ReferenceTable should mutate Dispatcher()/SetReferenceTable
// before handing the group to any Context.
func NewGroup() *Group {
	g := &Group{
		dispatch: NewDispatcher(),
		refs:     NopReferenceTable{},
		strings:  &stringAllocTracker{},
		Owners:   NewOwnerRegistry(),
	}
	g.refcount.Store(1)
	return g
}

// Dispatcher returns the group's opcode table, for registering host
// extensions before any Context starts running.
func (g *Group) Dispatcher() *Dispatcher { return g.dispatch }

// SetReferenceTable installs a ReferenceTable other than the default no-op.
func (g *Group) SetReferenceTable(t ReferenceTable) { g.refs = t }

// LiveStrings returns the number of currently-live owned-string
// allocations across every context sharing this group.
func (g *Group) LiveStrings() int64 { return g.strings.Live() }

// Retain increments the group's reference count and returns it, so
// multiple contexts (or a context plus whoever created the group) can
// share ownership.
func (g *Group) Retain() *Group {
	g.refcount.Add(1)
	return g
}

// Release decrements the group's reference count. The Go garbage collector
// reclaims the Group once nothing references it; Release exists so callers
// can assert discipline (a Release without a matching Retain/NewGroup is a
// programming error) the way LEOContextGroupRelease does.
func (g *Group) Release() {
	if g.refcount.Add(-1) < 0 {
		panic("vm: Group released more times than retained")
	}
}
