package vm

import "sync"

// ObjectID identifies an owner object (an opaque identifier — the object
// model itself is an external collaborator per §1).
type ObjectID uint64

// ObjectSeed distinguishes a live owner from a stale one that used to
// occupy the same ObjectID slot. Comparing the seed recorded in a Script
// against the registry's current seed for that id is how a running handler
// detects that its owner has been destroyed without dereferencing a
// dangling pointer.
type ObjectSeed uint64

// OwnerRegistry is the deletion-safe (owner_id, owner_seed) handle table
// spec.md's data model describes for LEOScript. It is deliberately minimal:
// the real object model is out of scope (§1 "Out of scope: object model").
type OwnerRegistry struct {
	mu    sync.Mutex
	seeds map[ObjectID]ObjectSeed
	next  ObjectID
}

// NewOwnerRegistry returns an empty registry.
func NewOwnerRegistry() *OwnerRegistry {
	return &OwnerRegistry{seeds: make(map[ObjectID]ObjectSeed)}
}

// Create allocates a fresh ObjectID with seed 1 and returns both.
func (r *OwnerRegistry) Create() (ObjectID, ObjectSeed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.seeds[id] = 1
	return id, 1
}

// Destroy removes id from the registry. A later Resolve against the seed
// that was current at destruction time reports the owner gone, even if the
// id slot is reused afterwards.
func (r *OwnerRegistry) Destroy(id ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seeds, id)
}

// Reuse allocates a new seed for an existing id, simulating the slot being
// handed to a different owner object. Any Script still holding the old
// seed will now observe DanglingOwner on resolution.
func (r *OwnerRegistry) Reuse(id ObjectID) ObjectSeed {
	r.mu.Lock()
	defer r.mu.Unlock()
	seed := r.seeds[id] + 1
	r.seeds[id] = seed
	return seed
}

// Resolve reports whether (id, seed) still names a live owner.
func (r *OwnerRegistry) Resolve(id ObjectID, seed ObjectSeed) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.seeds[id]
	return ok && current == seed
}
