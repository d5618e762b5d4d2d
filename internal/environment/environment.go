// Package environment implements the lexically-nested scope table
// used as variable storage, closure capture, and the side channel
// through which return/break/continue unwind (spec.md §3.4).
package environment

import "github.com/vexlang/vex/internal/vexvalue"

// Reserved names used as the control-flow side channel. A block/loop
// frame checks these after each statement it evaluates.
const (
	ReturnSlot   = "_return"
	BreakSlot    = "_break"
	ContinueSlot = "_continue"
)

// reservedMark implements spec.md §3.5: a variable name whose
// first and last three characters are both "___" is reserved.
const reservedMark = "___"

// IsReservedName reports whether name matches the ___...___ pattern
// and is therefore unassignable by user code.
func IsReservedName(name string) bool {
	if len(name) < 6 {
		return false
	}
	return name[:3] == reservedMark && name[len(name)-3:] == reservedMark
}

// Environment is a mutable name -> value table with an optional
// enclosing scope.
type Environment struct {
	store map[string]*vexvalue.Value
	outer *Environment
	// implicit is the nameless per-scope slot written by `:=`.
	implicit *vexvalue.Value
}

// New creates a root environment with no enclosing scope.
func New() *Environment {
	return &Environment{store: map[string]*vexvalue.Value{}}
}

// NewEnclosed creates a child scope of outer.
func NewEnclosed(outer *Environment) *Environment {
	return &Environment{store: map[string]*vexvalue.Value{}, outer: outer}
}

// Enclosing returns the parent scope, or nil at the root.
func (e *Environment) Enclosing() *Environment { return e.outer }

// Get resolves name by walking outward from e. An empty name addresses
// the implicit last-expression slot of e itself; outer scopes are not
// searched for it. Returns UNDEFINED if not found.
func (e *Environment) Get(name string) *vexvalue.Value {
	return e.get(name, false)
}

// GetLocal resolves name only within e, ignoring outer scopes.
func (e *Environment) GetLocal(name string) *vexvalue.Value {
	return e.get(name, true)
}

func (e *Environment) get(name string, localOnly bool) *vexvalue.Value {
	if name == "" {
		if e.implicit != nil {
			return e.implicit
		}
		return vexvalue.UNDEFINED
	}
	if v, ok := e.store[name]; ok {
		return v
	}
	if !localOnly && e.outer != nil {
		return e.outer.get(name, false)
	}
	return vexvalue.UNDEFINED
}

// Set writes value for name. When localOnly is true the write always
// targets e's own scope (used for the `:` local-assignment
// operator); otherwise it walks outward to the nearest scope that
// already defines name, falling back to e when none does. An empty
// name writes the implicit slot.
func (e *Environment) Set(name string, value *vexvalue.Value, localOnly bool) {
	if name == "" {
		e.implicit = value
		return
	}
	if localOnly {
		e.store[name] = value
		return
	}
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = value
			return
		}
	}
	e.store[name] = value
}

// ImplicitValue returns the value most recently written to e's own
// implicit slot by `:=`, and whether any write has happened at all.
// Unlike Get(""), it never substitutes UNDEFINED for "never written" -
// evalStatements needs to tell "a block result was never set via :="
// apart from ":= undefined" having actually run.
func (e *Environment) ImplicitValue() (*vexvalue.Value, bool) {
	if e.implicit == nil {
		return nil, false
	}
	return e.implicit, true
}

// Define always writes into e's own scope, declaring name there.
func (e *Environment) Define(name string, value *vexvalue.Value) {
	e.store[name] = value
}

// Has reports whether name is visible from e (this scope or any
// enclosing one).
func (e *Environment) Has(name string) bool {
	_, ok := e.store[name]
	if ok {
		return true
	}
	if e.outer != nil {
		return e.outer.Has(name)
	}
	return false
}

// Remove deletes name from the nearest enclosing scope that defines
// it. Returns true if a binding was removed.
func (e *Environment) Remove(name string) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			delete(env.store, name)
			return true
		}
	}
	return false
}

// SignalReturn/SignalBreak/SignalContinue set the reserved
// control-flow sentinels local to e.
func (e *Environment) SignalReturn(v *vexvalue.Value) { e.store[ReturnSlot] = v }
func (e *Environment) SignalBreak()                   { e.store[BreakSlot] = vexvalue.TRUE }
func (e *Environment) SignalContinue()                { e.store[ContinueSlot] = vexvalue.TRUE }

// HasSignal reports (without searching outer scopes) whether the
// named control-flow sentinel is currently set in e.
func (e *Environment) HasSignal(slot string) bool {
	v, ok := e.store[slot]
	return ok && v != nil
}

// ClearSignal removes a control-flow sentinel from e's own scope.
func (e *Environment) ClearSignal(slot string) {
	delete(e.store, slot)
}

// ReturnValue returns the value most recently signaled via
// SignalReturn in e's own scope, or UNDEFINED.
func (e *Environment) ReturnValue() *vexvalue.Value {
	if v, ok := e.store[ReturnSlot]; ok {
		return v
	}
	return vexvalue.UNDEFINED
}

// Snapshot deep-copies e's own bindings, skipping the control-flow
// sentinels. Paired with Restore, this lets a host-facing Instance
// (pkg/vex) rewind to its constructor-level scope after an aborted
// call, per spec.md §7.
func (e *Environment) Snapshot() map[string]*vexvalue.Value {
	out := make(map[string]*vexvalue.Value, len(e.store))
	for k, v := range e.store {
		if k == ReturnSlot || k == BreakSlot || k == ContinueSlot {
			continue
		}
		out[k] = v.DeepCopy()
	}
	return out
}

// Restore replaces e's own scope with deep copies of snapshot,
// discarding any bindings or control-flow sentinels e currently
// holds.
func (e *Environment) Restore(snapshot map[string]*vexvalue.Value) {
	store := make(map[string]*vexvalue.Value, len(snapshot))
	for k, v := range snapshot {
		store[k] = v.DeepCopy()
	}
	e.store = store
}

// LocalBindings snapshots e's own scope, skipping the control-flow
// sentinels. A class constructor's body runs in a fresh scope; this
// is how that scope's data and method bindings become an Instance's
// member set once the constructor returns.
func (e *Environment) LocalBindings() map[string]*vexvalue.Value {
	out := make(map[string]*vexvalue.Value, len(e.store))
	for k, v := range e.store {
		if k == ReturnSlot || k == BreakSlot || k == ContinueSlot {
			continue
		}
		out[k] = v
	}
	return out
}
