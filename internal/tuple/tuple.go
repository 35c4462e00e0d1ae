package tuple

import (
	"fmt"
	"strings"

	"github.com/roach88/shapegate/internal/rdf"
)

// Scope tags whether a tuple describes a node-level or property-level
// rule evaluation.
type Scope int

const (
	// NodeShape scope: the trailing chain element is the node under test.
	NodeShape Scope = iota
	// PropertyShape scope: the chain reached the node via a property path.
	PropertyShape
)

// String returns the scope name for diagnostics.
func (s Scope) String() string {
	switch s {
	case NodeShape:
		return "nodeShape"
	case PropertyShape:
		return "propertyShape"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ValidationTuple is one row of the dataflow: a target chain, its scope,
// and the contexts it was read from. Immutable once constructed.
type ValidationTuple struct {
	chain    []rdf.Value
	scope    Scope
	hasValue bool
	contexts []string
}

// New creates a tuple whose entire chain consists of target nodes.
// The chain must be non-empty.
func New(scope Scope, contexts []string, chain ...rdf.Value) ValidationTuple {
	if len(chain) == 0 {
		panic("tuple: empty target chain")
	}
	return ValidationTuple{
		chain:    cloneChain(chain),
		scope:    scope,
		contexts: cloneContexts(contexts),
	}
}

// NewWithValue creates a tuple whose trailing chain element is a bound
// value. The chain must hold at least a target and the value.
func NewWithValue(scope Scope, contexts []string, chain ...rdf.Value) ValidationTuple {
	if len(chain) < 2 {
		panic("tuple: value tuple needs a target and a value")
	}
	t := New(scope, contexts, chain...)
	t.hasValue = true
	return t
}

// Scope returns the tuple's scope tag.
func (t ValidationTuple) Scope() Scope { return t.scope }

// HasValue reports whether the trailing chain element is a bound value.
func (t ValidationTuple) HasValue() bool { return t.hasValue }

// Contexts returns a copy of the named graph contexts.
func (t ValidationTuple) Contexts() []string { return cloneContexts(t.contexts) }

// Len returns the chain length.
func (t ValidationTuple) Len() int { return len(t.chain) }

// TargetChain returns the chain. When includeValue is false and the tuple
// carries a value, the trailing value is dropped. The result is a copy.
func (t ValidationTuple) TargetChain(includeValue bool) []rdf.Value {
	if t.hasValue && !includeValue {
		return cloneChain(t.chain[:len(t.chain)-1])
	}
	return cloneChain(t.chain)
}

// Target returns the innermost target node: the last chain element that is
// not a bound value.
func (t ValidationTuple) Target() rdf.Value {
	if t.hasValue {
		return t.chain[len(t.chain)-2]
	}
	return t.chain[len(t.chain)-1]
}

// Value returns the bound value, or nil when the tuple has none.
func (t ValidationTuple) Value() rdf.Value {
	if !t.hasValue {
		return nil
	}
	return t.chain[len(t.chain)-1]
}

// SameTarget reports whether both tuples agree on every chain element
// except an optional trailing value.
func (t ValidationTuple) SameTarget(o ValidationTuple) bool {
	a := t.targetPrefix()
	b := o.targetPrefix()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !rdf.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Join appends the other tuple's bound value to this tuple's target chain.
// Defined only for same-target tuples carrying a value on the right;
// anything else is a plan compiler bug.
func (t ValidationTuple) Join(o ValidationTuple) ValidationTuple {
	if !t.SameTarget(o) {
		panic(fmt.Sprintf("tuple: join of non-same-target tuples %s and %s", t, o))
	}
	if !o.hasValue {
		panic(fmt.Sprintf("tuple: join right side %s has no value", o))
	}
	chain := append(t.TargetChain(false), o.Value())
	return NewWithValue(t.scope, t.contexts, chain...)
}

// Equal reports full structural equality: chain, scope, value flag, and
// contexts.
func (t ValidationTuple) Equal(o ValidationTuple) bool {
	return t.Key() == o.Key()
}

// Key returns a canonical string identifying the tuple structurally.
// Suitable as a map key for dedup sets.
func (t ValidationTuple) Key() string {
	var b strings.Builder
	b.WriteString(t.scope.String())
	if t.hasValue {
		b.WriteString("|v|")
	} else {
		b.WriteString("|t|")
	}
	for _, v := range t.chain {
		b.WriteString(v.String())
		b.WriteByte(' ')
	}
	b.WriteByte('[')
	b.WriteString(strings.Join(t.contexts, ","))
	b.WriteByte(']')
	return b.String()
}

// TargetKey returns a canonical string identifying only the target prefix.
// Two tuples are same-target iff their TargetKeys are equal.
func (t ValidationTuple) TargetKey() string {
	var b strings.Builder
	for _, v := range t.targetPrefix() {
		b.WriteString(v.String())
		b.WriteByte(' ')
	}
	return b.String()
}

// CompareTarget orders tuples by target prefix, element-wise. Used to sort
// materialized streams so same-target tuples become contiguous.
func CompareTarget(a, b ValidationTuple) int {
	ac := a.targetPrefix()
	bc := b.targetPrefix()
	for i := 0; i < len(ac) && i < len(bc); i++ {
		if c := rdf.Compare(ac[i], bc[i]); c != 0 {
			return c
		}
	}
	return len(ac) - len(bc)
}

// String renders the tuple for diagnostics and error messages.
func (t ValidationTuple) String() string {
	parts := make([]string, len(t.chain))
	for i, v := range t.chain {
		parts[i] = v.String()
	}
	suffix := ""
	if t.hasValue {
		suffix = " value"
	}
	return fmt.Sprintf("Tuple{[%s] %s%s}", strings.Join(parts, ", "), t.scope, suffix)
}

func (t ValidationTuple) targetPrefix() []rdf.Value {
	if t.hasValue {
		return t.chain[:len(t.chain)-1]
	}
	return t.chain
}

func cloneChain(chain []rdf.Value) []rdf.Value {
	out := make([]rdf.Value, len(chain))
	copy(out, chain)
	return out
}

func cloneContexts(contexts []string) []string {
	if len(contexts) == 0 {
		return nil
	}
	out := make([]string, len(contexts))
	copy(out, contexts)
	return out
}
