// Package tuple defines ValidationTuple, the unit of data flowing through
// the validation plan engine.
//
// A tuple carries an ordered, non-empty chain of graph values (the target
// chain, root to leaf), a scope tag, a flag marking whether the trailing
// chain element is a bound value rather than a target node, and the named
// graph contexts the tuple is scoped to.
//
// Tuples are immutable: every operation returns a new tuple. Operators
// joining or re-shaping tuples must never mutate their inputs.
//
// Two tuples are "same target" when their chains agree on every element
// except a value-only trailing element. Join is defined only for
// same-target tuples; violating that is a plan compiler bug and panics.
package tuple
