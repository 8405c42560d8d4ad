package svh

import "fmt"

// Entry couples a scope node with its typed payload, the Go analog of "a
// settings type is-a scope": one return value gives both the mutable value
// and the node for further tree navigation.
type Entry[T any] struct {
	// Value points at the node's payload. Mutations are visible to every
	// later lookup that resolves to the same node.
	Value *T

	node *Scope
}

// Scope returns the underlying tree node.
func (e Entry[T]) Scope() *Scope {
	return e.node
}

// Push ensures a child of s typed for T exists and returns it. A child that
// already exists is returned unchanged. Otherwise the nearest ancestor
// holding a T contributes a value-copy, and failing that a default T is
// constructed. The new child starts with no children of its own.
func Push[T any](s *Scope) (Entry[T], error) {
	node, err := s.pushKey(KeyOf[T]())
	if err != nil {
		return Entry[T]{}, err
	}
	return entryFor[T](node)
}

// PushDefault unconditionally (re)places the T-child of s with a fresh
// default payload, discarding any prior value and any subtree nested under
// it. The payload is reset in place, so Entry values obtained before the
// reset see the fresh default through their Value pointer. Ancestors are
// never consulted.
func PushDefault[T any](s *Scope) (Entry[T], error) {
	node, err := s.resetKey(KeyOf[T]())
	if err != nil {
		return Entry[T]{}, err
	}
	return entryFor[T](node)
}

// Get resolves the effective T for s: this node first, then ancestors. When
// nothing on the chain holds a T, a lookup issued at the root auto-inserts a
// default there if the tree allows it; otherwise Get fails with ErrNotFound.
func Get[T any](s *Scope) (Entry[T], error) {
	node, err := s.getKey(KeyOf[T]())
	if err != nil {
		return Entry[T]{}, err
	}
	return entryFor[T](node)
}

// Lookup is the read-only variant of Get: the same ancestor search, but it
// never mutates the tree and never auto-inserts, regardless of the tree's
// auto-insert setting.
func Lookup[T any](s *Scope) (Entry[T], error) {
	node, err := s.lookupKey(KeyOf[T]())
	if err != nil {
		return Entry[T]{}, err
	}
	return entryFor[T](node)
}

// Find performs Get's ancestor search without ever creating nodes or
// failing: ok is false exactly when no node from s to the root holds a T.
func Find[T any](s *Scope) (Entry[T], bool) {
	node := s.findKey(KeyOf[T]())
	if node == nil {
		return Entry[T]{}, false
	}
	entry, err := entryFor[T](node)
	if err != nil {
		return Entry[T]{}, false
	}
	return entry, true
}

// Value returns the typed payload of a node previously obtained through
// PushChain or GetChain.
func Value[T any](s *Scope) (*T, error) {
	entry, err := entryFor[T](s)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func entryFor[T any](node *Scope) (Entry[T], error) {
	value, ok := node.payload.(*T)
	if !ok {
		return Entry[T]{}, fmt.Errorf("%w: entry for %s holds %s", ErrTypeMismatch, node.key, keyForValue(node.payload))
	}
	return Entry[T]{Value: value, node: node}, nil
}
