package svh

import (
	"reflect"
	"sync"
)

// TypeKey is a process-wide-stable identifier for a settings type. Pointer
// layers are stripped during normalization so T, *T, and **T all resolve to
// the same key. Keys are comparable and usable as map keys.
type TypeKey struct {
	rt reflect.Type
}

// KeyOf returns the TypeKey for T and registers T's default constructor in
// the process-wide type registry so runtime chained operations (PushChain,
// GetChain) can default-construct payloads from a key alone.
func KeyOf[T any]() TypeKey {
	rt := normalizeType(reflect.TypeOf((*T)(nil)).Elem())
	registerFactory(rt, func() any { return new(T) })
	return TypeKey{rt: rt}
}

// IsZero reports whether the key carries no type identity. The root scope
// node has a zero key.
func (k TypeKey) IsZero() bool {
	return k.rt == nil
}

// String returns the type identity for diagnostics.
func (k TypeKey) String() string {
	if k.rt == nil {
		return "<root>"
	}
	return k.rt.String()
}

// Name returns the unqualified type name, falling back to the full identity
// for unnamed types.
func (k TypeKey) Name() string {
	if k.rt == nil {
		return "<root>"
	}
	if name := k.rt.Name(); name != "" {
		return name
	}
	return k.rt.String()
}

func normalizeType(rt reflect.Type) reflect.Type {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

func keyForValue(payload any) TypeKey {
	return TypeKey{rt: normalizeType(reflect.TypeOf(payload))}
}

// typeRegistry maps normalized types to default constructors. Entries are
// written once per type and never change, so lock contention is irrelevant;
// the mutex only guards the map against concurrent registration from
// independent trees.
var typeRegistry = struct {
	mu        sync.RWMutex
	factories map[reflect.Type]func() any
}{factories: make(map[reflect.Type]func() any)}

func registerFactory(rt reflect.Type, factory func() any) {
	typeRegistry.mu.RLock()
	_, exists := typeRegistry.factories[rt]
	typeRegistry.mu.RUnlock()
	if exists {
		return
	}
	typeRegistry.mu.Lock()
	if _, exists := typeRegistry.factories[rt]; !exists {
		typeRegistry.factories[rt] = factory
	}
	typeRegistry.mu.Unlock()
}

func factoryFor(key TypeKey) (func() any, bool) {
	typeRegistry.mu.RLock()
	factory, ok := typeRegistry.factories[key.rt]
	typeRegistry.mu.RUnlock()
	return factory, ok
}
