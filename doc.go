// Package svh implements a hierarchical, type-keyed settings registry.
//
// A tree of scopes holds at most one settings payload per distinct Go type at
// each node. Child scopes inherit the nearest ancestor's payload of a given
// type by value-copy the first time that type is pushed in the child, so
// local mutation never leaks back up the tree. Lookups fall back to the
// nearest enclosing scope that defines the requested type.
//
// Because Go methods cannot carry type parameters, the typed operations are
// package-level generics that take the scope to operate on:
//
//	root := svh.NewRoot()
//	alpha, _ := svh.Push[Alpha](root)
//	alpha.Value.Limit = 5
//
//	child, _ := svh.PushDefault[Gamma](root)
//	inherited, _ := svh.Push[Alpha](child.Scope())
//	// inherited.Value.Limit == 5, detached from root's Alpha
//
// Scopes can additionally answer expression queries against the effective
// settings visible from a node, using expr-lang/expr, cel-go, or goja
// (behind the js_eval build tag).
package svh
