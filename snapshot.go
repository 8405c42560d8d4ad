package svh

import (
	"reflect"
	"sort"
	"unicode"
	"unicode/utf8"
)

// Snapshot returns the effective settings visible from this node: for every
// type defined anywhere on the ancestor chain, the nearest payload wins. The
// result maps type slugs (lower-camel type names) to deep copies of the
// payload values, so callers and evaluators can never mutate the tree
// through it.
func (s *Scope) Snapshot() map[string]any {
	snapshot := make(map[string]any)
	for node := s; node != nil; node = node.parent {
		for key, child := range node.children {
			slug := typeSlug(key)
			if _, seen := snapshot[slug]; seen {
				continue
			}
			snapshot[slug] = payloadValue(clonePayload(child.payload))
		}
	}
	return snapshot
}

// TraceSnapshot reports, for each type visible from this node, the scope
// that supplies its effective value. Entries are sorted by type slug.
func (s *Scope) TraceSnapshot() Trace {
	trace := Trace{Origin: s.Path()}
	seen := make(map[string]struct{})
	depth := 0
	for node := s; node != nil; node = node.parent {
		for key, child := range node.children {
			slug := typeSlug(key)
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			trace.Entries = append(trace.Entries, Provenance{
				Key:        slug,
				Type:       key.String(),
				Path:       child.Path(),
				SnapshotID: child.snapshotID,
				Depth:      depth,
				Value:      payloadValue(clonePayload(child.payload)),
			})
		}
		depth++
	}
	sort.Slice(trace.Entries, func(i, j int) bool {
		return trace.Entries[i].Key < trace.Entries[j].Key
	})
	return trace
}

// typeSlug derives the snapshot key for a type: the unqualified name with
// its first rune lowered.
func typeSlug(key TypeKey) string {
	name := key.Name()
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// payloadValue dereferences the stored pointer so snapshots expose plain
// values.
func payloadValue(payload any) any {
	if payload == nil {
		return nil
	}
	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return payload
}
