package svh

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sven-vh/svh-scope/pkg/activity"
	"github.com/google/uuid"
)

// Scope is a node in the settings tree. Each node owns at most one child per
// TypeKey and keeps a non-owning reference to its parent (nil at the root).
// A non-root node carries the settings payload it was created for; the root
// carries none and only anchors the tree together with its configuration.
//
// A Scope is not safe for concurrent use. Callers that share a tree across
// goroutines must serialize access themselves.
type Scope struct {
	parent     *Scope
	children   map[TypeKey]*Scope
	key        TypeKey
	payload    any
	snapshotID string
	cfg        *treeConfig
}

// NewRoot constructs an empty tree root. Auto-insert is enabled unless
// disabled via WithAutoInsert(false).
func NewRoot(opts ...Option) *Scope {
	cfg := applyOptions(opts)
	return &Scope{
		children:   make(map[TypeKey]*Scope),
		snapshotID: uuid.NewString(),
		cfg:        cfg,
	}
}

// IsRoot reports whether this node has no parent.
func (s *Scope) IsRoot() bool {
	return s.parent == nil
}

// Key returns the type identity this node was created for. The root returns
// a zero key.
func (s *Scope) Key() TypeKey {
	return s.key
}

// SnapshotID returns the identifier minted when this node's payload was
// created or last reset. It changes on PushDefault.
func (s *Scope) SnapshotID() string {
	return s.snapshotID
}

// Pop returns the ancestor count levels up. It returns a view onto an
// existing node, never an allocation, and fails with ErrNoParent at the step
// where the walk would pass the root.
func (s *Scope) Pop(count int) (*Scope, error) {
	if count < 1 {
		return nil, fmt.Errorf("svh: pop count must be positive, got %d", count)
	}
	if s.parent == nil {
		return nil, ErrNoParent
	}
	if count == 1 {
		return s.parent, nil
	}
	return s.parent.Pop(count - 1)
}

// Path returns the slash-joined type identities from the root down to this
// node. The root's path is "/".
func (s *Scope) Path() string {
	if s.parent == nil {
		return "/"
	}
	var names []string
	for node := s; node.parent != nil; node = node.parent {
		names = append(names, node.key.Name())
	}
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(names[i])
	}
	return b.String()
}

// PushChain pushes the supplied keys in order, each in the scope created or
// returned by the previous push, and returns the last pushed scope. It is
// the runtime form of nested typed pushes.
func (s *Scope) PushChain(keys ...TypeKey) (*Scope, error) {
	if len(keys) == 0 {
		return s, nil
	}
	node := s
	for _, key := range keys {
		next, err := node.pushKey(key)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

// GetChain resolves the supplied keys in order. Each key after the first is
// resolved starting from the scope the previous key resolved to, searching
// that scope and its ancestors, not the original caller's chain.
func (s *Scope) GetChain(keys ...TypeKey) (*Scope, error) {
	if len(keys) == 0 {
		return s, nil
	}
	node := s
	for _, key := range keys {
		next, err := node.getKey(key)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

// findKey searches this node's children, then ancestors, for key. It never
// mutates the tree.
func (s *Scope) findKey(key TypeKey) *Scope {
	for node := s; node != nil; node = node.parent {
		if child, ok := node.children[key]; ok {
			return child
		}
	}
	return nil
}

// pushKey ensures a child keyed by key exists at this node. A pre-existing
// child is returned unchanged. Otherwise the nearest ancestor payload is
// value-copied, or a fresh default is constructed when no ancestor holds the
// type. Inheritance is shallow: the new child starts with no children of its
// own.
func (s *Scope) pushKey(key TypeKey) (*Scope, error) {
	if child, ok := s.children[key]; ok {
		return child, nil
	}

	if s.parent != nil {
		if found := s.parent.findKey(key); found != nil {
			child := s.emplace(key, clonePayload(found.payload))
			s.emit(activity.VerbScopeInherit, child)
			return child, nil
		}
	}

	return s.emplaceDefault(key, activity.VerbScopeCreate)
}

// resetKey unconditionally (re)places this node's child for key with a fresh
// default payload, discarding the prior value and its entire subtree. The
// payload is zeroed in place, so typed references handed out earlier observe
// the reset. The ancestor chain is never consulted.
func (s *Scope) resetKey(key TypeKey) (*Scope, error) {
	if child, ok := s.children[key]; ok {
		if !resetPayloadInPlace(child.payload) {
			factory, ok := factoryFor(key)
			if !ok {
				return nil, fmt.Errorf("svh: no constructor registered for %s", key)
			}
			child.payload = factory()
		}
		child.children = make(map[TypeKey]*Scope)
		child.snapshotID = uuid.NewString()
		s.emit(activity.VerbScopeReset, child)
		return child, nil
	}
	return s.emplaceDefault(key, activity.VerbScopeCreate)
}

// getKey resolves the effective node for key: this node first, then
// ancestors. Only a lookup issued at the root may auto-insert a default.
func (s *Scope) getKey(key TypeKey) (*Scope, error) {
	if found := s.findKey(key); found != nil {
		return found, nil
	}
	if s.parent == nil && s.cfg.autoInsert {
		child, err := s.emplaceDefault(key, activity.VerbScopeAutoInsert)
		if err != nil {
			return nil, err
		}
		return child, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// lookupKey is the read-only variant of getKey: it never auto-inserts,
// regardless of configuration.
func (s *Scope) lookupKey(key TypeKey) (*Scope, error) {
	if found := s.findKey(key); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

func (s *Scope) emplaceDefault(key TypeKey, verb string) (*Scope, error) {
	factory, ok := factoryFor(key)
	if !ok {
		return nil, fmt.Errorf("svh: no constructor registered for %s", key)
	}
	child := s.emplace(key, factory())
	s.emit(verb, child)
	return child, nil
}

func (s *Scope) emplace(key TypeKey, payload any) *Scope {
	child := &Scope{
		parent:     s,
		children:   make(map[TypeKey]*Scope),
		key:        key,
		payload:    payload,
		snapshotID: uuid.NewString(),
		cfg:        s.cfg,
	}
	s.children[key] = child
	return child
}

func (s *Scope) emit(verb string, node *Scope) {
	if s.cfg == nil || !s.cfg.emitter.Enabled() {
		return
	}
	_ = s.cfg.emitter.Emit(context.Background(), activity.BuildScopeEvent(verb, activity.ScopeEventInput{
		SnapshotID: node.snapshotID,
		Path:       node.Path(),
		TypeName:   node.key.String(),
	}))
}
