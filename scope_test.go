package svh

import (
	"errors"
	"testing"

	"github.com/Sven-vh/svh-scope/pkg/activity"
)

type alphaSettings struct {
	Limit  int
	Labels map[string]string
}

type betaSettings struct {
	Name string
}

type gammaSettings struct {
	Enabled bool
}

func TestGetAutoInsertsAtRoot(t *testing.T) {
	root := NewRoot()

	entry, err := Get[alphaSettings](root)
	if err != nil {
		t.Fatalf("get with auto-insert: %v", err)
	}
	if entry.Value.Limit != 0 || entry.Value.Labels != nil {
		t.Fatalf("expected default payload, got %+v", entry.Value)
	}
	if entry.Scope().IsRoot() {
		t.Fatalf("auto-inserted entry should be a child of the root")
	}

	again, err := Get[alphaSettings](root)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.Scope() != entry.Scope() {
		t.Fatalf("expected the auto-inserted node to be reused")
	}
}

func TestGetFailsWhenAutoInsertDisabled(t *testing.T) {
	root := NewRoot(WithAutoInsert(false))

	if _, err := Get[betaSettings](root); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := Push[betaSettings](root); err != nil {
		t.Fatalf("push: %v", err)
	}
	entry, err := Get[betaSettings](root)
	if err != nil {
		t.Fatalf("get after push: %v", err)
	}
	if entry.Value == nil {
		t.Fatalf("expected payload after push")
	}
}

func TestGetOnChildNeverAutoInserts(t *testing.T) {
	root := NewRoot()
	child, err := PushDefault[gammaSettings](root)
	if err != nil {
		t.Fatalf("push child: %v", err)
	}

	if _, err := Get[alphaSettings](child.Scope()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from non-root get, got %v", err)
	}
	if _, ok := Find[alphaSettings](root); ok {
		t.Fatalf("failed get must not create entries anywhere")
	}
}

func TestPushIsIdempotent(t *testing.T) {
	root := NewRoot()

	first, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	first.Value.Limit = 42

	second, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("re-push: %v", err)
	}
	if first.Scope() != second.Scope() {
		t.Fatalf("expected identical node on re-push")
	}
	if second.Value.Limit != 42 {
		t.Fatalf("re-push must not touch the payload, got %d", second.Value.Limit)
	}
}

func TestPushInheritsNearestAncestorByValue(t *testing.T) {
	root := NewRoot()

	parent, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push at root: %v", err)
	}
	parent.Value.Limit = 5
	parent.Value.Labels = map[string]string{"env": "prod"}

	gamma, err := PushDefault[gammaSettings](root)
	if err != nil {
		t.Fatalf("push gamma: %v", err)
	}
	child, err := Push[alphaSettings](gamma.Scope())
	if err != nil {
		t.Fatalf("push inherited: %v", err)
	}

	if child.Scope() == parent.Scope() {
		t.Fatalf("inherited entry must be a fresh node")
	}
	if child.Value.Limit != 5 || child.Value.Labels["env"] != "prod" {
		t.Fatalf("expected inherited payload, got %+v", child.Value)
	}

	child.Value.Limit = 9
	child.Value.Labels["env"] = "qa"
	if parent.Value.Limit != 5 || parent.Value.Labels["env"] != "prod" {
		t.Fatalf("child mutation leaked into ancestor: %+v", parent.Value)
	}

	parent.Value.Limit = 7
	if child.Value.Limit != 9 {
		t.Fatalf("ancestor mutation leaked into child: %+v", child.Value)
	}
}

func TestInheritanceIsShallow(t *testing.T) {
	root := NewRoot()

	alpha, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push alpha: %v", err)
	}
	if _, err := Push[betaSettings](alpha.Scope()); err != nil {
		t.Fatalf("push nested beta: %v", err)
	}

	sibling, err := PushDefault[gammaSettings](root)
	if err != nil {
		t.Fatalf("push sibling: %v", err)
	}
	inherited, err := Push[alphaSettings](sibling.Scope())
	if err != nil {
		t.Fatalf("push inherited alpha: %v", err)
	}

	// Beta lives under the root's alpha node, which is not on the new
	// node's ancestor chain, and the inherited copy starts childless.
	if _, ok := Find[betaSettings](inherited.Scope()); ok {
		t.Fatalf("inheritance must not replicate grandchildren")
	}
}

func TestPushDefaultResetsPayloadAndSubtree(t *testing.T) {
	root := NewRoot()

	alpha, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	alpha.Value.Limit = 11
	if _, err := Push[betaSettings](alpha.Scope()); err != nil {
		t.Fatalf("push nested: %v", err)
	}
	oldSnapshot := alpha.Scope().SnapshotID()

	reset, err := PushDefault[alphaSettings](root)
	if err != nil {
		t.Fatalf("push default: %v", err)
	}
	if reset.Value.Limit != 0 {
		t.Fatalf("expected fresh default payload, got %+v", reset.Value)
	}
	if _, ok := Find[betaSettings](reset.Scope()); ok {
		t.Fatalf("push default must discard the nested subtree")
	}
	if reset.Scope().SnapshotID() == oldSnapshot {
		t.Fatalf("expected a new snapshot id after reset")
	}
}

func TestPushDefaultResetsExistingReferencesInPlace(t *testing.T) {
	root := NewRoot()

	entry, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	entry.Value.Limit = 7
	entry.Value.Labels = map[string]string{"env": "prod"}

	reset, err := PushDefault[alphaSettings](root)
	if err != nil {
		t.Fatalf("push default: %v", err)
	}
	if reset.Value != entry.Value {
		t.Fatalf("reset must reuse the existing allocation")
	}
	if entry.Value.Limit != 0 || entry.Value.Labels != nil {
		t.Fatalf("earlier reference must observe the reset, got %+v", entry.Value)
	}
}

func TestTypeMismatchSurfacesAcrossAccessors(t *testing.T) {
	root := NewRoot()

	entry, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	// Corrupt the key-to-payload mapping directly; the public API cannot
	// produce this state.
	entry.Scope().payload = new(betaSettings)

	if _, err := Get[alphaSettings](root); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch from get, got %v", err)
	}
	if _, err := Lookup[alphaSettings](root); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch from lookup, got %v", err)
	}
	if _, err := Value[alphaSettings](entry.Scope()); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch from value, got %v", err)
	}
	if _, ok := Find[alphaSettings](root); ok {
		t.Fatalf("find must report absence instead of a mismatched entry")
	}
}

func TestPushDefaultDoesNotConsultAncestors(t *testing.T) {
	root := NewRoot()

	parent, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	parent.Value.Limit = 5

	gamma, err := PushDefault[gammaSettings](root)
	if err != nil {
		t.Fatalf("push gamma: %v", err)
	}
	child, err := PushDefault[alphaSettings](gamma.Scope())
	if err != nil {
		t.Fatalf("push default child: %v", err)
	}
	if child.Value.Limit != 0 {
		t.Fatalf("push default must ignore ancestor values, got %d", child.Value.Limit)
	}
}

func TestPopWalksTowardRoot(t *testing.T) {
	root := NewRoot()

	if _, err := root.Pop(1); !errors.Is(err, ErrNoParent) {
		t.Fatalf("expected ErrNoParent at root, got %v", err)
	}

	level1, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	level2, err := Push[betaSettings](level1.Scope())
	if err != nil {
		t.Fatalf("push nested: %v", err)
	}

	parent, err := level2.Scope().Pop(1)
	if err != nil {
		t.Fatalf("pop(1): %v", err)
	}
	if parent != level1.Scope() {
		t.Fatalf("pop(1) must return the immediate parent")
	}

	top, err := level2.Scope().Pop(2)
	if err != nil {
		t.Fatalf("pop(2): %v", err)
	}
	if top != root {
		t.Fatalf("pop(2) must return the root")
	}

	if _, err := level2.Scope().Pop(3); !errors.Is(err, ErrNoParent) {
		t.Fatalf("expected ErrNoParent when overshooting, got %v", err)
	}
	if _, err := level2.Scope().Pop(0); err == nil {
		t.Fatalf("expected error for non-positive count")
	}
}

func TestFindNeverCreatesAndNeverFails(t *testing.T) {
	root := NewRoot(WithAutoInsert(false))

	if _, ok := Find[alphaSettings](root); ok {
		t.Fatalf("expected not found on empty tree")
	}
	if _, err := Get[alphaSettings](root); !errors.Is(err, ErrNotFound) {
		t.Fatalf("find must not have created an entry: %v", err)
	}

	pushed, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	gamma, err := PushDefault[gammaSettings](root)
	if err != nil {
		t.Fatalf("push gamma: %v", err)
	}

	found, ok := Find[alphaSettings](gamma.Scope())
	if !ok {
		t.Fatalf("expected ancestor entry to be found")
	}
	if found.Scope() != pushed.Scope() {
		t.Fatalf("find must return the ancestor node itself")
	}
}

func TestLookupNeverAutoInserts(t *testing.T) {
	root := NewRoot()

	if _, err := Lookup[alphaSettings](root); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from read-only lookup, got %v", err)
	}
	if _, ok := Find[alphaSettings](root); ok {
		t.Fatalf("lookup must not create entries")
	}

	if _, err := Push[alphaSettings](root); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := Lookup[alphaSettings](root); err != nil {
		t.Fatalf("lookup after push: %v", err)
	}
}

func TestInheritanceEndToEnd(t *testing.T) {
	root := NewRoot()

	a, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push alpha: %v", err)
	}
	a.Value.Limit = 5

	gamma, err := PushDefault[gammaSettings](root)
	if err != nil {
		t.Fatalf("push gamma: %v", err)
	}
	c1, err := Push[alphaSettings](gamma.Scope())
	if err != nil {
		t.Fatalf("push inherited: %v", err)
	}

	if c1.Value.Limit != 5 {
		t.Fatalf("expected inherited value 5, got %d", c1.Value.Limit)
	}
	if c1.Scope() == a.Scope() {
		t.Fatalf("expected a distinct node for the inherited copy")
	}

	c1.Value.Limit = 9
	effective, err := Get[alphaSettings](root)
	if err != nil {
		t.Fatalf("get at root: %v", err)
	}
	if effective.Value.Limit != 5 {
		t.Fatalf("root value must be unaffected, got %d", effective.Value.Limit)
	}
}

func TestPushChainNestsScopes(t *testing.T) {
	root := NewRoot()

	node, err := root.PushChain(KeyOf[alphaSettings](), KeyOf[betaSettings]())
	if err != nil {
		t.Fatalf("push chain: %v", err)
	}
	if node.Key() != KeyOf[betaSettings]() {
		t.Fatalf("expected chain to return the last pushed scope, got %s", node.Key())
	}

	parent, err := node.Pop(1)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if parent.Key() != KeyOf[alphaSettings]() {
		t.Fatalf("each push must nest in the previous result, got %s", parent.Key())
	}

	value, err := Value[betaSettings](node)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value.Name != "" {
		t.Fatalf("expected default payload, got %+v", value)
	}
}

func TestGetChainResolvesRelativeToPreviousScope(t *testing.T) {
	root := NewRoot(WithAutoInsert(false))

	alpha, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push alpha: %v", err)
	}
	beta, err := Push[betaSettings](root)
	if err != nil {
		t.Fatalf("push beta: %v", err)
	}

	// Beta is not a child of the alpha scope, but it sits on the alpha
	// scope's ancestor chain, so the chained resolution finds it.
	node, err := root.GetChain(KeyOf[alphaSettings](), KeyOf[betaSettings]())
	if err != nil {
		t.Fatalf("get chain: %v", err)
	}
	if node != beta.Scope() {
		t.Fatalf("expected the root's beta node")
	}

	nested, err := Push[betaSettings](alpha.Scope())
	if err != nil {
		t.Fatalf("push nested beta: %v", err)
	}
	node, err = root.GetChain(KeyOf[alphaSettings](), KeyOf[betaSettings]())
	if err != nil {
		t.Fatalf("get chain after nesting: %v", err)
	}
	if node != nested.Scope() {
		t.Fatalf("nearer beta must win once nested under the alpha scope")
	}
}

func TestPathIdentifiesNodes(t *testing.T) {
	root := NewRoot()
	if root.Path() != "/" {
		t.Fatalf("expected root path /, got %q", root.Path())
	}

	node, err := root.PushChain(KeyOf[gammaSettings](), KeyOf[alphaSettings]())
	if err != nil {
		t.Fatalf("push chain: %v", err)
	}
	if node.Path() != "/gammaSettings/alphaSettings" {
		t.Fatalf("unexpected path %q", node.Path())
	}
}

func TestScopeLifecycleEventsEmitted(t *testing.T) {
	capture := &activity.CaptureHook{}
	root := NewRoot(WithActivityHooks(activity.Hooks{capture}))

	alpha, err := Push[alphaSettings](root)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	// The reset below mints a new snapshot ID on the same node, so the
	// creation event must be checked against the ID as it was at push time.
	createdID := alpha.Scope().SnapshotID()
	gamma, err := PushDefault[gammaSettings](root)
	if err != nil {
		t.Fatalf("push gamma: %v", err)
	}
	if _, err := Push[alphaSettings](gamma.Scope()); err != nil {
		t.Fatalf("push inherited: %v", err)
	}
	reset, err := PushDefault[alphaSettings](root)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := Get[betaSettings](root); err != nil {
		t.Fatalf("auto-insert get: %v", err)
	}

	wantVerbs := []string{
		activity.VerbScopeCreate,
		activity.VerbScopeCreate,
		activity.VerbScopeInherit,
		activity.VerbScopeReset,
		activity.VerbScopeAutoInsert,
	}
	if len(capture.Events) != len(wantVerbs) {
		t.Fatalf("expected %d events, got %d: %+v", len(wantVerbs), len(capture.Events), capture.Events)
	}
	for i, want := range wantVerbs {
		if capture.Events[i].Verb != want {
			t.Fatalf("event %d: expected verb %q, got %q", i, want, capture.Events[i].Verb)
		}
	}
	if capture.Events[0].ObjectID != createdID {
		t.Fatalf("expected the creation-time snapshot id as object id")
	}
	if capture.Events[3].ObjectID != reset.Scope().SnapshotID() {
		t.Fatalf("expected the reset event to carry the fresh snapshot id")
	}
	if capture.Events[2].Metadata["path"] != "/gammaSettings/alphaSettings" {
		t.Fatalf("unexpected event path: %+v", capture.Events[2].Metadata)
	}
}
