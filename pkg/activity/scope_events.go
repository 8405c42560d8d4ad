package activity

import (
	"strings"
	"time"
)

// Verbs emitted for scope tree lifecycle transitions.
const (
	// VerbScopeCreate marks a node created with a default payload.
	VerbScopeCreate = "scope.created"
	// VerbScopeInherit marks a node created by value-copy from an ancestor.
	VerbScopeInherit = "scope.inherited"
	// VerbScopeReset marks a node whose payload and subtree were replaced
	// with a fresh default.
	VerbScopeReset = "scope.reset"
	// VerbScopeAutoInsert marks a default payload created at the root by a
	// failed lookup.
	VerbScopeAutoInsert = "scope.autoinserted"
)

// ScopeEventInput describes the common fields for scope lifecycle events.
type ScopeEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	SnapshotID string
	Path       string
	TypeName   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildScopeEvent constructs a normalized activity event for a scope
// lifecycle transition. The node's snapshot ID becomes the object ID, with
// the node path as fallback.
func BuildScopeEvent(verb string, input ScopeEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Path != "" {
		metadata = ensureMetadata(metadata)
		metadata["path"] = input.Path
	}
	if input.TypeName != "" {
		metadata = ensureMetadata(metadata)
		metadata["type"] = input.TypeName
	}
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.SnapshotID
	}

	objectID := strings.TrimSpace(input.SnapshotID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Path)
	}
	if objectID == "" {
		objectID = "scope"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: "scope",
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
