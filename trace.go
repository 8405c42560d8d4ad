package svh

import (
	"encoding/json"
)

// Trace captures provenance information for the effective settings visible
// from one scope node.
type Trace struct {
	Origin  string       `json:"origin"`
	Entries []Provenance `json:"entries"`
}

// Provenance details which scope supplies the effective value for one type.
type Provenance struct {
	Key        string `json:"key"`
	Type       string `json:"type"`
	Path       string `json:"path"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Depth      int    `json:"depth"`
	Value      any    `json:"value,omitempty"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated
// via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
