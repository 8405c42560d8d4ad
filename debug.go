package svh

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const debugIndentWidth = 2

// WriteTree writes an indentation-nested listing of the subtree rooted at
// this node: each line names a child's type identity, followed by that
// child's own children at increased indentation. Children are ordered by
// type identity so output is deterministic. The format is informational
// only, not meant for machine parsing.
func (s *Scope) WriteTree(w io.Writer, indent int) error {
	keys := make([]TypeKey, 0, len(s.children))
	for key := range s.children {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	prefix := strings.Repeat(" ", indent)
	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, key); err != nil {
			return err
		}
		if err := s.children[key].WriteTree(w, indent+debugIndentWidth); err != nil {
			return err
		}
	}
	return nil
}

// DebugLog dumps the subtree to the tree's debug writer, standard error by
// default.
func (s *Scope) DebugLog(indent int) {
	w := io.Writer(os.Stderr)
	if s.cfg != nil && s.cfg.debugWriter != nil {
		w = s.cfg.debugWriter
	}
	_ = s.WriteTree(w, indent)
}
