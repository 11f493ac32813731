// Package tree models the fantasy API's loosely-shaped JSON payloads as an
// explicit tagged union and provides the generic primitives every extractor
// in this codebase is built from.
//
// Conventions:
//   - Nodes are immutable once decoded; all functions here are pure.
//   - Map insertion order carries no meaning upstream, so every traversal
//     iterates map keys in a deterministic, numeric-aware order.
package tree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind discriminates the three value shapes a payload node can take.
type Kind uint8

const (
	// KindInvalid is the zero Node: absent or undecodable.
	KindInvalid Kind = iota
	// KindScalar holds a string, float64, bool, or nil.
	KindScalar
	// KindSequence holds an ordered list of child nodes.
	KindSequence
	// KindMap holds string-keyed child nodes.
	KindMap
)

// Node is a single value in a payload tree. The zero value is the invalid
// node and is safe to traverse.
type Node struct {
	kind   Kind
	scalar any
	items  []Node
	fields map[string]Node
}

// Scalar wraps a raw scalar value (string, float64, bool, or nil) in a Node.
func Scalar(v any) Node {
	return Node{kind: KindScalar, scalar: v}
}

// Sequence builds a sequence node from the given items.
func Sequence(items ...Node) Node {
	return Node{kind: KindSequence, items: items}
}

// Map builds a map node from the given fields.
func Map(fields map[string]Node) Node {
	return Node{kind: KindMap, fields: fields}
}

// Kind reports the node's shape.
func (n Node) Kind() Kind { return n.kind }

// IsZero reports whether the node is the invalid zero value.
func (n Node) IsZero() bool { return n.kind == KindInvalid }

// Value returns the scalar payload, or nil for non-scalar nodes.
func (n Node) Value() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.scalar
}

// Items returns the sequence elements, or nil for non-sequence nodes.
func (n Node) Items() []Node {
	if n.kind != KindSequence {
		return nil
	}
	return n.items
}

// Field looks up a key on a map node.
func (n Node) Field(key string) (Node, bool) {
	if n.kind != KindMap {
		return Node{}, false
	}
	v, ok := n.fields[key]
	return v, ok
}

// Len returns the number of sequence items or map fields.
func (n Node) Len() int {
	switch n.kind {
	case KindSequence:
		return len(n.items)
	case KindMap:
		return len(n.fields)
	default:
		return 0
	}
}

// Text renders a scalar node as a display string. Numbers are rendered
// without a trailing ".0" so stat identifiers like 5 and "5" compare equal.
func (n Node) Text() (string, bool) {
	if n.kind != KindScalar || n.scalar == nil {
		return "", false
	}
	switch v := n.scalar.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// UnmarshalJSON decodes arbitrary JSON into the tagged union. Objects become
// maps, arrays become sequences, everything else a scalar.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode tree node: %w", err)
	}
	*n = fromAny(raw)
	return nil
}

// Parse decodes a full JSON document into a Node.
func Parse(data []byte) (Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return Node{}, err
	}
	return n, nil
}

func fromAny(v any) Node {
	switch t := v.(type) {
	case map[string]any:
		fields := make(map[string]Node, len(t))
		for k, child := range t {
			fields[k] = fromAny(child)
		}
		return Node{kind: KindMap, fields: fields}
	case []any:
		items := make([]Node, len(t))
		for i, child := range t {
			items[i] = fromAny(child)
		}
		return Node{kind: KindSequence, items: items}
	default:
		return Node{kind: KindScalar, scalar: t}
	}
}

// sortedKeys returns map keys in deterministic order: keys that parse as
// integers first, in numeric order, then the rest lexicographically. This
// keeps stringified-index maps ("0","1",...,"count") in their natural order.
func (n Node) sortedKeys() []string {
	if n.kind != KindMap {
		return nil
	}
	numeric := make([]string, 0, len(n.fields))
	other := make([]string, 0)
	for k := range n.fields {
		if _, err := strconv.Atoi(k); err == nil {
			numeric = append(numeric, k)
		} else {
			other = append(other, k)
		}
	}
	sort.Slice(numeric, func(i, j int) bool {
		a, _ := strconv.Atoi(numeric[i])
		b, _ := strconv.Atoi(numeric[j])
		return a < b
	})
	sort.Strings(other)
	return append(numeric, other...)
}
