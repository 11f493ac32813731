package tree

import "strconv"

// FlatRecord is one logical record recovered from a payload: field name to
// the (possibly still nested) node that first defined it.
type FlatRecord map[string]Node

// Text renders the named field as a string, if present and scalar.
func (r FlatRecord) Text(keys ...string) (string, bool) {
	for _, k := range keys {
		if n, ok := r[k]; ok {
			if s, ok := n.Text(); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Flatten merges a node into a single FlatRecord. Map keys are copied with
// first-writer-wins semantics, sequences are walked element by element, and
// scalars are ignored. Flatten never fails; an absent node yields an empty
// record.
//
// The recursion descends through sequences only: upstream fragments a record
// into sibling maps (sometimes nested one list deep), but a map value is the
// field's content, not another fragment.
func Flatten(n Node) FlatRecord {
	rec := make(FlatRecord)
	flattenInto(n, rec)
	return rec
}

func flattenInto(n Node, rec FlatRecord) {
	switch n.kind {
	case KindMap:
		for _, k := range n.sortedKeys() {
			if _, exists := rec[k]; !exists {
				rec[k] = n.fields[k]
			}
		}
	case KindSequence:
		for _, item := range n.items {
			flattenInto(item, rec)
		}
	}
}

// FindAll returns one FlatRecord for every map anywhere in the tree that
// carries entityKey, in deterministic traversal order. It handles the three
// collection shapes the upstream API is known to emit: a direct field map, a
// sequence of fragment maps, and a stringified-integer-keyed map with a
// non-member "count" sibling.
func FindAll(n Node, entityKey string) []FlatRecord {
	var out []FlatRecord
	walkMaps(n, func(m Node) {
		if v, ok := m.fields[entityKey]; ok {
			out = append(out, Flatten(v))
		}
	})
	return out
}

// walkMaps visits every map node depth-first in deterministic order.
func walkMaps(n Node, visit func(Node)) {
	switch n.kind {
	case KindMap:
		visit(n)
		for _, k := range n.sortedKeys() {
			walkMaps(n.fields[k], visit)
		}
	case KindSequence:
		for _, item := range n.items {
			walkMaps(item, visit)
		}
	}
}

// FindFirst locates the first scalar value reachable under any of the
// candidate keys, depth-first. A candidate key only matches when its value is
// a non-null scalar; otherwise the search continues into that value. Returns
// the zero Node and false when nothing matches.
func FindFirst(n Node, candidateKeys []string) (Node, bool) {
	switch n.kind {
	case KindMap:
		for _, key := range candidateKeys {
			if v, ok := n.fields[key]; ok && v.kind == KindScalar && v.scalar != nil {
				return v, true
			}
		}
		for _, k := range n.sortedKeys() {
			if v, ok := FindFirst(n.fields[k], candidateKeys); ok {
				return v, true
			}
		}
	case KindSequence:
		for _, item := range n.items {
			if v, ok := FindFirst(item, candidateKeys); ok {
				return v, true
			}
		}
	}
	return Node{}, false
}

// FirstText is FindFirst rendered as a string.
func FirstText(n Node, candidateKeys ...string) (string, bool) {
	v, ok := FindFirst(n, candidateKeys)
	if !ok {
		return "", false
	}
	return v.Text()
}

// Elements normalizes the three collection shapes to an ordered slice:
// sequences yield their items, maps whose keys are all stringified integers
// (a "count" sibling is tolerated and skipped) yield their values in numeric
// key order, and anything else yields itself as a single element. Invalid
// nodes yield nil.
func Elements(n Node) []Node {
	switch n.kind {
	case KindSequence:
		return n.items
	case KindMap:
		indexed := make([]string, 0, len(n.fields))
		for k := range n.fields {
			if k == "count" {
				continue
			}
			if _, err := strconv.Atoi(k); err != nil {
				return []Node{n}
			}
			indexed = append(indexed, k)
		}
		if len(indexed) == 0 {
			return []Node{n}
		}
		out := make([]Node, 0, len(indexed))
		for _, k := range n.sortedKeys() {
			if k == "count" {
				continue
			}
			out = append(out, n.fields[k])
		}
		return out
	case KindScalar:
		return []Node{n}
	default:
		return nil
	}
}
