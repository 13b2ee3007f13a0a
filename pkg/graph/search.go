package graph

import "strings"

// FindPathMatching searches forward from start for a chain of nodes whose
// concatenated sequences spell target. The search begins at start's
// successors, so start itself is not part of the match.
//
// Each step consumes one node's sequence as a literal, case-insensitive
// prefix of the remaining target. Zero-length nodes are consumed without
// advancing. The search is a depth-first search with backtracking, run on an
// explicit stack; (node, position) pairs already explored are not revisited.
//
// The returned path has leading and trailing zero-length nodes trimmed. It
// returns false if no path consumes the whole target or target is empty.
func (m *MutableGraph) FindPathMatching(start uint32, target string) ([]uint32, bool) {
	return m.FindPathMatchingFunc(start, target, nil)
}

// FindPathMatchingFunc is [MutableGraph.FindPathMatching] restricted to the
// nodes for which allow returns true. A nil allow admits every node.
func (m *MutableGraph) FindPathMatchingFunc(start uint32, target string, allow func(id uint32) bool) ([]uint32, bool) {
	if target == "" {
		return nil, false
	}

	type frame struct {
		node  uint32
		pos   int
		depth int
	}
	type state struct {
		node uint32
		pos  int
	}

	var (
		path  []uint32
		stack []frame
		seen  = make(map[state]bool)
	)
	push := func(from uint32, pos, depth int) {
		succ := m.edges[from]
		for i := len(succ) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: succ[i], pos: pos, depth: depth})
		}
	}
	push(start, 0, 0)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[state{f.node, f.pos}] {
			continue
		}
		seen[state{f.node, f.pos}] = true
		if allow != nil && !allow(f.node) {
			continue
		}

		seq := m.seqs[f.node]
		end := f.pos + len(seq)
		if end > len(target) || !strings.EqualFold(target[f.pos:end], seq) {
			continue
		}

		path = append(path[:f.depth], f.node)
		if end == len(target) {
			return trimPlaceholders(m, path), true
		}
		push(f.node, end, len(path))
	}
	return nil, false
}

func trimPlaceholders(m *MutableGraph, path []uint32) []uint32 {
	lo, hi := 0, len(path)
	for lo < hi && m.Length(path[lo]) == 0 {
		lo++
	}
	for hi > lo && m.Length(path[hi-1]) == 0 {
		hi--
	}
	out := make([]uint32, hi-lo)
	copy(out, path[lo:hi])
	return out
}
