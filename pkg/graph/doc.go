// Package graph provides the sequence-variation graph: a directed acyclic
// graph whose nodes carry DNA fragments and whose topology encodes a linear
// reference plus alternative alleles branching off it.
//
// # Overview
//
// The package has two representations:
//
//   - [MutableGraph] is an adjacency-list builder with a reverse-edge index.
//     It is used while a graph is being constructed or edited.
//   - [Graph] is the frozen, array-backed form produced by
//     [MutableGraph.Freeze]. It is what gets persisted and queried.
//
// Node ids are positive integers. Id 0 is reserved and never assigned.
// A node may have length 0; such nodes are placeholders that mark "no allele
// taken" paths and are never part of the linear reference.
//
// # Array Layout
//
// A [Graph] stores every field as a flat array indexed by node id or by
// reference offset:
//
//	lengths[id]              node length
//	seqIndex[id]             start of the node's bases in sequences
//	edgeIndex[id], edgeCount[id]
//	                         slice of the shared edges array
//	nodeToRefOffset[id]      global reference offset of a reference node
//	refOffsetToNode[offset]  node covering a reference offset
//	chromosomeStarts[c-1]    first node of chromosome c
//
// Every lookup is O(1). For every reference node N with offset O and length
// L, the offsets O..O+L-1 map back to N, and O equals the summed length of
// the reference nodes before N.
//
// # Variant Resolution
//
// [Graph.ResolveVariantNodes] maps a SNP, insertion or deletion to the pair
// (reference node, allele node). For deletions and insertions the "reference
// node" side is a zero-length skip node, which the transform package inserts
// so that every variant has a private one even when variants share a locus.
// A variant whose allele is not present in the topology yields an error with
// code VARIANT_NOT_FOUND; batch callers skip and continue on it.
//
// # Persistence
//
// [Save] and [Load] write the arrays as a named msgpack bundle inside a zstd
// frame. A round trip reproduces every array exactly. [Load] falls back to
// the alternate extension when the given path does not exist.
//
// # Concurrency
//
// A frozen [Graph] is safe for concurrent readers. The linear-reference node
// set is computed lazily under a [sync.Once]. The two augmentations (numeric
// sequences and allele frequencies) must be set before the graph is shared.
package graph
