// Package transform adds dummy (zero-length) nodes to a variation graph so
// every variant gets a private "not taken" path.
//
// # Overview
//
// Variants at or near the same locus can share one skip edge. A deletion
// that spans a SNP, for example, produces an edge from the node before the
// deletion to the node after it, and the same edge is also the skip path of
// everything inside the span. [graph.Graph.ResolveVariantNodes] then cannot
// tell the variants apart. This package restores the guarantee that every
// variant resolves to its own skip node.
//
// # Structural Scan
//
// [AddDummyNodes] inspects topology only. For every reference node N with
// more than one successor, each reference successor M is classified:
//
//   - Deletion: M starts after N ends. The reference successors of N that
//     start before M are alleles folded into the deletion's edge.
//   - Insertion: M starts where N ends. The non-reference successors of N
//     that link to M are inserted alleles sharing the skip edge N→M.
//
// For each allele A, every predecessor of A that also links to M has that
// edge redirected to a new dummy node D, and D links to M:
//
//	Before: N → A → M, N → M
//	After:  N → A → M, N → D → M
//
// Several insertions at one locus are chained: each later allele hangs off
// the tail dummy of the chain, and every predecessor that reached the chain
// (the reference anchor, a SNP allele on the anchor base) is moved behind
// it, so each allele ends up with its own dummy.
//
// # Variant-Driven Strategy
//
// [AddDummyNodesForVariants] starts from a variant list instead. For each
// insertion or deletion it locates the allele's node span with
// [graph.MutableGraph.FindPathMatchingFunc], restricted to the nodes that
// can make up that allele, and reroutes only the edges into the reference
// node that follows the span. Deletions are handled before insertions, and
// insertions chain the same way as in the structural scan.
//
// Both strategies keep existing node ids and give dummies fresh ids above
// the input's MaxNodeID.
package transform
