// Package pkg holds the seqgraph libraries.
//
// # Overview
//
// seqgraph builds sequence variation graphs: directed acyclic graphs whose
// nodes carry DNA sequence and whose paths spell the reference genome and
// every combination of its small variants. The packages split into:
//
//  1. [variant] - biallelic SNP/insertion/deletion records and VCF reading
//  2. [construct] - building a graph from a reference and sorted variants
//  3. [graph] - the mutable and frozen graph, coordinates, variant
//     resolution, annotations and the ".sg" bundle format
//  4. [graph/transform] - dummy-node insertion so every variant is addressable
//  5. [varnodes] - variant-to-node tables saved as ".vn" files
//  6. [io] - FASTA references, GFA and JSON import/export
//  7. [pipeline] - cached orchestration (load → construct → disambiguate → annotate)
//  8. [server] - a read-only HTTP API over a frozen graph
//  9. [render] - Graphviz node-link diagrams
//
// Supporting packages: [cache], [config], [errors], [observability] and
// [buildinfo].
//
// # Data flow
//
//	FASTA + VCF          GFA
//	     ↓                ↓
//	[construct]     [io].ReadGFA
//	     ↓                ↓
//	     └──→ [graph].Graph (frozen) ←──┘
//	              ↓
//	    [graph/transform] dummy nodes
//	              ↓
//	 annotations, [varnodes], [server], [render]
//
// # Quick start
//
//	ref, _ := io.ImportReference("ref.fa")
//	seq, _ := ref.Sequence("chr1")
//	vs, _ := variant.OpenVCF("calls.vcf.gz", variant.ReadOptions{Chromosome: "chr1"})
//
//	m, err := construct.Build(seq, vs)
//	if err != nil {
//	    return err
//	}
//	g, err := m.Freeze()
//	if err != nil {
//	    return err
//	}
//	g, _, err = transform.AddDummyNodes(g)
//	if err != nil {
//	    return err
//	}
//	ref, alt, err := g.ResolveVariantNodes(vs[0], 1)
//
// The CLI in cmd/seqgraph wraps the same steps through [pipeline].
package pkg
