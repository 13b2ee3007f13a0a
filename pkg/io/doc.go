// Package io reads and writes the file formats around a variation graph.
//
// # Reference
//
// [ReadReference] parses a FASTA file into named sequences. [ImportReference]
// opens a path and transparently decompresses ".gz" files. Sequences are
// upper-cased so they compare equal to VCF alleles.
//
//	ref, err := io.ImportReference("GRCh38.fa.gz")
//	seq, err := ref.Sequence("chr21")
//
// # GFA
//
// [ReadGFA] builds a graph from a GFA 1 segment/link description, skipping
// variant-based construction entirely. Segment names must be positive
// integers and become node ids. Every P line is one chromosome; the segments
// of all paths, in file order, form the linear reference:
//
//	H	VN:Z:1.0
//	S	1	ACT
//	S	2	G
//	S	3	*
//	L	1	+	2	+	0M
//	L	1	+	3	+	0M
//	P	chr1	1+,2+	*
//
// A "*" sequence denotes a zero-length (dummy) segment. Only forward
// orientation and empty overlaps are supported.
//
// [WriteGFA] is the inverse and emits H, S, L and one P line per chromosome.
//
// # JSON
//
// [WriteJSON] exports the flat array form of a graph ([graph.Flat]) and
// [ReadJSON] imports it:
//
//	{
//	  "node_ids": [1, 2, 3, 4],
//	  "sequences": ["A", "T", "C", "TGGG"],
//	  "sizes": [1, 1, 1, 4],
//	  "edge_from": [1, 1, 2, 3],
//	  "edge_to": [2, 3, 4, 4],
//	  "reference": [1, 3, 4],
//	  "chromosome_starts": [1]
//	}
//
// Path variants ([ImportGFA], [ExportGFA], [ImportJSON], [ExportJSON]) open
// or create the file and wrap errors with the path.
package io
