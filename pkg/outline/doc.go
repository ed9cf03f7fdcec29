// Package outline records the structure of a conversion without producing
// any export document.
//
// # Overview
//
// The [Assembler] plugs into the segmenter like the UDDF and UDCF
// assemblers, but only remembers which dives landed in which repetition
// group, trip and document. It never touches samples, tanks or sites, so
// planning a large log is cheap.
//
// # Usage
//
//	seg := segment.New(cursor, outline.New(), opts, logger)
//	var docs []*outline.Document
//	for doc, err := range seg.All(ctx) {
//	    ...
//	    docs = append(docs, doc)
//	}
//	dot := outline.ToDOT(docs, outline.Options{})
//	svg, err := outline.RenderSVG(dot)
//
// # DOT Format
//
// Every document becomes a cluster holding one cluster per repetition group.
// Dives are boxes chained in start order, each edge labeled with the surface
// interval. Trips are drawn as ellipses with dashed edges to their dives.
package outline
