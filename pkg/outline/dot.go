package outline

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the start time and dive id to every dive label.
	Detailed bool
}

// ToDOT converts outlines to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(docs []*Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")

	var prev string
	for _, doc := range docs {
		fmt.Fprintf(&buf, "\n  subgraph cluster_doc_%d {\n", doc.Seq)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("document %d (%d dives)", doc.Seq, doc.Dives()))
		buf.WriteString("    style=dashed;\n")
		for _, g := range doc.Groups {
			fmt.Fprintf(&buf, "    subgraph cluster_rg_%d {\n", g.ID)
			fmt.Fprintf(&buf, "      label=%q;\n", fmt.Sprintf("rg_%d", g.ID))
			buf.WriteString("      style=\"rounded,filled\";\n")
			buf.WriteString("      fillcolor=\"#eef4fb\";\n")
			for _, d := range g.Dives {
				fmt.Fprintf(&buf, "      %q [label=%q];\n", nodeID(d), fmtLabel(d, opts.Detailed))
			}
			buf.WriteString("    }\n")
		}
		buf.WriteString("  }\n")

		for _, g := range doc.Groups {
			for _, d := range g.Dives {
				if prev != "" {
					fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", prev, nodeID(d), fmtInterval(d.Interval.Elapsed, d.Interval.Infinite))
				}
				prev = nodeID(d)
			}
		}

		for _, t := range doc.Trips {
			trip := fmt.Sprintf("trip_%d_%d", doc.Seq, t.ID)
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fillcolor=lightgrey];\n", trip, fmt.Sprintf("trip_%d", t.ID))
			for _, id := range t.DiveIDs {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none];\n", trip, fmt.Sprintf("dive_%d", id))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(d Dive) string {
	return fmt.Sprintf("dive_%d", d.ID)
}

func fmtLabel(d Dive, detailed bool) string {
	label := fmt.Sprintf("#%d", d.Number)
	if !detailed {
		return label
	}
	return label + "\n" + d.Start.Format("2006-01-02 15:04") + "\nid: " + strconv.FormatInt(d.ID, 10)
}

func fmtInterval(elapsed time.Duration, infinite bool) string {
	if infinite {
		return "∞"
	}
	days := int(elapsed / (24 * time.Hour))
	rest := elapsed - time.Duration(days)*24*time.Hour
	h, m := int(rest/time.Hour), int(rest%time.Hour/time.Minute)
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, h)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
