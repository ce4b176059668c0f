package mutation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"codonvm/internal/genome/codon"
)

// Edge and vertex attribute keys
const (
	AttrKind   = "kind"
	AttrOpcode = "opcode"
)

// Graph builds the undirected single-substitution graph over all 64 codons.
// Every edge carries its mutation kind under AttrKind.
func Graph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash)

	for _, c := range codon.AllCodons() {
		name := "none"
		if op, ok := codon.Lookup(c); ok {
			name = op.String()
		}
		if err := g.AddVertex(c, graph.VertexAttribute(AttrOpcode, name)); err != nil {
			return nil, fmt.Errorf("failed to add codon %s: %w", c, err)
		}
	}

	for _, c := range codon.AllCodons() {
		subs, err := Neighbours(c)
		if err != nil {
			return nil, err
		}
		for _, s := range subs {
			err := g.AddEdge(s.From, s.To, graph.EdgeAttribute(AttrKind, s.Kind.String()))
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add edge %s-%s: %w", s.From, s.To, err)
			}
		}
	}
	return g, nil
}

// Format is a graphviz output format
type Format string

const (
	FormatDot Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a graph output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDot, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("unknown graph format %q (want dot, svg or png)", s)
}

// fillColors groups opcode families by what they do
var fillColors = map[codon.Opcode]string{
	codon.OpStart:        "palegreen",
	codon.OpStop:         "lightcoral",
	codon.OpCircle:       "lightblue",
	codon.OpRect:         "lightblue",
	codon.OpLine:         "lightblue",
	codon.OpTriangle:     "lightblue",
	codon.OpEllipse:      "lightblue",
	codon.OpNoise:        "lightblue",
	codon.OpTranslate:    "khaki",
	codon.OpRotate:       "khaki",
	codon.OpScale:        "khaki",
	codon.OpColor:        "khaki",
	codon.OpPush:         "plum",
	codon.OpDup:          "plum",
	codon.OpPop:          "plum",
	codon.OpSwap:         "plum",
	codon.OpAdd:          "wheat",
	codon.OpSub:          "wheat",
	codon.OpMul:          "wheat",
	codon.OpDiv:          "wheat",
	codon.OpEq:           "wheat",
	codon.OpLt:           "wheat",
	codon.OpLoop:         "lightsalmon",
	codon.OpSaveState:    "lightsalmon",
	codon.OpRestoreState: "lightsalmon",
}

type edgeStyle struct {
	color string
	style string
	width float64
}

var edgeStyles = map[string]edgeStyle{
	Silent.String():   {color: "forestgreen", style: "solid", width: 2},
	Missense.String(): {color: "gray60", style: "solid", width: 1},
	Nonsense.String(): {color: "red", style: "bold", width: 2},
	Unmapped.String(): {color: "gray40", style: "dotted", width: 1},
}

// Render lays out g with graphviz and writes it to w in the given format
func Render(ctx context.Context, g graph.Graph[string, string], format Format, w io.Writer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	gvGraph, err := gv.Graph()
	if err != nil {
		return fmt.Errorf("failed to create graphviz graph: %w", err)
	}
	defer gvGraph.Close()

	gvGraph.SetLayout("neato")
	gvGraph.SetOverlap(false)
	gvGraph.SetSplines("true")
	if _, err := gvGraph.Attr(int(cgraph.NODE), "style", "filled"); err != nil {
		return fmt.Errorf("failed to set node style: %w", err)
	}
	if _, err := gvGraph.Attr(int(cgraph.EDGE), "dir", "none"); err != nil {
		return fmt.Errorf("failed to set edge direction: %w", err)
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("failed to get adjacency map: %w", err)
	}

	codons := make([]string, 0, len(adjacency))
	for c := range adjacency {
		codons = append(codons, c)
	}
	sort.Strings(codons)

	nodes := make(map[string]*graphviz.Node, len(codons))
	for _, c := range codons {
		node, err := gvGraph.CreateNodeByName(c)
		if err != nil {
			return fmt.Errorf("failed to create node %s: %w", c, err)
		}
		fill := "white"
		label := c
		if op, ok := codon.Lookup(c); ok {
			fill = fillColors[op]
			label = c + "\n" + op.String()
		}
		node.SetLabel(label)
		node.SetFillColor(fill)
		node.SetShape("box")
		nodes[c] = node
	}

	for _, src := range codons {
		targets := make([]string, 0, len(adjacency[src]))
		for dst := range adjacency[src] {
			targets = append(targets, dst)
		}
		sort.Strings(targets)

		for _, dst := range targets {
			// undirected edges appear in both rows of the adjacency map
			if dst < src {
				continue
			}
			e, err := gvGraph.CreateEdgeByName("", nodes[src], nodes[dst])
			if err != nil {
				return fmt.Errorf("failed to create edge %s-%s: %w", src, dst, err)
			}
			style, ok := edgeStyles[adjacency[src][dst].Properties.Attributes[AttrKind]]
			if !ok {
				continue
			}
			e.SetColor(style.color)
			e.SetStyle(cgraph.EdgeStyle(style.style))
			e.SetPenWidth(style.width)
		}
	}

	if err := gv.Render(ctx, gvGraph, graphviz.Format(format), w); err != nil {
		return fmt.Errorf("failed to render graph as %s: %w", format, err)
	}
	return nil
}
