// Package filtergraph builds the processing-pipeline description for an
// export. Timeline state is compiled into a structured graph of labeled
// pads first, validated, then serialized into the filter_complex text
// the engine consumes.
package filtergraph

import (
	"fmt"
	"strings"
)

// FinalPad is the label of the graph's designated output pad.
const FinalPad = "final"

// Filter is a single processing step inside a node, e.g. crop or fade.
type Filter struct {
	Name string
	Args string
}

// String renders the filter in name=args form
func (f Filter) String() string {
	if f.Args == "" {
		return f.Name
	}
	return f.Name + "=" + f.Args
}

// Node consumes one or more input pads, applies its filters in order
// and produces exactly one output pad.
type Node struct {
	Inputs  []string
	Filters []Filter
	Output  string
}

// Find returns the first filter with the given name, or nil
func (n Node) Find(name string) *Filter {
	for i := range n.Filters {
		if n.Filters[i].Name == name {
			return &n.Filters[i]
		}
	}
	return nil
}

// Graph is the compiled pipeline: source pads fed by the staged inputs
// plus the node list in execution order.
type Graph struct {
	InputPads []string
	Nodes     []Node
}

// NodeProducing returns the node that produces the given pad, or nil
func (g *Graph) NodeProducing(pad string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Output == pad {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Validate checks the pad wiring contract: every pad is produced exactly
// once, consumed at most once, defined before use, and only the final
// pad is left unconsumed.
func (g *Graph) Validate() error {
	produced := make(map[string]bool)
	for _, pad := range g.InputPads {
		if produced[pad] {
			return fmt.Errorf("input pad [%s] declared twice", pad)
		}
		produced[pad] = true
	}

	consumed := make(map[string]bool)
	for i, node := range g.Nodes {
		if len(node.Inputs) == 0 {
			return fmt.Errorf("node %d produces [%s] but consumes nothing", i, node.Output)
		}
		for _, pad := range node.Inputs {
			if !produced[pad] {
				return fmt.Errorf("node %d consumes pad [%s] before it is produced", i, pad)
			}
			if consumed[pad] {
				return fmt.Errorf("pad [%s] consumed twice", pad)
			}
			consumed[pad] = true
		}
		if node.Output == "" {
			return fmt.Errorf("node %d has no output pad", i)
		}
		if produced[node.Output] {
			return fmt.Errorf("pad [%s] produced twice", node.Output)
		}
		produced[node.Output] = true
	}

	var unconsumed []string
	for pad := range produced {
		if !consumed[pad] {
			unconsumed = append(unconsumed, pad)
		}
	}
	if len(unconsumed) != 1 || unconsumed[0] != FinalPad {
		return fmt.Errorf("expected [%s] as the only unconsumed pad, got %v", FinalPad, unconsumed)
	}

	return nil
}

// Serialize renders the graph as a filter_complex description. The
// node separator and pad syntax are the engine's contract; the
// rendering is lossless and never emits a dangling separator.
func (g *Graph) Serialize() string {
	segments := make([]string, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		var sb strings.Builder
		for _, pad := range node.Inputs {
			sb.WriteString("[" + pad + "]")
		}
		parts := make([]string, 0, len(node.Filters))
		for _, filter := range node.Filters {
			parts = append(parts, filter.String())
		}
		sb.WriteString(strings.Join(parts, ","))
		sb.WriteString("[" + node.Output + "]")
		segments = append(segments, sb.String())
	}
	return strings.Join(segments, ";")
}
