package plan

import (
	"fmt"
	"strings"
)

// DotBuilder accumulates a graphviz-dot description of a plan tree.
//
// The visited set lives here, not on the nodes: a node can be wired into
// two branches of one tree, and export must mention it once without any
// node-local "already rendered" state.
type DotBuilder struct {
	b       strings.Builder
	visited map[string]bool
}

// DebugPlan renders a plan tree in dot form. Diagnostics only.
func DebugPlan(root Node) string {
	d := &DotBuilder{visited: make(map[string]bool)}
	d.b.WriteString("digraph plan {\n")
	root.Describe(d)
	d.b.WriteString("}\n")
	return d.b.String()
}

// Seen records a node as described and reports whether it already was.
func (d *DotBuilder) Seen(n Node) bool {
	if d.visited[n.ID()] {
		return true
	}
	d.visited[n.ID()] = true
	return false
}

// WriteNode emits the node's label line.
func (d *DotBuilder) WriteNode(n Node) {
	fmt.Fprintf(&d.b, "  %s [label=%q];\n", n.ID(), n.Label())
}

// WriteEdge emits an edge from child to parent with an optional label.
func (d *DotBuilder) WriteEdge(from, to Node, label string) {
	if label == "" {
		fmt.Fprintf(&d.b, "  %s -> %s;\n", from.ID(), to.ID())
		return
	}
	fmt.Fprintf(&d.b, "  %s -> %s [label=%q];\n", from.ID(), to.ID(), label)
}

// WriteExternalEdge emits an edge from a non-node source, e.g. a store
// connection feeding a join.
func (d *DotBuilder) WriteExternalEdge(source string, to Node, label string) {
	fmt.Fprintf(&d.b, "  %q -> %s [label=%q];\n", source, to.ID(), label)
}

// DescribeLeaf handles the common leaf case: label line, no edges.
func (d *DotBuilder) DescribeLeaf(n Node) {
	if d.Seen(n) {
		return
	}
	d.WriteNode(n)
}

// DescribeUnary handles the common single-child case.
func (d *DotBuilder) DescribeUnary(n Node, child Node) {
	if d.Seen(n) {
		return
	}
	d.WriteNode(n)
	child.Describe(d)
	d.WriteEdge(child, n, "")
}
