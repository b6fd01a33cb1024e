// Package graph holds a small undirected graph whose nodes are named by
// gene identifiers and carry free-form attributes.
package graph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Node is a vertex identified by its name.
type Node struct {
	Index int
	Name  string
	Attrs map[string]any
}

// Edge connects two node indices.
type Edge struct {
	Source int
	Target int
}

// Graph keeps nodes in insertion order.
type Graph struct {
	nodes []*Node
	index map[string]int
	edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode adds a node with the given name, or returns the existing one.
func (g *Graph) AddNode(name string) *Node {
	if i, ok := g.index[name]; ok {
		return g.nodes[i]
	}
	n := &Node{Index: len(g.nodes), Name: name, Attrs: make(map[string]any)}
	g.nodes = append(g.nodes, n)
	g.index[name] = n.Index
	return n
}

// AddEdge connects a and b, adding missing nodes.
func (g *Graph) AddEdge(a, b string) {
	na := g.AddNode(a)
	nb := g.AddNode(b)
	g.edges = append(g.edges, Edge{Source: na.Index, Target: nb.Index})
}

// Node looks up a node by name.
func (g *Graph) Node(name string) (*Node, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// VCount returns the number of nodes.
func (g *Graph) VCount() int { return len(g.nodes) }

// ECount returns the number of edges.
func (g *Graph) ECount() int { return len(g.edges) }

// ReadEdgeList parses whitespace separated node pairs, one per line. Lines
// starting with # and blank lines are skipped; a single field adds an
// isolated node. Extra columns are ignored.
func ReadEdgeList(r io.Reader) (*Graph, error) {
	g := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 1:
			g.AddNode(fields[0])
		default:
			g.AddEdge(fields[0], fields[1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading edge list (line %d): %w", line, err)
	}
	return g, nil
}
