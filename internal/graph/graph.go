package graph

import "strings"

// data is the storage shared by Builder and Graph.
type data struct {
	nodes []Node
	index map[string]int
	edges []Edge
	out   map[string][]int
	in    map[string][]int
}

func newData() data {
	return data{
		index: make(map[string]int),
		out:   make(map[string][]int),
		in:    make(map[string][]int),
	}
}

func (d data) clone() data {
	c := data{
		nodes: make([]Node, len(d.nodes)),
		index: make(map[string]int, len(d.index)),
		edges: make([]Edge, len(d.edges)),
		out:   make(map[string][]int, len(d.out)),
		in:    make(map[string][]int, len(d.in)),
	}
	copy(c.nodes, d.nodes)
	copy(c.edges, d.edges)
	for k, v := range d.index {
		c.index[k] = v
	}
	for k, v := range d.out {
		c.out[k] = append([]int(nil), v...)
	}
	for k, v := range d.in {
		c.in[k] = append([]int(nil), v...)
	}
	return c
}

// Builder accumulates nodes and edges. It is not safe for concurrent use.
type Builder struct {
	d data
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{d: newData()}
}

// AddNode appends a node. Ids must be unique and Props must be set.
func (b *Builder) AddNode(n Node) error {
	if n.Props == nil {
		return &Error{Kind: ErrInvalidNode, ID: n.ID, Msg: "node " + n.ID + " has no properties"}
	}
	if _, exists := b.d.index[n.ID]; exists {
		return &Error{Kind: ErrDuplicateNode, ID: n.ID}
	}
	b.d.index[n.ID] = len(b.d.nodes)
	b.d.nodes = append(b.d.nodes, n)
	return nil
}

// AddEdge appends an edge. Both endpoints must already exist.
func (b *Builder) AddEdge(e Edge) error {
	if _, ok := b.d.index[e.Source]; !ok {
		return &Error{Kind: ErrMissingNode, ID: e.Source, Msg: "source node " + e.Source + " does not exist"}
	}
	if _, ok := b.d.index[e.Target]; !ok {
		return &Error{Kind: ErrMissingNode, ID: e.Target, Msg: "target node " + e.Target + " does not exist"}
	}
	pos := len(b.d.edges)
	b.d.edges = append(b.d.edges, e)
	b.d.out[e.Source] = append(b.d.out[e.Source], pos)
	b.d.in[e.Target] = append(b.d.in[e.Target], pos)
	return nil
}

// Has reports whether a node with id was added.
func (b *Builder) Has(id string) bool {
	_, ok := b.d.index[id]
	return ok
}

// Build returns an immutable snapshot. Later changes to the builder do not
// affect graphs it already produced.
func (b *Builder) Build() *Graph {
	return &Graph{d: b.d.clone()}
}

// Graph is an immutable directed multigraph. Safe for concurrent reads.
type Graph struct {
	d data
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.d.index[id]
	if !ok {
		return Node{}, false
	}
	return g.d.nodes[i], true
}

// Nodes returns every node.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.d.nodes...)
}

// Edges returns every edge.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.d.edges...)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.d.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.d.edges) }

// NodesOfKind returns the nodes of the given kind.
func (g *Graph) NodesOfKind(kind NodeKind) []Node {
	var out []Node
	for _, n := range g.d.nodes {
		if n.Kind() == kind {
			out = append(out, n)
		}
	}
	return out
}

// Outgoing returns edges leaving id, restricted to kinds when any are given.
func (g *Graph) Outgoing(id string, kinds ...EdgeKind) []Edge {
	return g.collect(g.d.out[id], kinds)
}

// Incoming returns edges entering id, restricted to kinds when any are given.
func (g *Graph) Incoming(id string, kinds ...EdgeKind) []Edge {
	return g.collect(g.d.in[id], kinds)
}

func (g *Graph) collect(positions []int, kinds []EdgeKind) []Edge {
	var out []Edge
	for _, pos := range positions {
		e := g.d.edges[pos]
		if matchesKind(e.Kind, kinds) {
			out = append(out, e)
		}
	}
	return out
}

func matchesKind(k EdgeKind, kinds []EdgeKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Parent returns the source of the first "contains" edge into id.
func (g *Graph) Parent(id string) (Node, bool) {
	for _, pos := range g.d.in[id] {
		if e := g.d.edges[pos]; e.Kind == EdgeContains {
			return g.Node(e.Source)
		}
	}
	return Node{}, false
}

// EndpointsAt returns the api_endpoint children of componentID whose path is
// exactly path.
func (g *Graph) EndpointsAt(componentID, path string) []Node {
	var out []Node
	for _, e := range g.Outgoing(componentID, EdgeContains) {
		child, ok := g.Node(e.Target)
		if !ok {
			continue
		}
		if p, ok := child.Endpoint(); ok && p.Path == path {
			out = append(out, child)
		}
	}
	return out
}

// MatchEndpoints returns the endpoints of componentID a call could reach.
// A call method keeps only case-insensitive matches; without one every
// endpoint at the path is a candidate.
func (g *Graph) MatchEndpoints(componentID string, call Call) []Node {
	var out []Node
	for _, n := range g.EndpointsAt(componentID, call.Path) {
		p, _ := n.Endpoint()
		if call.Method != "" && !strings.EqualFold(p.Method, call.Method) {
			continue
		}
		out = append(out, n)
	}
	return out
}
