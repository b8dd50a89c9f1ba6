package build

import "fmt"

// State is a build-graph node's position in the per-node pipeline.
type State int

const (
	// Fresh nodes have not been (re-)compiled since their content, or a
	// dependency's content, last changed.
	Fresh State = iota
	// Parsed nodes have a syntax tree but have not yet been resolved.
	Parsed
	// Resolved nodes have a scope but have not yet been type-checked.
	Resolved
	// TypeChecked nodes are fully compiled and queryable.
	TypeChecked
	// Failed nodes hit an error at some pipeline stage; dependents are
	// pushed back to Fresh so the next reload retries them.
	Failed
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Parsed:
		return "parsed"
	case Resolved:
		return "resolved"
	case TypeChecked:
		return "typechecked"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Node is one file's position in a library's build graph.
type Node struct {
	URI        string
	Library    LibraryID
	State      State
	Deps       []*Node
	Dependents []*Node
	Result     *NodeResult
}

// NodeResult is the cached output of a node's last successful compile pass.
type NodeResult struct {
	Export *ResolveResult
}

// Graph is one library's build graph: a DAG of per-file nodes, import edges
// running from a file to the files it imports.
type Graph struct {
	nodes map[string]*Node
}

// NewGraph constructs an empty build graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// EnsureNode returns the node for uri, creating a Fresh one if absent.
func (g *Graph) EnsureNode(uri string, lib LibraryID) *Node {
	if n, ok := g.nodes[uri]; ok {
		return n
	}
	n := &Node{URI: uri, Library: lib, State: Fresh}
	g.nodes[uri] = n
	return n
}

// Node looks up a node by URI.
func (g *Graph) Node(uri string) (*Node, bool) {
	n, ok := g.nodes[uri]
	return n, ok
}

// RemoveNode detaches a node (and its edges) from the graph, e.g. on file
// deletion.
func (g *Graph) RemoveNode(uri string) {
	n, ok := g.nodes[uri]
	if !ok {
		return
	}
	for _, dep := range n.Deps {
		dep.Dependents = removeNode(dep.Dependents, n)
	}
	for _, dependent := range n.Dependents {
		dependent.Deps = removeNode(dependent.Deps, n)
	}
	delete(g.nodes, uri)
}

func removeNode(nodes []*Node, target *Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// SetDeps replaces a node's outgoing import edges, keeping the reverse
// Dependents edges of both the old and new dependency sets consistent.
func (g *Graph) SetDeps(n *Node, depURIs []string) {
	for _, old := range n.Deps {
		old.Dependents = removeNode(old.Dependents, n)
	}

	deps := make([]*Node, 0, len(depURIs))
	for _, uri := range depURIs {
		dep := g.EnsureNode(uri, n.Library)
		dep.Dependents = append(dep.Dependents, n)
		deps = append(deps, dep)
	}
	n.Deps = deps
}

// MarkFresh marks uri's node Fresh and transitively marks every dependent
// Fresh as well, per the Modified file-change handler.
func (g *Graph) MarkFresh(uri string) {
	n, ok := g.nodes[uri]
	if !ok {
		return
	}
	visited := make(map[string]bool)
	g.markFreshRec(n, visited)
}

func (g *Graph) markFreshRec(n *Node, visited map[string]bool) {
	if visited[n.URI] {
		return
	}
	visited[n.URI] = true
	n.State = Fresh
	for _, dependent := range n.Dependents {
		g.markFreshRec(dependent, visited)
	}
}

// Nodes returns every node currently in the graph, in no particular order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

type cyclicImportError struct {
	cycle []string
}

func (e *cyclicImportError) Error() string {
	return fmt.Sprintf("build: cyclic import: %v", e.cycle)
}

// TopoOrder returns the graph's nodes in dependency-first order (a node
// always appears after every node it depends on), or a cyclicImportError if
// the import graph is not a DAG.
func (g *Graph) TopoOrder() ([]*Node, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))
	order := make([]*Node, 0, len(g.nodes))

	var visit func(n *Node, stack []string) error
	visit = func(n *Node, stack []string) error {
		switch color[n.URI] {
		case black:
			return nil
		case gray:
			return &cyclicImportError{cycle: append(stack, n.URI)}
		}
		color[n.URI] = gray
		for _, dep := range n.Deps {
			if err := visit(dep, append(stack, n.URI)); err != nil {
				return err
			}
		}
		color[n.URI] = black
		order = append(order, n)
		return nil
	}

	for _, n := range g.nodes {
		if color[n.URI] == white {
			if err := visit(n, nil); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}
