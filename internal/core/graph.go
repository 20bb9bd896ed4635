package core

import "fmt"

// Graph is a named bundle of property nodes wired together for one event
// type. Registration order is preserved so warehouse contributions are
// appended in a stable order; evaluation order is driven by dependency edges.
type Graph struct {
	order []string
	nodes map[string]Node
}

// NewGraph constructs an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]Node)}
}

// Add registers a node. Registering two nodes under the same name is a
// wiring defect.
func (g *Graph) Add(node Node) error {
	name := node.Name()
	if name == "" {
		return fmt.Errorf("property name required")
	}
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("property %s wired twice", name)
	}
	g.nodes[name] = node
	g.order = append(g.order, name)
	return nil
}

// Node returns the registered node for name, or nil.
func (g *Graph) Node(name string) Node { return g.nodes[name] }

// Order returns registered property names in registration order.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Check verifies the graph is exhaustively wired: every input of every
// registered node is itself registered, and the dependency edges form no
// cycle. Run once at wiring time so defects fail at startup, not mid-request.
func (g *Graph) Check() error {
	for _, name := range g.order {
		for _, input := range g.nodes[name].Inputs() {
			registered, ok := g.nodes[input.Name()]
			if !ok {
				return fmt.Errorf("property %s depends on unregistered property %s", name, input.Name())
			}
			if registered != input {
				return fmt.Errorf("property %s depends on a different instance of property %s", name, input.Name())
			}
		}
	}
	const (
		visiting = 1
		done     = 2
	)
	marks := make(map[string]int, len(g.nodes))
	var visit func(Node) error
	visit = func(n Node) error {
		switch marks[n.Name()] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("property graph cycle through %s", n.Name())
		}
		marks[n.Name()] = visiting
		for _, input := range n.Inputs() {
			if err := visit(input); err != nil {
				return err
			}
		}
		marks[n.Name()] = done
		return nil
	}
	for _, name := range g.order {
		if err := visit(g.nodes[name]); err != nil {
			return err
		}
	}
	return nil
}
