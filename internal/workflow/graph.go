package workflow

import (
	"context"
	"fmt"
)

// End is the terminal pseudo-node.
const End = "END"

// NodeFunc consumes the full state and returns only the fields it changed.
type NodeFunc func(ctx context.Context, s *State) (Delta, error)

// DecideFunc inspects state after a node ran and names the outgoing route.
type DecideFunc func(ctx context.Context, s *State) string

type conditionalEdge struct {
	decide DecideFunc
	routes map[string]string
}

// Builder assembles a cyclic state graph out of named nodes and edges.
type Builder struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	entry       string
	maxSteps    int
}

func NewBuilder() *Builder {
	return &Builder{
		nodes:       map[string]NodeFunc{},
		edges:       map[string]string{},
		conditional: map[string]conditionalEdge{},
		maxSteps:    25,
	}
}

func (b *Builder) AddNode(name string, fn NodeFunc) *Builder {
	b.nodes[name] = fn
	return b
}

func (b *Builder) SetEntryPoint(name string) *Builder {
	b.entry = name
	return b
}

func (b *Builder) AddEdge(from, to string) *Builder {
	b.edges[from] = to
	return b
}

func (b *Builder) AddConditionalEdges(from string, decide DecideFunc, routes map[string]string) *Builder {
	b.conditional[from] = conditionalEdge{decide: decide, routes: routes}
	return b
}

// MaxSteps caps total node executions per run. The regenerate cycle is
// bounded separately by the edge policies; this is the hard backstop.
func (b *Builder) MaxSteps(n int) *Builder {
	if n > 0 {
		b.maxSteps = n
	}
	return b
}

// Compile validates the graph wiring and returns a runnable graph.
func (b *Builder) Compile() (*Graph, error) {
	if b.entry == "" {
		return nil, fmt.Errorf("workflow: no entry point")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("workflow: entry node %q not registered", b.entry)
	}
	for from, to := range b.edges {
		if err := b.checkEdge(from, to); err != nil {
			return nil, err
		}
	}
	for from, ce := range b.conditional {
		if _, ok := b.nodes[from]; !ok {
			return nil, fmt.Errorf("workflow: conditional edge from unknown node %q", from)
		}
		for label, to := range ce.routes {
			if to != End {
				if _, ok := b.nodes[to]; !ok {
					return nil, fmt.Errorf("workflow: route %q from %q targets unknown node %q", label, from, to)
				}
			}
		}
	}
	return &Graph{
		nodes:       b.nodes,
		edges:       b.edges,
		conditional: b.conditional,
		entry:       b.entry,
		maxSteps:    b.maxSteps,
	}, nil
}

func (b *Builder) checkEdge(from, to string) error {
	if _, ok := b.nodes[from]; !ok {
		return fmt.Errorf("workflow: edge from unknown node %q", from)
	}
	if to == End {
		return nil
	}
	if _, ok := b.nodes[to]; !ok {
		return fmt.Errorf("workflow: edge to unknown node %q", to)
	}
	return nil
}

// Graph is a compiled state machine. A Graph is immutable and safe to reuse;
// each Run threads its own State copy.
type Graph struct {
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	entry       string
	maxSteps    int
}

// Run executes the graph from the entry point until End, merging every node's
// delta into the state. It fails on context cancellation or when the step
// backstop is exceeded, returning the best state reached so far.
func (g *Graph) Run(ctx context.Context, initial State) (State, error) {
	s := initial
	current := g.entry
	for steps := 0; current != End; steps++ {
		if steps >= g.maxSteps {
			return s, fmt.Errorf("workflow: exceeded %d steps at node %q", g.maxSteps, current)
		}
		if err := ctx.Err(); err != nil {
			return s, err
		}

		node := g.nodes[current]
		delta, err := node(ctx, &s)
		if err != nil {
			return s, fmt.Errorf("workflow: node %q: %w", current, err)
		}
		s.apply(delta)

		if ce, ok := g.conditional[current]; ok {
			label := ce.decide(ctx, &s)
			next, ok := ce.routes[label]
			if !ok {
				return s, fmt.Errorf("workflow: node %q decided unknown route %q", current, label)
			}
			current = next
			continue
		}
		next, ok := g.edges[current]
		if !ok {
			return s, fmt.Errorf("workflow: node %q has no outgoing edge", current)
		}
		current = next
	}
	return s, nil
}
