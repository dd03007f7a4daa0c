package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// Graph holds the declared build units and the step graph they lower to.
// Units carry configuration and labels; steps are what the scheduler runs.
type Graph struct {
	units     map[InternedString]*Unit
	unitOrder []InternedString

	steps     map[InternedString]*Step
	stepOrder []InternedString

	executionOrder []InternedString
	dependents     map[InternedString][]InternedString
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		units: make(map[InternedString]*Unit),
		steps: make(map[InternedString]*Step),
	}
}

// AddUnit registers a declared unit. Names must be unique.
func (g *Graph) AddUnit(u *Unit) error {
	if _, exists := g.units[u.Name]; exists {
		return zerr.With(ErrUnitAlreadyExists, "unit", u.Name.String())
	}
	g.units[u.Name] = u
	g.unitOrder = append(g.unitOrder, u.Name)
	return nil
}

// Unit returns a declared unit by name.
func (g *Graph) Unit(name InternedString) (*Unit, bool) {
	u, ok := g.units[name]
	return u, ok
}

// Units yields units in declaration order.
func (g *Graph) Units() iter.Seq[*Unit] {
	return func(yield func(*Unit) bool) {
		for _, name := range g.unitOrder {
			if !yield(g.units[name]) {
				return
			}
		}
	}
}

// UnitCount returns the number of declared units.
func (g *Graph) UnitCount() int { return len(g.units) }

// AddStep registers a lowered step. IDs must be unique.
func (g *Graph) AddStep(s *Step) error {
	if _, exists := g.steps[s.ID]; exists {
		return zerr.With(ErrStepAlreadyExists, "step", s.ID.String())
	}
	g.steps[s.ID] = s
	g.stepOrder = append(g.stepOrder, s.ID)
	return nil
}

// Step returns a step by ID.
func (g *Graph) Step(id InternedString) (*Step, bool) {
	s, ok := g.steps[id]
	return s, ok
}

// StepCount returns the number of steps in the graph.
func (g *Graph) StepCount() int { return len(g.steps) }

// Validate topologically sorts the step graph, rejecting missing
// dependencies and cycles. Interface precompiles are ordinary steps, so two
// modules importing each other's interfaces fail here with a cycle path
// before any command runs. The dependents index built here drives the
// scheduler's ready-set updates.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.steps))
	g.dependents = make(map[InternedString][]InternedString, len(g.steps))
	visited := make(map[InternedString]int, len(g.steps)) // 0 unvisited, 1 visiting, 2 done
	var path []InternedString

	var visit func(id InternedString) error
	visit = func(id InternedString) error {
		visited[id] = 1
		path = append(path, id)

		step, exists := g.steps[id]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", id.String())
		}

		for _, dep := range step.Dependencies {
			g.dependents[dep] = append(g.dependents[dep], id)
			switch visited[dep] {
			case 1:
				return g.buildCycleError(path, dep)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[id] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, id)
		return nil
	}

	// Declaration order keeps the topological order deterministic across runs.
	for _, id := range g.stepOrder {
		if visited[id] == 0 {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error carrying the cycle path as metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	cyclePath := ""
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// Walk yields steps in execution order. Validate must have succeeded first.
func (g *Graph) Walk() iter.Seq[*Step] {
	return func(yield func(*Step) bool) {
		for _, id := range g.executionOrder {
			if !yield(g.steps[id]) {
				return
			}
		}
	}
}

// Dependents returns the steps that directly depend on the given step.
func (g *Graph) Dependents(id InternedString) []InternedString {
	return g.dependents[id]
}

// Subgraph returns a new graph restricted to the steps reachable from the
// named units' final steps. Units are shared with the receiver so label
// closures and rewrites observed through either graph agree.
func (g *Graph) Subgraph(targets []InternedString) (*Graph, error) {
	sub := NewGraph()
	for _, name := range g.unitOrder {
		if err := sub.AddUnit(g.units[name]); err != nil {
			return nil, err
		}
	}

	keep := make(map[InternedString]bool, len(g.steps))
	var mark func(id InternedString) error
	mark = func(id InternedString) error {
		if keep[id] {
			return nil
		}
		step, exists := g.steps[id]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", id.String())
		}
		keep[id] = true
		for _, dep := range step.Dependencies {
			if err := mark(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, target := range targets {
		unit, ok := g.units[target]
		if !ok {
			return nil, zerr.With(ErrUnitNotFound, "unit", target.String())
		}
		final := unit.FinalStep()
		if final == nil {
			continue
		}
		if err := mark(final.ID); err != nil {
			return nil, err
		}
	}

	for _, id := range g.stepOrder {
		if !keep[id] {
			continue
		}
		if err := sub.AddStep(g.steps[id]); err != nil {
			return nil, err
		}
	}
	return sub, nil
}
