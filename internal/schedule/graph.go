package schedule

import "github.com/twiced-technology-gmbh/planwatch/internal/task"

// arena holds tasks keyed by id and remembers first-insertion order. Every
// traversal follows that order, which makes results deterministic.
type arena struct {
	order []string
	byID  map[string]*task.Task
}

// newArena indexes tasks. A later task with an id already present replaces
// the earlier one but keeps its position.
func newArena(tasks []*task.Task) *arena {
	a := &arena{
		order: make([]string, 0, len(tasks)),
		byID:  make(map[string]*task.Task, len(tasks)),
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if _, ok := a.byID[t.ID]; !ok {
			a.order = append(a.order, t.ID)
		}
		a.byID[t.ID] = t
	}
	return a
}

// deps returns the dependency ids of id that exist in the arena.
func (a *arena) deps(id string) []string {
	t := a.byID[id]
	out := make([]string, 0, len(t.Dependencies))
	for _, dep := range t.Dependencies {
		if _, ok := a.byID[dep]; ok {
			out = append(out, dep)
		}
	}
	return out
}

// frame is one level of an explicit DFS stack.
type frame struct {
	id   string
	deps []string
	next int
}

// findCycle walks dependencies depth first and returns the first cycle it
// meets as a closed path (first and last element equal), or nil.
func (a *arena) findCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(a.order))

	for _, root := range a.order {
		if color[root] != white {
			continue
		}
		color[root] = grey
		stack := []frame{{id: root, deps: a.deps(root)}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.deps) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			dep := top.deps[top.next]
			top.next++

			switch color[dep] {
			case grey:
				return cyclePath(stack, dep)
			case white:
				color[dep] = grey
				stack = append(stack, frame{id: dep, deps: a.deps(dep)})
			}
		}
	}
	return nil
}

// cyclePath cuts the stack at the frame for id and closes the loop.
func cyclePath(stack []frame, id string) []string {
	var path []string
	for i := range stack {
		if stack[i].id != id && path == nil {
			continue
		}
		path = append(path, stack[i].id)
	}
	return append(path, id)
}

// topoOrder returns ids so that every dependency precedes its dependents.
// The arena must be acyclic.
func (a *arena) topoOrder() []string {
	visited := make(map[string]bool, len(a.order))
	out := make([]string, 0, len(a.order))

	for _, root := range a.order {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack := []frame{{id: root, deps: a.deps(root)}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.deps) {
				out = append(out, top.id)
				stack = stack[:len(stack)-1]
				continue
			}
			dep := top.deps[top.next]
			top.next++
			if visited[dep] {
				continue
			}
			visited[dep] = true
			stack = append(stack, frame{id: dep, deps: a.deps(dep)})
		}
	}
	return out
}

// HasCycle reports whether the dependency edges among tasks form a cycle.
// Dependencies on ids not present in tasks are ignored.
func HasCycle(tasks []*task.Task) bool {
	return newArena(tasks).findCycle() != nil
}

// FindCycle returns one dependency cycle as a closed path of ids, such as
// [a b c a] for a depending on b, b on c and c on a. It returns nil when the
// graph is acyclic.
func FindCycle(tasks []*task.Task) []string {
	return newArena(tasks).findCycle()
}

// TopologicalOrder returns task ids ordered so that each task comes after all
// of its dependencies. Ties keep input order. Callers must rule out cycles
// first with HasCycle.
func TopologicalOrder(tasks []*task.Task) []string {
	return newArena(tasks).topoOrder()
}
