package viz

import (
	"log"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
	"github.com/jlee2843/Peer-Review-2022/internal/mediator"
)

// labeler is satisfied by entities that carry a display name.
type labeler interface {
	Label() string
}

// BuildGraph externalizes a grouping mediator as a nodes table (entity,
// kind, display name) and an edges table (source, destination, destination
// kind, relationship label). It is a read-only projection: the mediator's
// snapshot is taken once and entities are never mutated. A member whose
// display attribute cannot be resolved is logged and still exported under
// its identity key rather than aborting the export.
func BuildGraph(g *mediator.Grouping, relationship string) *GraphData {
	graph := &GraphData{}
	seen := make(map[string]bool)

	addNode := func(e entity.Keyed) {
		if seen[e.Key()] {
			return
		}
		seen[e.Key()] = true
		graph.Nodes = append(graph.Nodes, Node{
			ID:    e.Key(),
			Kind:  string(entity.KindOf(e)),
			Label: labelOf(e),
		})
	}

	for _, pair := range g.Pairs() {
		addNode(pair.Key)
		for _, member := range pair.Members {
			addNode(member)
			graph.Edges = append(graph.Edges, Edge{
				Source:       pair.Key.Key(),
				Target:       member.Key(),
				TargetKind:   string(entity.KindOf(member)),
				Relationship: relationship,
			})
		}
	}

	return graph
}

// MergeGraphs combines several projections into one, deduplicating nodes
// by ID. Edges are concatenated as-is.
func MergeGraphs(graphs ...*GraphData) *GraphData {
	merged := &GraphData{}
	seen := make(map[string]bool)

	for _, g := range graphs {
		for _, n := range g.Nodes {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			merged.Nodes = append(merged.Nodes, n)
		}
		merged.Edges = append(merged.Edges, g.Edges...)
	}

	return merged
}

// labelOf resolves an entity's display name, falling back to its key.
func labelOf(e entity.Keyed) string {
	l, ok := e.(labeler)
	if !ok {
		log.Printf("viz: entity %q (%s) has no display attribute, using key", e.Key(), entity.KindOf(e))
		return e.Key()
	}
	return l.Label()
}
