// Package viz projects mediator groupings into graph form for
// visualization and analytics tooling.
package viz

// GraphData contains all data needed to render a cross-reference graph.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents one entity in the graph.
type Node struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"` // entity kind: institution, publication, ...
	Label string `json:"label"`
}

// Edge represents one grouping association.
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	TargetKind   string `json:"targetKind"`
	Relationship string `json:"relationship"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
