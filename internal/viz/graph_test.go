package viz

import (
	"encoding/json"
	"testing"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
	"github.com/jlee2843/Peer-Review-2022/internal/mediator"
)

func testGrouping() *mediator.Grouping {
	g := mediator.NewGrouping()
	inst := &entity.Institution{Name: "FRED HUTCH"}
	journal := &entity.Journal{Title: "eLife"}

	articleA := &entity.Article{DOI: "10.1101/001", Title: "Paper A", Version: 1, PubDOI: "10.7554/eLife.001"}
	articleB := &entity.Article{DOI: "10.1101/002", Title: "Paper B", Version: 1, PubDOI: "10.7554/eLife.002"}
	pubA, _ := entity.NewPublication(journal, articleA)
	pubB, _ := entity.NewPublication(journal, articleB)

	g.Add(inst, pubA)
	g.Add(inst, pubB)
	return g
}

func TestBuildGraph(t *testing.T) {
	graph := BuildGraph(testGrouping(), "affiliated_with")

	if len(graph.Nodes) != 3 {
		t.Fatalf("expected 3 nodes (1 key + 2 members), got %d", len(graph.Nodes))
	}
	if len(graph.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(graph.Edges))
	}

	kinds := make(map[string]string)
	for _, n := range graph.Nodes {
		kinds[n.ID] = n.Kind
	}
	if kinds["FRED HUTCH"] != string(entity.KindInstitution) {
		t.Errorf("institution node kind = %q", kinds["FRED HUTCH"])
	}
	if kinds["10.7554/eLife.001"] != string(entity.KindPublication) {
		t.Errorf("publication node kind = %q", kinds["10.7554/eLife.001"])
	}

	for _, e := range graph.Edges {
		if e.Source != "FRED HUTCH" {
			t.Errorf("edge source = %q", e.Source)
		}
		if e.TargetKind != string(entity.KindPublication) {
			t.Errorf("edge target kind = %q", e.TargetKind)
		}
		if e.Relationship != "affiliated_with" {
			t.Errorf("edge relationship = %q", e.Relationship)
		}
	}
}

func TestBuildGraph_Empty(t *testing.T) {
	graph := BuildGraph(mediator.NewGrouping(), "anything")
	if !graph.IsEmpty() {
		t.Error("graph from empty grouping should be empty")
	}
}

func TestMergeGraphs_DeduplicatesNodes(t *testing.T) {
	a := &GraphData{Nodes: []Node{{ID: "x"}, {ID: "y"}}, Edges: []Edge{{Source: "x", Target: "y"}}}
	b := &GraphData{Nodes: []Node{{ID: "y"}, {ID: "z"}}, Edges: []Edge{{Source: "y", Target: "z"}}}

	merged := MergeGraphs(a, b)
	if len(merged.Nodes) != 3 {
		t.Errorf("expected 3 deduplicated nodes, got %d", len(merged.Nodes))
	}
	if len(merged.Edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(merged.Edges))
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	graph := BuildGraph(testGrouping(), "affiliated_with")

	out, err := graph.ToCytoscapeJSON()
	if err != nil {
		t.Fatalf("ToCytoscapeJSON: %v", err)
	}

	var elements CytoscapeElements
	if err := json.Unmarshal([]byte(out), &elements); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(elements.Nodes) != 3 || len(elements.Edges) != 2 {
		t.Errorf("cytoscape elements: %d nodes, %d edges", len(elements.Nodes), len(elements.Edges))
	}
	if elements.Edges[0].Data.ID == "" {
		t.Error("edge IDs must be populated")
	}
}
