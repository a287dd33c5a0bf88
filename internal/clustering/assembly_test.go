package clustering

import (
	"testing"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestBuildAdjacencyIsUndirected(t *testing.T) {
	pairs := []pairKey{{"a", "b"}, {"b", "c"}}
	adj := buildAdjacency(pairs)

	if !contains(adj["a"], "b") || !contains(adj["b"], "a") {
		t.Errorf("buildAdjacency did not produce an undirected edge for a-b: %v", adj)
	}
	if !contains(adj["b"], "c") || !contains(adj["c"], "b") {
		t.Errorf("buildAdjacency did not produce an undirected edge for b-c: %v", adj)
	}
}

func TestConnectedComponentFindsTransitiveChain(t *testing.T) {
	adj := buildAdjacency([]pairKey{{"a", "b"}, {"b", "c"}})
	visited := map[string]bool{}

	component := connectedComponent("a", adj, visited)

	if len(component) != 3 {
		t.Fatalf("connectedComponent returned %v, want 3 members", component)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !visited[id] {
			t.Errorf("expected %q to be visited", id)
		}
	}
}

func TestConnectedComponentDoesNotCrossDisjointPairs(t *testing.T) {
	adj := buildAdjacency([]pairKey{{"a", "b"}, {"c", "d"}})
	visited := map[string]bool{}

	component := connectedComponent("a", adj, visited)

	if len(component) != 2 {
		t.Fatalf("connectedComponent crossed into a disjoint component: %v", component)
	}
	if visited["c"] || visited["d"] {
		t.Errorf("connectedComponent marked disjoint nodes visited: %v", visited)
	}
}

func TestGrowClusterEnforcesSourceUniqueness(t *testing.T) {
	byID := map[string]models.Article{
		"a": {ID: "a", SourceID: "src1"},
		"b": {ID: "b", SourceID: "src1"}, // same source as a: must be rejected (I1)
		"c": {ID: "c", SourceID: "src2"},
	}

	members := growCluster([]string{"a", "b", "c"}, byID)

	if contains(members, "b") {
		t.Errorf("growCluster admitted a same-source duplicate: %v", members)
	}
	if !contains(members, "a") || !contains(members, "c") {
		t.Errorf("growCluster dropped a valid cross-source member: %v", members)
	}
}

func TestGrowClusterEnforcesSizeCap(t *testing.T) {
	byID := map[string]models.Article{}
	var component []string
	for i := 0; i < models.MaxClusterSize+5; i++ {
		id := string(rune('a' + i))
		byID[id] = models.Article{ID: id, SourceID: id} // every article from a distinct source
		component = append(component, id)
	}

	members := growCluster(component, byID)

	if len(members) != models.MaxClusterSize {
		t.Errorf("growCluster returned %d members, want exactly MaxClusterSize=%d", len(members), models.MaxClusterSize)
	}
}

func contains(s []string, target string) bool {
	for _, v := range s {
		if v == target {
			return true
		}
	}
	return false
}
