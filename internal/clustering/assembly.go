package clustering

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/models"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// assemble walks the surviving pair graph greedily per §4.5's "Cluster
// assembly" paragraph: for each unclustered article in ascending order,
// grow a provisional cluster from its connected component, admitting a
// candidate only while I1 (one article per source) and I2 (at most
// MaxClusterSize members) hold. A component that never reaches two members
// produces no cluster (no singleton rows).
//
// Connected components are found with an iterative DFS over an adjacency
// list built from the surviving pairs, not recursion, per §9's explicit
// "must not use recursion" note (pair graphs can chain arbitrarily deep
// across a large batch).
func (e *Engine) assemble(ctx context.Context, articles []models.Article, pairs []pairKey) ([]models.Cluster, error) {
	byID := articlesByID(articles)
	adjacency := buildAdjacency(pairs)

	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	sortIDsByCreatedAtThenID(ids, byID)

	visited := map[string]bool{}
	var clusters []models.Cluster

	for _, id := range ids {
		if visited[id] {
			continue
		}
		component := connectedComponent(id, adjacency, visited)
		if len(component) < models.MinClusterSize {
			continue
		}
		sortIDsByCreatedAtThenID(component, byID)

		members := growCluster(component, byID)
		if len(members) < models.MinClusterSize {
			continue
		}

		cluster, err := e.persistCluster(ctx, members, byID)
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, *cluster)
	}
	return clusters, nil
}

// sortIDsByCreatedAtThenID orders article ids by the same (CreatedAt, ID)
// rule orderArticles applies to []models.Article, so seed selection and
// candidate admission order stay chronological instead of keyed off random
// UUID byte order.
func sortIDsByCreatedAtThenID(ids []string, byID map[string]models.Article) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := byID[ids[i]], byID[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// buildAdjacency turns the surviving pairs into an undirected adjacency
// list keyed by article id.
func buildAdjacency(pairs []pairKey) map[string][]string {
	adj := map[string][]string{}
	for _, p := range pairs {
		adj[p.a] = append(adj[p.a], p.b)
		adj[p.b] = append(adj[p.b], p.a)
	}
	for id := range adj {
		sort.Strings(adj[id])
	}
	return adj
}

// connectedComponent returns every id reachable from start via an
// iterative DFS, marking each as visited along the way.
func connectedComponent(start string, adjacency map[string][]string, visited map[string]bool) []string {
	var component []string
	stack := []string{start}
	visited[start] = true

	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		component = append(component, cur)

		for _, next := range adjacency[cur] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return component
}

// growCluster admits candidates from a connected component in ascending id
// order, honoring I1 (distinct sources) and I2 (size cap). The seed article
// is always admitted; every later candidate must both be unclustered
// (callers only pass unclustered batches, so this is true by construction
// here) and pass the source/size checks.
func growCluster(component []string, byID map[string]models.Article) []string {
	seed := component[0]
	members := []string{seed}
	sources := map[string]bool{byID[seed].SourceID: true}

	for _, candidateID := range component[1:] {
		if len(members) >= models.MaxClusterSize {
			log.Warn().Str("seed", seed).Int("cap", models.MaxClusterSize).Msg("clustering: cluster hit size cap, truncating remaining candidates")
			break
		}
		candidate := byID[candidateID]
		if sources[candidate.SourceID] {
			continue // I1: one article per source
		}
		members = append(members, candidateID)
		sources[candidate.SourceID] = true
	}
	return members
}

// persistCluster creates the cluster row and assigns every member's
// cluster id in one transaction, per §5's "cluster-create + member assign"
// boundary. The display name and master article are the seed (earliest
// by (CreatedAt, ID)) member's title, matching §4.5.
func (e *Engine) persistCluster(ctx context.Context, members []string, byID map[string]models.Article) (*models.Cluster, error) {
	seed := byID[members[0]]
	cluster := &models.Cluster{
		ID:              newClusterID(),
		DisplayName:     seed.Title,
		MasterArticleID: seed.ID,
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("clustering: begin assembly tx: %w", err)
	}
	if err := store.CreateClusterTx(ctx, tx, cluster, members); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("clustering: create cluster: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("clustering: commit assembly: %w", err)
	}
	log.Info().Str("cluster", cluster.ID).Int("members", len(members)).Msg("clustering: assembled cluster")
	return cluster, nil
}
