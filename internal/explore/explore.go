// Package explore answers bounded neighborhood queries over the transaction graph.
package explore

import (
	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
)

// Explore returns every account within maxDepth hops of seed, following edges
// in either direction. The seed is at depth 0; a negative depth counts as 0.
// An unknown seed yields an empty neighborhood and a NotFoundError.
func Explore(g *graph.Graph, seed string, maxDepth int) (domain.Neighborhood, error) {
	if maxDepth < 0 {
		maxDepth = 0
	}
	n := domain.Neighborhood{Seed: seed, MaxDepth: maxDepth, Depths: map[string]int{}}
	if !g.HasNode(seed) {
		return n, &domain.NotFoundError{Account: seed}
	}

	n.Depths[seed] = 0
	frontier := []string{seed}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, account := range frontier {
			for _, neighbor := range g.Neighbors(account) {
				if _, visited := n.Depths[neighbor]; visited {
					continue
				}
				n.Depths[neighbor] = depth
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return n, nil
}
