// Package graph holds the directed transaction multigraph built from a store.
// A Graph is read-only once built and safe for concurrent readers.
package graph

import (
	"slices"
	"time"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/store"
)

// Edge is one transaction between two accounts. Parallel edges are distinct.
type Edge struct {
	ID        string
	From      string
	To        string
	Amount    int64
	Timestamp time.Time
}

// Graph is a directed multigraph keyed by account identifier.
type Graph struct {
	nodes []string
	edges []Edge
	out   map[string][]Edge
	in    map[string][]Edge
}

// Build adds one edge per transaction. Adjacency lists inherit the store's
// timestamp order, so every Out and In slice is sorted by time, then id.
func Build(s *store.Store) *Graph {
	txs := s.AllByTime()
	g := &Graph{
		edges: make([]Edge, 0, len(txs)),
		out:   make(map[string][]Edge),
		in:    make(map[string][]Edge),
	}
	seen := make(map[string]struct{})
	addNode := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		g.nodes = append(g.nodes, id)
	}

	for _, tx := range txs {
		e := edgeFrom(tx)
		addNode(e.From)
		addNode(e.To)
		g.edges = append(g.edges, e)
		g.out[e.From] = append(g.out[e.From], e)
		g.in[e.To] = append(g.in[e.To], e)
	}
	slices.Sort(g.nodes)
	return g
}

func edgeFrom(tx domain.Transaction) Edge {
	return Edge{
		ID:        tx.ID,
		From:      tx.Sender,
		To:        tx.Receiver,
		Amount:    tx.Amount,
		Timestamp: tx.Timestamp,
	}
}

// Nodes returns all accounts, sorted. The slice is shared and must not be modified.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// HasNode reports whether the account appears in any transaction.
func (g *Graph) HasNode(account string) bool {
	_, ok := g.out[account]
	if ok {
		return true
	}
	_, ok = g.in[account]
	return ok
}

// Edges returns every edge in time order. The slice is shared and must not be modified.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Out returns the account's outgoing edges in time order. Shared; do not modify.
func (g *Graph) Out(account string) []Edge {
	return g.out[account]
}

// In returns the account's incoming edges in time order. Shared; do not modify.
func (g *Graph) In(account string) []Edge {
	return g.in[account]
}

// Neighbors returns the distinct accounts adjacent to account in either direction, sorted.
func (g *Graph) Neighbors(account string) []string {
	set := make(map[string]struct{})
	for _, e := range g.out[account] {
		set[e.To] = struct{}{}
	}
	for _, e := range g.in[account] {
		set[e.From] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// NodeCount returns the number of accounts.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of transactions.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// OutAfter returns the account's outgoing edges strictly later than ts.
func (g *Graph) OutAfter(account string, ts time.Time) []Edge {
	out := g.out[account]
	i, _ := slices.BinarySearchFunc(out, ts, func(e Edge, t time.Time) int {
		if e.Timestamp.After(t) {
			return 1
		}
		return -1
	})
	return out[i:]
}
