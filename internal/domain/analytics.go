package domain

import (
	"cmp"
	"slices"
)

// Neighborhood is the set of accounts reachable from a seed within a hop bound.
type Neighborhood struct {
	Seed     string
	MaxDepth int
	// Depths maps every reached account to its hop distance from Seed.
	Depths map[string]int
}

// Accounts returns the reached accounts ordered by depth, then identifier.
func (n Neighborhood) Accounts() []string {
	out := make([]string, 0, len(n.Depths))
	for account := range n.Depths {
		out = append(out, account)
	}
	slices.SortFunc(out, func(a, b string) int {
		if c := cmp.Compare(n.Depths[a], n.Depths[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return out
}

// Contains reports whether the account was reached.
func (n Neighborhood) Contains(account string) bool {
	_, ok := n.Depths[account]
	return ok
}

// Len is the number of reached accounts, the seed included.
func (n Neighborhood) Len() int {
	return len(n.Depths)
}
