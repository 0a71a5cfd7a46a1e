// Package report merges detector output into a canonical report and renders it.
package report

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fuyalasmit/money-map/internal/domain"
)

// Aggregate merges flag sets into one report. Flags with the same kind and
// transaction id sequence collapse to the one that sorts first; flags of
// different kinds over the same transactions are all kept. The result is
// sorted canonically, so it does not depend on the order the sets are
// supplied in.
func Aggregate(flagSets ...[]domain.Flag) domain.Report {
	seen := make(map[string]int)
	flags := make([]domain.Flag, 0)
	for _, set := range flagSets {
		for _, f := range set {
			key := string(f.Kind) + "\x00" + strings.Join(f.TransactionIDs, "\x00")
			c := cloneFlag(f)
			if i, dup := seen[key]; dup {
				if compareFlags(c, flags[i]) < 0 {
					flags[i] = c
				}
				continue
			}
			seen[key] = len(flags)
			flags = append(flags, c)
		}
	}
	slices.SortFunc(flags, compareFlags)
	return domain.Report{Flags: flags}
}

func cloneFlag(f domain.Flag) domain.Flag {
	f.TransactionIDs = slices.Clone(f.TransactionIDs)
	accounts := slices.Clone(f.Accounts)
	slices.Sort(accounts)
	f.Accounts = slices.Compact(accounts)
	return f
}

// compareFlags orders by kind, accounts, sorted transaction ids, then the
// remaining fields so that equal keys still sort deterministically.
func compareFlags(a, b domain.Flag) int {
	if c := cmp.Compare(a.Kind.Rank(), b.Kind.Rank()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := slices.Compare(a.Accounts, b.Accounts); c != 0 {
		return c
	}
	if c := slices.Compare(sortedIDs(a), sortedIDs(b)); c != 0 {
		return c
	}
	if c := slices.Compare(a.TransactionIDs, b.TransactionIDs); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Reason, b.Reason); c != 0 {
		return c
	}
	return cmp.Compare(a.Score, b.Score)
}

func sortedIDs(f domain.Flag) []string {
	ids := slices.Clone(f.TransactionIDs)
	slices.Sort(ids)
	return ids
}
