package report

import (
	"slices"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/store"
)

// KindStats counts one flag kind's findings.
type KindStats struct {
	Kind         domain.FlagKind `json:"kind"`
	Flags        int             `json:"flags"`
	Transactions int             `json:"transactions"`
}

// Summary aggregates a report over the batch it was produced from.
type Summary struct {
	TotalTransactions   int         `json:"totalTransactions"`
	FlaggedTransactions int         `json:"flaggedTransactions"`
	TotalFlags          int         `json:"totalFlags"`
	ByKind              []KindStats `json:"byKind"`
	// ByMonth counts distinct flagged transactions per calendar month (UTC), January first.
	ByMonth [12]int `json:"byMonth"`
}

// Summarize counts flags per kind and flagged transactions per month.
// Transaction ids not present in the store are counted per kind but have no month.
func Summarize(s *store.Store, r domain.Report) Summary {
	sum := Summary{
		TotalTransactions: s.Len(),
		TotalFlags:        len(r.Flags),
		ByKind:            make([]KindStats, len(domain.FlagKinds)),
	}
	perKind := make([]map[string]struct{}, len(domain.FlagKinds))
	for i, kind := range domain.FlagKinds {
		sum.ByKind[i].Kind = kind
		perKind[i] = make(map[string]struct{})
	}

	flagged := make(map[string]struct{})
	for _, f := range r.Flags {
		rank := f.Kind.Rank()
		if rank >= len(domain.FlagKinds) {
			continue
		}
		sum.ByKind[rank].Flags++
		for _, id := range f.TransactionIDs {
			perKind[rank][id] = struct{}{}
			flagged[id] = struct{}{}
		}
	}
	for i := range sum.ByKind {
		sum.ByKind[i].Transactions = len(perKind[i])
	}

	sum.FlaggedTransactions = len(flagged)
	for id := range flagged {
		if tx, ok := s.Get(id); ok {
			sum.ByMonth[tx.Timestamp.UTC().Month()-1]++
		}
	}
	return sum
}

// AnnotatedRecord is an input record relabelled from the report.
type AnnotatedRecord struct {
	domain.Record
	Reasons []domain.FlagKind `json:"reasons,omitempty"`
}

// Annotate returns every stored transaction in time order, labelled
// suspicious when at least one flag covers it and clean otherwise.
// The labels the batch arrived with are replaced, never consulted.
func Annotate(s *store.Store, r domain.Report) []AnnotatedRecord {
	reasons := make(map[string][]domain.FlagKind)
	for _, f := range r.Flags {
		for _, id := range f.TransactionIDs {
			if !slices.Contains(reasons[id], f.Kind) {
				reasons[id] = append(reasons[id], f.Kind)
			}
		}
	}

	txs := s.AllByTime()
	out := make([]AnnotatedRecord, 0, len(txs))
	for _, tx := range txs {
		rec := AnnotatedRecord{Record: tx.Record()}
		kinds := reasons[tx.ID]
		if len(kinds) == 0 {
			rec.Label = domain.LabelClean
		} else {
			slices.SortFunc(kinds, func(a, b domain.FlagKind) int { return a.Rank() - b.Rank() })
			rec.Label = domain.LabelSuspicious
			rec.Reasons = kinds
		}
		out = append(out, rec)
	}
	return out
}
