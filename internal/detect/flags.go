package detect

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
)

func newFlag(kind domain.FlagKind, reason string, score float64, edges ...graph.Edge) domain.Flag {
	ids := make([]string, 0, len(edges))
	accounts := make([]string, 0, 2*len(edges))
	for _, e := range edges {
		ids = append(ids, e.ID)
		accounts = append(accounts, e.From, e.To)
	}
	slices.Sort(accounts)
	return domain.Flag{
		Kind:           kind,
		TransactionIDs: ids,
		Accounts:       slices.Compact(accounts),
		Reason:         reason,
		Score:          score,
	}
}

// ratio returns num/den rounded to four places.
func ratio(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	f, _ := num.Div(den).Round(4).Float64()
	return f
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
