package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
	"github.com/fuyalasmit/money-map/internal/store"
)

// ReciprocalDetector flags a transfer promptly reversed by a near-equal return.
type ReciprocalDetector struct {
	window    time.Duration
	tolerance decimal.Decimal
	epsilon   decimal.Decimal
}

// NewReciprocalDetector builds a ReciprocalDetector from cfg.
func NewReciprocalDetector(cfg Config) *ReciprocalDetector {
	return &ReciprocalDetector{
		window:    cfg.ReciprocalWindow,
		tolerance: decimal.NewFromFloat(cfg.ReciprocalTolerance),
		epsilon:   decimal.NewFromInt(cfg.ReciprocalEpsilon),
	}
}

// Kind returns FlagReciprocal.
func (d *ReciprocalDetector) Kind() domain.FlagKind { return domain.FlagReciprocal }

type accountPair struct {
	low, high string
}

func pairOf(e graph.Edge) accountPair {
	if e.From < e.To {
		return accountPair{e.From, e.To}
	}
	return accountPair{e.To, e.From}
}

// Detect walks each account pair's transfers in time order. Every transfer
// takes the earliest unconsumed return that follows it within the window, and
// each transfer is consumed at most once.
func (d *ReciprocalDetector) Detect(ctx context.Context, _ *store.Store, g *graph.Graph) ([]domain.Flag, error) {
	var order []accountPair
	byPair := make(map[accountPair][]graph.Edge)
	for _, e := range g.Edges() {
		p := pairOf(e)
		if _, ok := byPair[p]; !ok {
			order = append(order, p)
		}
		byPair[p] = append(byPair[p], e)
	}

	var flags []domain.Flag
	for _, p := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edges := byPair[p]
		consumed := make([]bool, len(edges))
		for i, x := range edges {
			if consumed[i] {
				continue
			}
			j, ok := d.match(x, edges, i, consumed)
			if !ok {
				continue
			}
			consumed[i], consumed[j] = true, true
			y := edges[j]

			diff := amount(x.Amount).Sub(amount(y.Amount)).Abs()
			score := 1 - ratio(diff, amount(x.Amount))
			reason := fmt.Sprintf("%s returned %d of %d to %s after %s",
				y.From, y.Amount, x.Amount, x.From, y.Timestamp.Sub(x.Timestamp))
			flags = append(flags, newFlag(domain.FlagReciprocal, reason, score, x, y))
		}
	}
	return flags, nil
}

func (d *ReciprocalDetector) match(x graph.Edge, edges []graph.Edge, from int, consumed []bool) (int, bool) {
	sent := amount(x.Amount)
	allowed := decimal.Max(d.tolerance.Mul(sent), d.epsilon)
	for j := from + 1; j < len(edges); j++ {
		y := edges[j]
		if y.Timestamp.Sub(x.Timestamp) > d.window {
			break
		}
		if consumed[j] || y.From != x.To || !y.Timestamp.After(x.Timestamp) {
			continue
		}
		if sent.Sub(amount(y.Amount)).Abs().LessThanOrEqual(allowed) {
			return j, true
		}
	}
	return 0, false
}
