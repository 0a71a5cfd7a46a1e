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

// VelocityDetector pairs an inflow with a prompt, slightly smaller outflow.
type VelocityDetector struct {
	window time.Duration
	ratio  decimal.Decimal
}

// NewVelocityDetector builds a VelocityDetector from cfg.
func NewVelocityDetector(cfg Config) *VelocityDetector {
	return &VelocityDetector{
		window: cfg.VelocityWindow,
		ratio:  decimal.NewFromFloat(cfg.PassThroughRatio),
	}
}

// Kind returns FlagVelocityPassThrough.
func (d *VelocityDetector) Kind() domain.FlagKind { return domain.FlagVelocityPassThrough }

// Detect matches inflows earliest first; each outflow backs at most one pair.
// The outflow must be strictly later than the inflow and no more than window after it.
func (d *VelocityDetector) Detect(ctx context.Context, _ *store.Store, g *graph.Graph) ([]domain.Flag, error) {
	var flags []domain.Flag
	for _, account := range g.Nodes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		used := make(map[string]bool)
		for _, in := range g.In(account) {
			out, ok := d.match(in, g.OutAfter(account, in.Timestamp), used)
			if !ok {
				continue
			}
			used[out.ID] = true

			score := ratio(amount(out.Amount), amount(in.Amount))
			reason := fmt.Sprintf("%s forwarded %d of %d received after %s",
				account, out.Amount, in.Amount, out.Timestamp.Sub(in.Timestamp))
			flags = append(flags, newFlag(domain.FlagVelocityPassThrough, reason, score, in, out))
		}
	}
	return flags, nil
}

func (d *VelocityDetector) match(in graph.Edge, candidates []graph.Edge, used map[string]bool) (graph.Edge, bool) {
	received := amount(in.Amount)
	floor := d.ratio.Mul(received)
	for _, out := range candidates {
		if out.Timestamp.Sub(in.Timestamp) > d.window {
			break
		}
		if used[out.ID] {
			continue
		}
		sent := amount(out.Amount)
		if sent.GreaterThanOrEqual(floor) && sent.LessThanOrEqual(received) {
			return out, true
		}
	}
	return graph.Edge{}, false
}
