package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
	"github.com/fuyalasmit/money-map/internal/store"
)

// StructuringDetector flags bursts of sub-threshold transfers from one sender.
type StructuringDetector struct {
	window    time.Duration
	threshold int64
	minCount  int
}

// NewStructuringDetector builds a StructuringDetector from cfg.
func NewStructuringDetector(cfg Config) *StructuringDetector {
	return &StructuringDetector{
		window:    cfg.StructuringWindow,
		threshold: cfg.ReportingThreshold,
		minCount:  cfg.StructuringMinCount,
	}
}

// Kind returns FlagStructuring.
func (d *StructuringDetector) Kind() domain.FlagKind { return domain.FlagStructuring }

// Detect slides a two-pointer window over each sender's small transfers and
// emits every maximal window holding at least minCount of them. A window is
// inclusive: transfers exactly window apart share it.
func (d *StructuringDetector) Detect(ctx context.Context, _ *store.Store, g *graph.Graph) ([]domain.Flag, error) {
	var flags []domain.Flag
	for _, sender := range g.Nodes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		small := make([]graph.Edge, 0, len(g.Out(sender)))
		for _, e := range g.Out(sender) {
			if e.Amount < d.threshold {
				small = append(small, e)
			}
		}
		if len(small) < d.minCount {
			continue
		}

		left := 0
		for right := range small {
			for small[right].Timestamp.Sub(small[left].Timestamp) > d.window {
				left++
			}
			if right-left+1 < d.minCount {
				continue
			}
			extendable := right+1 < len(small) &&
				small[right+1].Timestamp.Sub(small[left].Timestamp) <= d.window
			if extendable {
				continue
			}
			flags = append(flags, d.flag(sender, small[left:right+1]))
		}
	}
	return flags, nil
}

func (d *StructuringDetector) flag(sender string, cluster []graph.Edge) domain.Flag {
	var total int64
	for _, e := range cluster {
		total += e.Amount
	}
	span := cluster[len(cluster)-1].Timestamp.Sub(cluster[0].Timestamp)
	reason := fmt.Sprintf("%s sent %d transfers below %d within %s totalling %d",
		sender, len(cluster), d.threshold, span, total)
	return newFlag(domain.FlagStructuring, reason, ratio(amount(total), amount(d.threshold)), cluster...)
}
