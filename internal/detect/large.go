package detect

import (
	"context"
	"fmt"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
	"github.com/fuyalasmit/money-map/internal/store"
)

// LargeAmountDetector flags single transfers at or above a threshold.
type LargeAmountDetector struct {
	threshold int64
}

// NewLargeAmountDetector builds a LargeAmountDetector using cfg.LargeAmountThreshold.
func NewLargeAmountDetector(cfg Config) *LargeAmountDetector {
	return &LargeAmountDetector{threshold: cfg.LargeAmountThreshold}
}

// Kind returns FlagLargeAmount.
func (d *LargeAmountDetector) Kind() domain.FlagKind { return domain.FlagLargeAmount }

// Detect flags every transfer at or above the threshold.
func (d *LargeAmountDetector) Detect(ctx context.Context, _ *store.Store, g *graph.Graph) ([]domain.Flag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var flags []domain.Flag
	for _, e := range g.Edges() {
		if e.Amount < d.threshold {
			continue
		}
		reason := fmt.Sprintf("transfer of %d meets the %d threshold", e.Amount, d.threshold)
		flags = append(flags, newFlag(domain.FlagLargeAmount, reason, ratio(amount(e.Amount), amount(d.threshold)), e))
	}
	return flags, nil
}
