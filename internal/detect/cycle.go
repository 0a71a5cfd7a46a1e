package detect

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graph"
	"github.com/fuyalasmit/money-map/internal/store"
)

const cancelCheckInterval = 1024

// CycleDetector finds time-ordered directed cycles with a bounded DFS.
type CycleDetector struct {
	maxLength int
	window    time.Duration
	budget    int
}

// NewCycleDetector builds a CycleDetector from the cycle limits in cfg.
func NewCycleDetector(cfg Config) *CycleDetector {
	return &CycleDetector{
		maxLength: cfg.MaxCycleLength,
		window:    cfg.MaxCycleWindow,
		budget:    cfg.CycleSearchBudget,
	}
}

// Kind returns FlagCycleLaundering.
func (d *CycleDetector) Kind() domain.FlagKind { return domain.FlagCycleLaundering }

// Detect walks time-increasing paths from every transfer and flags those that
// return to their origin. It gives up with a DetectorTimeout once the step
// budget is spent.
func (d *CycleDetector) Detect(ctx context.Context, _ *store.Store, g *graph.Graph) ([]domain.Flag, error) {
	search := &cycleSearch{
		ctx:      ctx,
		g:        g,
		detector: d,
		seen:     make(map[string]struct{}),
	}

	for _, node := range g.Nodes() {
		for _, e := range g.Out(node) {
			onPath := map[string]bool{e.From: true, e.To: true}
			if err := search.walk([]graph.Edge{e}, onPath); err != nil {
				return nil, err
			}
		}
	}
	return search.flags, nil
}

type cycleSearch struct {
	ctx      context.Context
	g        *graph.Graph
	detector *CycleDetector
	steps    int
	seen     map[string]struct{}
	flags    []domain.Flag
}

// walk extends path with every edge leaving its last account strictly later
// than the last transfer, closing a cycle whenever the edge returns to the start.
func (s *cycleSearch) walk(path []graph.Edge, onPath map[string]bool) error {
	first := path[0]
	last := path[len(path)-1]

	for _, e := range s.g.OutAfter(last.To, last.Timestamp) {
		if e.Timestamp.Sub(first.Timestamp) >= s.detector.window {
			break
		}
		s.steps++
		if s.steps > s.detector.budget {
			return &domain.DetectorTimeout{Detector: domain.FlagCycleLaundering, Budget: s.detector.budget}
		}
		if s.steps%cancelCheckInterval == 0 {
			if err := s.ctx.Err(); err != nil {
				return err
			}
		}

		if e.To == first.From {
			s.record(append(path, e))
			continue
		}
		if len(path)+1 >= s.detector.maxLength || onPath[e.To] {
			continue
		}

		onPath[e.To] = true
		if err := s.walk(append(path, e), onPath); err != nil {
			return err
		}
		delete(onPath, e.To)
	}
	return nil
}

func (s *cycleSearch) record(cycle []graph.Edge) {
	ids := make([]string, len(cycle))
	for i, e := range cycle {
		ids[i] = e.ID
	}
	key := rotationKey(ids)
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}

	first, last := cycle[0], cycle[len(cycle)-1]
	score := ratio(amount(last.Amount), amount(first.Amount))
	if score > 1 {
		score = 1
	}
	reason := fmt.Sprintf("funds left %s and returned through %d transfers within %s",
		first.From, len(cycle), last.Timestamp.Sub(first.Timestamp))
	s.flags = append(s.flags, newFlag(domain.FlagCycleLaundering, reason, score, cycle...))
}

// rotationKey identifies a cycle independently of the transfer it starts from.
func rotationKey(ids []string) string {
	start := 0
	for i, id := range ids {
		if id < ids[start] {
			start = i
		}
	}
	rotated := append(slices.Clone(ids[start:]), ids[:start]...)
	return strings.Join(rotated, "\x00")
}
