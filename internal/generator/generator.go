package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/fuyalasmit/money-map/internal/domain"
)

// patternSpan bounds how long any single pattern instance lasts.
const patternSpan = 8 * 24 * time.Hour

// Instance is the ground truth for one planted pattern.
type Instance struct {
	Kind           domain.FlagKind `json:"kind"`
	TransactionIDs []string        `json:"transactionIds"`
	Accounts       []string        `json:"accounts"`
}

// Dataset contains the generated records and the patterns planted in them.
type Dataset struct {
	Records   []domain.Record `json:"transactions"`
	Instances []Instance      `json:"instances"`
}

// Generator produces a labelled batch of clean traffic mixed with instances
// of every detectable pattern. Each instance runs between accounts minted for
// it alone, so clean traffic never completes or breaks a planted pattern.
// Every record carries the clean label; the patterns are only structural.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
	accounts      map[string]string
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	cfg = cfg.withDefaults()
	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
		accounts:      make(map[string]string),
	}
}

// Config returns the effective configuration after defaults were applied.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate synthesises the batch. It respects context cancellation.
// Records are shuffled, so the batch is not in timestamp order.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	var (
		txs       []domain.Transaction
		instances []Instance
	)

	plant := func(kind domain.FlagKind, count int, build func() []domain.Transaction) error {
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			members := build()
			txs = append(txs, members...)
			instances = append(instances, instanceOf(kind, members))
		}
		return nil
	}

	steps := []struct {
		kind  domain.FlagKind
		count int
		build func() []domain.Transaction
	}{
		{domain.FlagCycleLaundering, g.cfg.Cycles, g.cycle},
		{domain.FlagStructuring, g.cfg.Structuring, g.structuring},
		{domain.FlagVelocityPassThrough, g.cfg.Velocity, g.velocity},
		{domain.FlagLargeAmount, g.cfg.LargeAmount, g.largeAmount},
		{domain.FlagReciprocal, g.cfg.Reciprocal, g.reciprocal},
	}
	for _, step := range steps {
		if err := plant(step.kind, step.count, step.build); err != nil {
			return Dataset{}, err
		}
	}

	clean, err := g.cleanTraffic(ctx)
	if err != nil {
		return Dataset{}, err
	}
	txs = append(txs, clean...)

	g.rand.Shuffle(len(txs), func(i, j int) { txs[i], txs[j] = txs[j], txs[i] })
	records := make([]domain.Record, len(txs))
	for i, tx := range txs {
		records[i] = tx.Record()
	}
	return Dataset{Records: records, Instances: instances}, nil
}

func (g *Generator) cleanTraffic(ctx context.Context) ([]domain.Transaction, error) {
	pool := make([]string, g.cfg.Accounts)
	for i := range pool {
		pool[i] = g.newAccount()
	}

	n := int(math.Round(g.cfg.CleanFraction * float64(g.cfg.TotalTransactions)))
	txs := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		senderIdx := g.rand.Intn(len(pool))
		receiverIdx := g.rand.Intn(len(pool))
		if senderIdx == receiverIdx {
			receiverIdx = (receiverIdx + 1) % len(pool)
		}
		at := g.cfg.Start.Add(time.Duration(g.rand.Int63n(int64(g.cfg.Span))))
		txs = append(txs, g.transfer(pool[senderIdx], pool[receiverIdx], g.between(1000, 45000), at.Truncate(time.Second)))
	}
	return txs, nil
}

// cycle moves funds around 3 or 4 accounts, 12 to 36 hours per hop, each hop
// within 500 of the starting amount.
func (g *Generator) cycle() []domain.Transaction {
	k := 3 + g.rand.Intn(2)
	ring := g.newAccounts(k)
	base := g.between(3000, 8000)
	at := g.instanceStart()

	txs := make([]domain.Transaction, 0, k)
	for i := 0; i < k; i++ {
		txs = append(txs, g.transfer(ring[i], ring[(i+1)%k], base+g.between(-500, 500), at))
		at = at.Add(g.hours(12, 36))
	}
	return txs
}

// structuring sends 4 or 5 transfers of 800 to 950 from one account within 20 hours.
func (g *Generator) structuring() []domain.Transaction {
	n := 4 + g.rand.Intn(2)
	sender := g.newAccount()
	receivers := g.newAccounts(n)
	at := g.instanceStart()

	txs := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, g.transfer(sender, receivers[i], g.between(800, 950), at))
		at = at.Add(g.minutes(30, 20*60/n))
	}
	return txs
}

// velocity routes 10k to 30k through a mule that forwards 80 to 95 percent
// of it 15 to 45 minutes later.
func (g *Generator) velocity() []domain.Transaction {
	accts := g.newAccounts(3)
	in := g.between(10000, 30000)
	out := (in*g.between(80, 95) + 99) / 100
	at := g.instanceStart()
	return []domain.Transaction{
		g.transfer(accts[0], accts[1], in, at),
		g.transfer(accts[1], accts[2], out, at.Add(g.minutes(15, 45))),
	}
}

func (g *Generator) largeAmount() []domain.Transaction {
	accts := g.newAccounts(2)
	return []domain.Transaction{g.transfer(accts[0], accts[1], g.between(60000, 150000), g.instanceStart())}
}

// reciprocal sends 5k to 20k and gets it back, less up to 50, 5 to 30 minutes later.
func (g *Generator) reciprocal() []domain.Transaction {
	accts := g.newAccounts(2)
	amount := g.between(5000, 20000)
	at := g.instanceStart()
	return []domain.Transaction{
		g.transfer(accts[0], accts[1], amount, at),
		g.transfer(accts[1], accts[0], amount-g.between(0, 50), at.Add(g.minutes(5, 30))),
	}
}

func instanceOf(kind domain.FlagKind, txs []domain.Transaction) Instance {
	inst := Instance{Kind: kind}
	seen := make(map[string]bool)
	for _, tx := range txs {
		inst.TransactionIDs = append(inst.TransactionIDs, tx.ID)
		for _, acct := range []string{tx.Sender, tx.Receiver} {
			if !seen[acct] {
				seen[acct] = true
				inst.Accounts = append(inst.Accounts, acct)
			}
		}
	}
	return inst
}

func (g *Generator) transfer(from, to string, amount int64, at time.Time) domain.Transaction {
	return domain.Transaction{
		ID:           g.newID(),
		Sender:       from,
		Receiver:     to,
		SenderName:   g.accounts[from],
		ReceiverName: g.accounts[to],
		Amount:       amount,
		Timestamp:    at.UTC(),
		Remarks:      g.randomRemark(),
		Label:        domain.LabelClean,
	}
}

func (g *Generator) newID() string {
	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		// math/rand never fails to fill a buffer.
		panic(fmt.Sprintf("generate id: %v", err))
	}
	return id.String()
}

// newAccount mints an unused six-digit account number and a holder name.
func (g *Generator) newAccount() string {
	for {
		acct := fmt.Sprintf("%06d", 100000+g.rand.Intn(900000))
		if _, taken := g.accounts[acct]; taken {
			continue
		}
		g.accounts[acct] = g.randomFullName()
		return acct
	}
}

func (g *Generator) newAccounts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = g.newAccount()
	}
	return out
}

func (g *Generator) instanceStart() time.Time {
	window := int64(g.cfg.Span - patternSpan)
	return g.cfg.Start.Add(time.Duration(g.rand.Int63n(window + 1))).Truncate(time.Second)
}

// between returns a uniform integer in [lo, hi].
func (g *Generator) between(lo, hi int64) int64 {
	return lo + g.rand.Int63n(hi-lo+1)
}

func (g *Generator) minutes(lo, hi int) time.Duration {
	return time.Duration(g.between(int64(lo), int64(hi))) * time.Minute
}

func (g *Generator) hours(lo, hi int) time.Duration {
	return time.Duration(g.between(int64(lo), int64(hi))) * time.Hour
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))])
}

func (g *Generator) randomRemark() string {
	return g.nameFragments.remarks[g.rand.Intn(len(g.nameFragments.remarks))]
}

type nameFragments struct {
	first   []string
	last    []string
	remarks []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:   []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara", "Aarav", "Sita", "Bikash"},
		last:    []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee", "Shrestha", "Thapa"},
		remarks: []string{"House Rent", "Salary", "Loan Repayment", "School Fees", "Groceries", "Invoice settlement", "Freelance payout", "Peer transfer", "Utility Bill", "Gift"},
	}
}
