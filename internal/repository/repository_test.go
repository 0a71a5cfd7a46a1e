package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graphdb"
)

func TestRepository_UpsertAccount(t *testing.T) {
	mem := graphdb.NewMemoryClient()
	repo := New(mem)

	if err := repo.UpsertAccount(context.Background(), "100001", "Jane Doe"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	calls := mem.Writes()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Query, "MERGE (a:Account") {
		t.Fatalf("unexpected query %s", calls[0].Query)
	}
	if calls[0].Params["accountId"] != "100001" || calls[0].Params["holder"] != "Jane Doe" {
		t.Fatalf("unexpected params %v", calls[0].Params)
	}

	if err := repo.UpsertAccount(context.Background(), "", "x"); !errors.Is(err, errMissingAccount) {
		t.Fatalf("expected errMissingAccount, got %v", err)
	}
}

func TestRepository_UpsertTransaction(t *testing.T) {
	mem := graphdb.NewMemoryClient()
	repo := New(mem)

	tx := domain.Transaction{
		ID:        "TX-1",
		Sender:    "100001",
		Receiver:  "100002",
		Amount:    950,
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Remarks:   "House Rent",
	}
	if err := repo.UpsertTransaction(context.Background(), tx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	call := mem.Writes()[0]
	if !strings.Contains(call.Query, "TRANSFER") {
		t.Fatalf("expected transfer relationship in query")
	}
	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["amount"] != int64(950) || props["timestamp"] != "2024-03-01T10:00:00Z" {
		t.Fatalf("unexpected props %v", props)
	}
	if call.Params["senderId"] != "100001" || call.Params["receiverId"] != "100002" {
		t.Fatalf("unexpected endpoints %v", call.Params)
	}
}

func TestRepository_UpsertFlag(t *testing.T) {
	mem := graphdb.NewMemoryClient()
	repo := New(mem)
	flag := domain.Flag{
		Kind:           domain.FlagCycleLaundering,
		TransactionIDs: []string{"T1", "T2", "T3"},
		Accounts:       []string{"A", "B", "C"},
		Reason:         "loop",
		Score:          0.9,
	}

	for i := 0; i < 2; i++ {
		if err := repo.UpsertFlag(context.Background(), flag); err != nil {
			t.Fatalf("upsert flag: %v", err)
		}
	}
	calls := mem.Writes()
	if calls[0].Params["flagId"] != calls[1].Params["flagId"] {
		t.Fatalf("flag id must be stable across exports")
	}
	if calls[0].Params["kind"] != "CycleLaundering" {
		t.Fatalf("unexpected kind param %v", calls[0].Params["kind"])
	}

	other := flag
	other.Kind = domain.FlagReciprocal
	if FlagID(other) == FlagID(flag) {
		t.Fatalf("different kinds must not share an id")
	}

	if err := repo.UpsertFlag(context.Background(), domain.Flag{Kind: domain.FlagLargeAmount}); !errors.Is(err, errEmptyFlag) {
		t.Fatalf("expected errEmptyFlag, got %v", err)
	}
}

func TestRepository_FlagCounts(t *testing.T) {
	mem := graphdb.NewMemoryClient()
	mem.PushReadResult(graphdb.Result{Records: []graphdb.Record{
		{"kind": "CycleLaundering", "flags": int64(3)},
		{"kind": "LargeAmount", "flags": int64(7)},
	}})
	repo := New(mem)

	counts, err := repo.FlagCounts(context.Background())
	if err != nil {
		t.Fatalf("flag counts: %v", err)
	}
	if counts[domain.FlagCycleLaundering] != 3 || counts[domain.FlagLargeAmount] != 7 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if len(mem.Reads()) != 1 {
		t.Fatalf("expected one read query")
	}
}

func TestRepository_FlagCountsBadColumn(t *testing.T) {
	mem := graphdb.NewMemoryClient()
	mem.PushReadResult(graphdb.Result{Records: []graphdb.Record{{"kind": "LargeAmount", "flags": "many"}}})
	if _, err := New(mem).FlagCounts(context.Background()); err == nil {
		t.Fatalf("expected error for non-integer count")
	}
}

func TestRepository_PropagatesClientErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := New(graphdb.NewMemoryClient().WithError(boom))

	if err := repo.UpsertAccount(context.Background(), "A", ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
	if _, err := repo.FlagCounts(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestRepository_Ping(t *testing.T) {
	if err := New(graphdb.NewMemoryClient()).Ping(context.Background()); err != nil {
		t.Fatalf("expected reachable client, got %v", err)
	}
	down := errors.New("connection refused")
	err := New(graphdb.NewMemoryClient().WithConnectivityError(down)).Ping(context.Background())
	if !errors.Is(err, down) || !strings.Contains(err.Error(), "verify graph connectivity") {
		t.Fatalf("expected wrapped connectivity error, got %v", err)
	}
}
