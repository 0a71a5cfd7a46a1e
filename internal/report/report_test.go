package report

import (
	"bytes"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/store"
)

func flag(kind domain.FlagKind, ids []string, accounts ...string) domain.Flag {
	return domain.Flag{Kind: kind, TransactionIDs: ids, Accounts: accounts, Reason: string(kind) + " reason", Score: 0.5}
}

func sampleSets() [][]domain.Flag {
	return [][]domain.Flag{
		{
			flag(domain.FlagReciprocal, []string{"T4", "T5"}, "A", "B"),
		},
		{
			flag(domain.FlagLargeAmount, []string{"T2"}, "C", "B"),
			flag(domain.FlagLargeAmount, []string{"T1"}, "A", "B"),
		},
		{
			flag(domain.FlagCycleLaundering, []string{"T3", "T1", "T2"}, "A", "B", "C"),
			flag(domain.FlagCycleLaundering, []string{"T1", "T9"}, "A", "B"),
		},
	}
}

func TestAggregate_CanonicalOrder(t *testing.T) {
	r := Aggregate(sampleSets()...)
	got := make([]string, 0, len(r.Flags))
	for _, f := range r.Flags {
		got = append(got, string(f.Kind)+":"+strings.Join(f.TransactionIDs, ","))
	}
	want := []string{
		"CycleLaundering:T1,T9",
		"CycleLaundering:T3,T1,T2",
		"LargeAmount:T1",
		"LargeAmount:T2",
		"Reciprocal:T4,T5",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !slices.Equal(r.Flags[3].Accounts, []string{"B", "C"}) {
		t.Fatalf("accounts should be sorted, got %v", r.Flags[3].Accounts)
	}
}

func TestAggregate_IndependentOfInputOrder(t *testing.T) {
	sets := sampleSets()
	want := Aggregate(sets...)

	permutations := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}
	for _, perm := range permutations {
		shuffled := make([][]domain.Flag, len(perm))
		for i, p := range perm {
			inner := slices.Clone(sets[p])
			slices.Reverse(inner)
			shuffled[i] = inner
		}
		if got := Aggregate(shuffled...); !reflect.DeepEqual(got, want) {
			t.Fatalf("permutation %v changed the report:\n%+v\n%+v", perm, got, want)
		}
	}
}

func TestAggregate_Dedupe(t *testing.T) {
	a := flag(domain.FlagLargeAmount, []string{"T1"}, "A", "B")
	b := flag(domain.FlagCycleLaundering, []string{"T1"}, "A", "B")
	r := Aggregate([]domain.Flag{a, b}, []domain.Flag{a})
	if len(r.Flags) != 2 {
		t.Fatalf("expected identical flags merged and distinct kinds kept, got %d", len(r.Flags))
	}

	rotated := flag(domain.FlagCycleLaundering, []string{"T2", "T1"}, "A", "B")
	ordered := flag(domain.FlagCycleLaundering, []string{"T1", "T2"}, "A", "B")
	if r := Aggregate([]domain.Flag{rotated, ordered}); len(r.Flags) != 2 {
		t.Fatalf("different id sequences are different flags, got %d", len(r.Flags))
	}
}

func TestAggregate_ConflictingDuplicatesKeepLowest(t *testing.T) {
	low := flag(domain.FlagLargeAmount, []string{"T1"}, "A", "B")
	low.Reason, low.Score = "amount 60000", 0.5
	high := low
	high.Reason, high.Score = "amount 60000", 0.9

	first := Aggregate([]domain.Flag{high}, []domain.Flag{low})
	second := Aggregate([]domain.Flag{low}, []domain.Flag{high})
	if len(first.Flags) != 1 || !reflect.DeepEqual(first, second) {
		t.Fatalf("duplicate resolution depends on input order:\n%+v\n%+v", first, second)
	}
	if first.Flags[0].Score != 0.5 {
		t.Fatalf("expected the lower-sorting flag to win, got score %v", first.Flags[0].Score)
	}
}

func TestAggregate_DoesNotAliasInput(t *testing.T) {
	in := []domain.Flag{flag(domain.FlagLargeAmount, []string{"T1"}, "B", "A")}
	r := Aggregate(in)
	in[0].TransactionIDs[0] = "MUTATED"
	if r.Flags[0].TransactionIDs[0] != "T1" {
		t.Fatalf("report must own its slices")
	}
	if in[0].Accounts[0] != "B" {
		t.Fatalf("input accounts must not be sorted in place")
	}
}

func TestAggregate_Empty(t *testing.T) {
	r := Aggregate()
	if r.Flags == nil || len(r.Flags) != 0 {
		t.Fatalf("expected empty, non-nil flags")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	for _, r := range []domain.Report{Aggregate(sampleSets()...), Aggregate()} {
		data, err := Marshal(r)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		back, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !reflect.DeepEqual(back, r) {
			t.Fatalf("round trip mismatch:\n%+v\n%+v", back, r)
		}
	}
}

func TestMarshal_FieldNames(t *testing.T) {
	data, err := Marshal(Aggregate([]domain.Flag{flag(domain.FlagLargeAmount, []string{"T1"}, "A", "B")}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"flags"`, `"kind"`, `"transactionIds"`, `"accounts"`, `"reason"`, `"score"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Fatalf("expected %s in %s", key, data)
		}
	}
}

func TestUnmarshal_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown kind":    `{"flags":[{"kind":"Smurfing","transactionIds":["T1"],"accounts":[],"reason":""}]}`,
		"no transactions": `{"flags":[{"kind":"LargeAmount","transactionIds":[],"accounts":[],"reason":""}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(payload)); !errors.Is(err, ErrMalformedReport) {
				t.Fatalf("expected ErrMalformedReport, got %v", err)
			}
		})
	}
	if _, err := Unmarshal([]byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func sampleStore(t *testing.T) *store.Store {
	t.Helper()
	at := func(month time.Month) time.Time { return time.Date(2024, month, 10, 12, 0, 0, 0, time.UTC) }
	s, errs := store.FromTransactions([]domain.Transaction{
		{ID: "T1", Sender: "A", Receiver: "B", Amount: 60000, Timestamp: at(time.January), Label: domain.LabelSuspicious},
		{ID: "T2", Sender: "B", Receiver: "C", Amount: 55000, Timestamp: at(time.March)},
		{ID: "T3", Sender: "C", Receiver: "A", Amount: 100, Timestamp: at(time.March)},
		{ID: "T4", Sender: "A", Receiver: "B", Amount: 100, Timestamp: at(time.December)},
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected record errors: %v", errs)
	}
	return s
}

func TestSummarize(t *testing.T) {
	r := Aggregate([]domain.Flag{
		flag(domain.FlagLargeAmount, []string{"T1"}, "A", "B"),
		flag(domain.FlagLargeAmount, []string{"T2"}, "B", "C"),
		flag(domain.FlagCycleLaundering, []string{"T1", "T2", "T3"}, "A", "B", "C"),
	})
	sum := Summarize(sampleStore(t), r)

	if sum.TotalTransactions != 4 || sum.FlaggedTransactions != 3 || sum.TotalFlags != 3 {
		t.Fatalf("unexpected totals %+v", sum)
	}
	if len(sum.ByKind) != len(domain.FlagKinds) {
		t.Fatalf("expected a row per kind, got %d", len(sum.ByKind))
	}
	large := sum.ByKind[domain.FlagLargeAmount.Rank()]
	if large.Flags != 2 || large.Transactions != 2 {
		t.Fatalf("unexpected large-amount stats %+v", large)
	}
	cycle := sum.ByKind[domain.FlagCycleLaundering.Rank()]
	if cycle.Flags != 1 || cycle.Transactions != 3 {
		t.Fatalf("unexpected cycle stats %+v", cycle)
	}
	if sum.ByMonth[0] != 1 || sum.ByMonth[2] != 2 || sum.ByMonth[11] != 0 {
		t.Fatalf("unexpected month histogram %v", sum.ByMonth)
	}
}

func TestAnnotate(t *testing.T) {
	r := Aggregate([]domain.Flag{
		flag(domain.FlagLargeAmount, []string{"T1"}, "A", "B"),
		flag(domain.FlagCycleLaundering, []string{"T1", "T2", "T3"}, "A", "B", "C"),
	})
	out := Annotate(sampleStore(t), r)
	if len(out) != 4 {
		t.Fatalf("expected every transaction, got %d", len(out))
	}

	first := out[0]
	if first.TransactionID != "T1" || first.Label != domain.LabelSuspicious {
		t.Fatalf("unexpected first record %+v", first)
	}
	if !slices.Equal(first.Reasons, []domain.FlagKind{domain.FlagCycleLaundering, domain.FlagLargeAmount}) {
		t.Fatalf("unexpected reasons %v", first.Reasons)
	}
	if first.Amount != "60000" || first.Timestamp != "2024-01-10T12:00:00Z" {
		t.Fatalf("unexpected interchange fields %+v", first.Record)
	}

	last := out[3]
	if last.TransactionID != "T4" || last.Label != domain.LabelClean || len(last.Reasons) != 0 {
		t.Fatalf("unflagged transaction should be clean, got %+v", last)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, Aggregate(sampleSets()...))
	out := buf.String()
	for _, want := range []string{"KIND", "CycleLaundering", "T3 T1 T2", "A B C", "0.50"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteSummaryTable(&buf, Summarize(sampleStore(t), Aggregate(sampleSets()...)))
	if !strings.Contains(buf.String(), "Reciprocal") || !strings.Contains(buf.String(), "JAN") {
		t.Fatalf("unexpected summary table:\n%s", buf.String())
	}
}
