// Package store validates a batch of transaction records and indexes the
// accepted ones by time and by account.
package store

import (
	"cmp"
	"slices"

	"github.com/fuyalasmit/money-map/internal/domain"
)

// Store is an immutable, validated snapshot of one batch.
type Store struct {
	// txs is ordered by timestamp, ties broken by id.
	txs       []domain.Transaction
	byID      map[string]int
	byAccount map[string][]int
	accounts  []string
}

// Load validates the interchange records. Invalid records are reported and
// skipped; the returned store always holds the valid subset.
func Load(records []domain.Record) (*Store, []domain.RecordError) {
	txs := make([]domain.Transaction, 0, len(records))
	var errs []domain.RecordError
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		tx, err := parseRecord(i, rec)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			errs = append(errs, domain.RecordError{Index: i, TransactionID: tx.ID, Field: "transactionId", Err: domain.ErrDuplicateID})
			continue
		}
		seen[tx.ID] = struct{}{}
		txs = append(txs, tx)
	}

	return build(txs), errs
}

// FromTransactions applies the same invariants to already-typed transactions.
func FromTransactions(in []domain.Transaction) (*Store, []domain.RecordError) {
	txs := make([]domain.Transaction, 0, len(in))
	var errs []domain.RecordError
	seen := make(map[string]struct{}, len(in))

	for i, tx := range in {
		tx.ID = sanitizeString(tx.ID)
		tx.Sender = normalizeAccount(tx.Sender)
		tx.Receiver = normalizeAccount(tx.Receiver)

		fail := func(field string, err error) {
			errs = append(errs, domain.RecordError{Index: i, TransactionID: tx.ID, Field: field, Err: err})
		}
		switch {
		case tx.ID == "":
			fail("transactionId", domain.ErrMissingField)
			continue
		case tx.Sender == "":
			fail("senderAccount", domain.ErrMissingField)
			continue
		case tx.Receiver == "":
			fail("receiverAccount", domain.ErrMissingField)
			continue
		case tx.Amount <= 0:
			fail("amount", domain.ErrInvalidAmount)
			continue
		case tx.Timestamp.IsZero():
			fail("timestamp", domain.ErrMissingField)
			continue
		case tx.Sender == tx.Receiver:
			fail("receiverAccount", domain.ErrSelfTransfer)
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			fail("transactionId", domain.ErrDuplicateID)
			continue
		}
		seen[tx.ID] = struct{}{}
		tx.Timestamp = tx.Timestamp.UTC()
		txs = append(txs, tx)
	}

	return build(txs), errs
}

func parseRecord(index int, rec domain.Record) (domain.Transaction, *domain.RecordError) {
	id := sanitizeString(rec.TransactionID)
	fail := func(field string, err error) (domain.Transaction, *domain.RecordError) {
		return domain.Transaction{}, &domain.RecordError{Index: index, TransactionID: id, Field: field, Err: err}
	}

	if id == "" {
		return fail("transactionId", domain.ErrMissingField)
	}
	sender := normalizeAccount(rec.SenderAccount)
	if sender == "" {
		return fail("senderAccount", domain.ErrMissingField)
	}
	receiver := normalizeAccount(rec.ReceiverAccount)
	if receiver == "" {
		return fail("receiverAccount", domain.ErrMissingField)
	}
	amount, err := parseAmount(rec.Amount)
	if err != nil {
		return fail("amount", err)
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return fail("timestamp", err)
	}
	if sender == receiver {
		return fail("receiverAccount", domain.ErrSelfTransfer)
	}

	return domain.Transaction{
		ID:           id,
		Sender:       sender,
		Receiver:     receiver,
		SenderName:   sanitizeString(rec.SenderName),
		ReceiverName: sanitizeString(rec.ReceiverName),
		Amount:       amount,
		Timestamp:    ts,
		Remarks:      sanitizeString(rec.Remarks),
		Label:        normalizeLabel(rec.Label),
	}, nil
}

func build(txs []domain.Transaction) *Store {
	slices.SortStableFunc(txs, compareByTime)

	s := &Store{
		txs:       txs,
		byID:      make(map[string]int, len(txs)),
		byAccount: make(map[string][]int),
	}
	for i, tx := range txs {
		s.byID[tx.ID] = i
		s.byAccount[tx.Sender] = append(s.byAccount[tx.Sender], i)
		s.byAccount[tx.Receiver] = append(s.byAccount[tx.Receiver], i)
	}
	s.accounts = make([]string, 0, len(s.byAccount))
	for account := range s.byAccount {
		s.accounts = append(s.accounts, account)
	}
	slices.Sort(s.accounts)
	return s
}

func compareByTime(a, b domain.Transaction) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Len returns the number of accepted transactions.
func (s *Store) Len() int {
	return len(s.txs)
}

// AllByTime returns every transaction in ascending timestamp order, ties by id.
func (s *Store) AllByTime() []domain.Transaction {
	return slices.Clone(s.txs)
}

// ByAccount returns the transactions the account sent or received, in timestamp order.
func (s *Store) ByAccount(account string) []domain.Transaction {
	idx := s.byAccount[account]
	out := make([]domain.Transaction, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.txs[i])
	}
	return out
}

// Get looks a transaction up by id.
func (s *Store) Get(id string) (domain.Transaction, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Transaction{}, false
	}
	return s.txs[i], true
}

// Accounts returns every account referenced by the batch, sorted.
func (s *Store) Accounts() []string {
	return slices.Clone(s.accounts)
}
