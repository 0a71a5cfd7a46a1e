// Package repository writes analysis results into the graph database so the
// presentation layer can render accounts, transfers and the flags raised on them.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fuyalasmit/money-map/internal/domain"
	"github.com/fuyalasmit/money-map/internal/graphdb"
)

var (
	errMissingAccount = errors.New("account id is required")
	errMissingTxID    = errors.New("transaction id is required")
	errEmptyFlag      = errors.New("flag has no transactions")
)

// flagNamespace seeds the name-based UUIDs that identify flags across exports.
var flagNamespace = uuid.MustParse("6f1c53a2-3f0e-4d8b-9a57-2d4b1c7e8f10")

// Repository encapsulates graph persistence operations.
type Repository struct {
	client graphdb.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graphdb.Client) *Repository {
	return &Repository{client: client}
}

// Ping checks the graph database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("verify graph connectivity: %w", err)
	}
	return nil
}

// UpsertAccount ensures an account node exists with the holder's name.
func (r *Repository) UpsertAccount(ctx context.Context, accountID, holder string) error {
	if accountID == "" {
		return errMissingAccount
	}
	params := map[string]any{
		"accountId": accountID,
		"holder":    holder,
	}
	if _, err := r.client.Write(ctx, upsertAccountCypher, params); err != nil {
		return fmt.Errorf("upsert account %s: %w", accountID, err)
	}
	return nil
}

// UpsertTransaction merges both accounts and the transfer between them.
func (r *Repository) UpsertTransaction(ctx context.Context, tx domain.Transaction) error {
	if tx.ID == "" {
		return errMissingTxID
	}
	params := map[string]any{
		"transactionId": tx.ID,
		"senderId":      tx.Sender,
		"receiverId":    tx.Receiver,
		"props": map[string]any{
			"amount":    tx.Amount,
			"timestamp": formatTime(tx.Timestamp),
			"remarks":   tx.Remarks,
		},
	}
	if _, err := r.client.Write(ctx, upsertTransferCypher, params); err != nil {
		return fmt.Errorf("upsert transaction %s: %w", tx.ID, err)
	}
	return nil
}

// UpsertFlag stores a flag node linked to every account it involves and
// marks its transfers as suspicious. Re-exporting the same flag is idempotent.
func (r *Repository) UpsertFlag(ctx context.Context, flag domain.Flag) error {
	if len(flag.TransactionIDs) == 0 {
		return errEmptyFlag
	}
	id := FlagID(flag)
	params := map[string]any{
		"flagId":         id,
		"kind":           string(flag.Kind),
		"reason":         flag.Reason,
		"score":          flag.Score,
		"transactionIds": flag.TransactionIDs,
		"accounts":       flag.Accounts,
	}
	if _, err := r.client.Write(ctx, upsertFlagCypher, params); err != nil {
		return fmt.Errorf("upsert flag %s: %w", id, err)
	}
	return nil
}

// FlagCounts returns how many flags of each kind are stored.
func (r *Repository) FlagCounts(ctx context.Context) (map[domain.FlagKind]int64, error) {
	res, err := r.client.Read(ctx, flagCountsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("flag counts query: %w", err)
	}
	counts := make(map[domain.FlagKind]int64, len(res.Records))
	for _, record := range res.Records {
		n, err := record.Int("flags")
		if err != nil {
			return nil, fmt.Errorf("flag counts: %w", err)
		}
		counts[domain.FlagKind(record.String("kind"))] = n
	}
	return counts, nil
}

// FlagID derives a stable identifier from the flag's kind and transaction sequence.
func FlagID(flag domain.Flag) string {
	key := string(flag.Kind) + "|" + strings.Join(flag.TransactionIDs, ",")
	return uuid.NewSHA1(flagNamespace, []byte(key)).String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
