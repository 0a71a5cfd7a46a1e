package domain

import (
	"strconv"
	"time"
)

// Label is ground-truth metadata attached to a record. Detection never reads it.
type Label string

const (
	LabelClean      Label = "clean"
	LabelSuspicious Label = "suspicious"
)

// Record is the interchange form of a transaction. Amounts and account
// identifiers arrive as decimal strings and timestamps as ISO-8601 instants.
type Record struct {
	SenderName      string `json:"senderName"`
	SenderAccount   string `json:"senderAccount"`
	ReceiverName    string `json:"receiverName"`
	ReceiverAccount string `json:"receiverAccount"`
	Remarks         string `json:"remarks"`
	Amount          string `json:"amount"`
	Timestamp       string `json:"timestamp"`
	TransactionID   string `json:"transactionId"`
	Label           Label  `json:"label,omitempty"`
}

// Transaction is a validated, immutable transfer between two accounts.
type Transaction struct {
	ID           string
	Sender       string
	Receiver     string
	SenderName   string
	ReceiverName string
	// Amount is expressed in currency minor units and is always positive.
	Amount    int64
	Timestamp time.Time
	Remarks   string
	Label     Label
}

// Record renders the transaction in its interchange form.
func (t Transaction) Record() Record {
	return Record{
		SenderName:      t.SenderName,
		SenderAccount:   t.Sender,
		ReceiverName:    t.ReceiverName,
		ReceiverAccount: t.Receiver,
		Remarks:         t.Remarks,
		Amount:          strconv.FormatInt(t.Amount, 10),
		Timestamp:       t.Timestamp.UTC().Format(time.RFC3339Nano),
		TransactionID:   t.ID,
		Label:           t.Label,
	}
}
