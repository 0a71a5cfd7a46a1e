package domain

// FlagKind names the structural pattern a flag was raised for.
type FlagKind string

const (
	FlagCycleLaundering     FlagKind = "CycleLaundering"
	FlagStructuring         FlagKind = "Structuring"
	FlagVelocityPassThrough FlagKind = "VelocityPassThrough"
	FlagLargeAmount         FlagKind = "LargeAmount"
	FlagReciprocal          FlagKind = "Reciprocal"
)

// FlagKinds lists every kind in canonical report order.
var FlagKinds = []FlagKind{
	FlagCycleLaundering,
	FlagStructuring,
	FlagVelocityPassThrough,
	FlagLargeAmount,
	FlagReciprocal,
}

// Rank returns the position of the kind in canonical order. Unknown kinds sort last.
func (k FlagKind) Rank() int {
	for i, kind := range FlagKinds {
		if kind == k {
			return i
		}
	}
	return len(FlagKinds)
}

// Valid reports whether k is one of the known kinds.
func (k FlagKind) Valid() bool {
	return k.Rank() < len(FlagKinds)
}

// Flag is a single finding: the transactions involved, in detector order,
// and the sorted set of accounts they touch.
type Flag struct {
	Kind           FlagKind `json:"kind"`
	TransactionIDs []string `json:"transactionIds"`
	Accounts       []string `json:"accounts"`
	Reason         string   `json:"reason"`
	Score          float64  `json:"score,omitempty"`
}

// Report is the canonically ordered, deduplicated output of a detection run.
type Report struct {
	Flags []Flag `json:"flags"`
}
