package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fuyalasmit/money-map/internal/domain"
)

// ErrMalformedReport is returned by Unmarshal for a structurally invalid report.
var ErrMalformedReport = errors.New("malformed report")

// Marshal renders the report in its interchange form.
func Marshal(r domain.Report) ([]byte, error) {
	if r.Flags == nil {
		r.Flags = []domain.Flag{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// Unmarshal parses a report and checks every flag has a known kind and at
// least one transaction.
func Unmarshal(data []byte) (domain.Report, error) {
	var r domain.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Report{}, fmt.Errorf("decode report: %w", err)
	}
	if r.Flags == nil {
		r.Flags = []domain.Flag{}
	}
	for i, f := range r.Flags {
		if !f.Kind.Valid() {
			return domain.Report{}, fmt.Errorf("%w: flag %d has unknown kind %q", ErrMalformedReport, i, f.Kind)
		}
		if len(f.TransactionIDs) == 0 {
			return domain.Report{}, fmt.Errorf("%w: flag %d has no transactions", ErrMalformedReport, i)
		}
	}
	return r, nil
}

// Write marshals the report to w followed by a newline.
func Write(w io.Writer, r domain.Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
