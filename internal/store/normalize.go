package store

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fuyalasmit/money-map/internal/domain"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// normalizeAccount trims an account identifier. Identifiers are opaque, so
// inner characters are left untouched.
func normalizeAccount(account string) string {
	return strings.TrimSpace(account)
}

// parseAmount accepts a decimal string holding a positive whole number of
// minor units ("950", "950.00") that fits in an int64.
func parseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.ErrMissingField
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}
	if !amount.IsInteger() || !amount.IsPositive() {
		return 0, domain.ErrInvalidAmount
	}
	if !amount.BigInt().IsInt64() {
		return 0, domain.ErrInvalidAmount
	}
	return amount.IntPart(), nil
}

// parseTimestamp accepts RFC 3339 instants, with or without fractional
// seconds. Zone-less values are rejected because they are not absolute.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.ErrMissingField
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, domain.ErrInvalidTimestamp
	}
	return ts.UTC(), nil
}

func normalizeLabel(label domain.Label) domain.Label {
	switch domain.Label(strings.ToLower(strings.TrimSpace(string(label)))) {
	case domain.LabelClean:
		return domain.LabelClean
	case domain.LabelSuspicious:
		return domain.LabelSuspicious
	default:
		return ""
	}
}
