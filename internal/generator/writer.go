package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fuyalasmit/money-map/internal/domain"
)

const (
	TransactionsFile = "transactions.json"
	TruthFile        = "truth.json"
)

// WriteDataset serializes the records into transactions.json under dir.
func WriteDataset(dataset Dataset, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, TransactionsFile)
	return path, writeJSON(path, dataset.Records)
}

// WriteTruth serializes the planted instances into truth.json under dir.
func WriteTruth(dataset Dataset, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, TruthFile)
	return path, writeJSON(path, dataset.Instances)
}

// ReadRecords loads a JSON array of transaction records.
func ReadRecords(path string) ([]domain.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var records []domain.Record
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
