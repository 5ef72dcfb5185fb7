package store

import (
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/fxtrip/internal/model"
)

// EncodeExpenses serializes an expense list for blob storage.
func EncodeExpenses(exps []model.ExpenseRecord) ([]byte, error) {
	if exps == nil {
		exps = []model.ExpenseRecord{}
	}
	b, err := json.Marshal(exps)
	if err != nil {
		return nil, fmt.Errorf("encoding expenses: %w", err)
	}
	return b, nil
}

// DecodeExpenses parses a blob written by EncodeExpenses.
func DecodeExpenses(b []byte) ([]model.ExpenseRecord, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var exps []model.ExpenseRecord
	if err := json.Unmarshal(b, &exps); err != nil {
		return nil, fmt.Errorf("decoding expenses: %w", err)
	}
	return exps, nil
}

// EncodeArchive serializes the archived trip list for blob storage.
func EncodeArchive(trips []model.TripRecord) ([]byte, error) {
	if trips == nil {
		trips = []model.TripRecord{}
	}
	b, err := json.Marshal(trips)
	if err != nil {
		return nil, fmt.Errorf("encoding archive: %w", err)
	}
	return b, nil
}

// DecodeArchive parses a blob written by EncodeArchive.
func DecodeArchive(b []byte) ([]model.TripRecord, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var trips []model.TripRecord
	if err := json.Unmarshal(b, &trips); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	return trips, nil
}
