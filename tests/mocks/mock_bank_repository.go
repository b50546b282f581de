package mocks

import (
	"context"
	"errors"

	"github.com/bankverify/callsheet/internal/model"
)

// MockBankRepository implements the BankRepository interface for testing
type MockBankRepository struct {
	FetchAllFunc   func(ctx context.Context) ([]model.BankRecord, error)
	UpdateByIDFunc func(ctx context.Context, id int64, rec model.BankRecord) error

	// Updates records every UpdateByID call in order, for asserting what
	// was written and how often.
	Updates []UpdateCall
}

// UpdateCall is one recorded UpdateByID invocation.
type UpdateCall struct {
	ID     int64
	Record model.BankRecord
}

func (m *MockBankRepository) FetchAll(ctx context.Context) ([]model.BankRecord, error) {
	if m.FetchAllFunc != nil {
		return m.FetchAllFunc(ctx)
	}
	return nil, errors.New("FetchAll not implemented")
}

func (m *MockBankRepository) UpdateByID(ctx context.Context, id int64, rec model.BankRecord) error {
	m.Updates = append(m.Updates, UpdateCall{ID: id, Record: rec})
	if m.UpdateByIDFunc != nil {
		return m.UpdateByIDFunc(ctx, id, rec)
	}
	return nil
}
