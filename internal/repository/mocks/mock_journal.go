package mocks

import (
	"context"

	"notaryapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockNotarizationJournal struct {
	mock.Mock
}

func (m *MockNotarizationJournal) Create(ctx context.Context, e *repository.NotarizationEntry) (*repository.NotarizationEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.NotarizationEntry), args.Error(1)
}

func (m *MockNotarizationJournal) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[repository.NotarizationEntry], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[repository.NotarizationEntry]), args.Error(1)
}

func (m *MockNotarizationJournal) FindByIdentity(ctx context.Context, storageID, fileName string) ([]repository.NotarizationEntry, error) {
	args := m.Called(ctx, storageID, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.NotarizationEntry), args.Error(1)
}
