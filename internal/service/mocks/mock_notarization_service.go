package mocks

import (
	"context"

	"notaryapi/internal/model"
	"notaryapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockNotarizationService struct {
	mock.Mock
}

func (m *MockNotarizationService) Notarize(ctx context.Context, req model.NotarizeRequest) (*model.NotarizationSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NotarizationSummary), args.Error(1)
}

func (m *MockNotarizationService) Query(ctx context.Context, q model.QueryRequest) (*model.MetadataRecord, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataRecord), args.Error(1)
}

func (m *MockNotarizationService) ListStorage(ctx context.Context, storageID string) (map[string]*model.MetadataRecord, error) {
	args := m.Called(ctx, storageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*model.MetadataRecord), args.Error(1)
}

func (m *MockNotarizationService) Download(ctx context.Context, storageID, relPath string) (*service.DownloadResult, error) {
	args := m.Called(ctx, storageID, relPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockNotarizationService) Rename(ctx context.Context, storageID, relPath, newName string) error {
	args := m.Called(ctx, storageID, relPath, newName)
	return args.Error(0)
}

func (m *MockNotarizationService) Move(ctx context.Context, storageID, relPath, destFolder string) error {
	args := m.Called(ctx, storageID, relPath, destFolder)
	return args.Error(0)
}

func (m *MockNotarizationService) Delete(ctx context.Context, storageID, relPath string, recursive bool) error {
	args := m.Called(ctx, storageID, relPath, recursive)
	return args.Error(0)
}
