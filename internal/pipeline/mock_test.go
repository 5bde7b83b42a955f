package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/agrisight/plantmap-cli/pkg/extract"
	"github.com/agrisight/plantmap-cli/pkg/plantapi"
	"github.com/agrisight/plantmap-cli/pkg/storage"
)

// --- Storage mock ---

type mockStorageClient struct {
	mock.Mock
}

func (m *mockStorageClient) Upload(ctx context.Context, obj storage.Object) (*storage.UploadResponse, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResponse), args.Error(1)
}

// --- Extract mock ---

type mockExtractClient struct {
	mock.Mock
}

func (m *mockExtractClient) Extract(ctx context.Context, imageName, imageURL string) (*extract.Location, error) {
	args := m.Called(ctx, imageName, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Location), args.Error(1)
}

// --- Plant API mock ---

type mockAPIClient struct {
	mock.Mock
}

func (m *mockAPIClient) Save(ctx context.Context, rec plantapi.Record) (*plantapi.Record, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plantapi.Record), args.Error(1)
}

func (m *mockAPIClient) FetchAll(ctx context.Context) ([]plantapi.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]plantapi.Record), args.Error(1)
}
