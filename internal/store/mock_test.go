package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/agrisight/plantmap-cli/pkg/plantapi"
)

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
