package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Write(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Stat(ctx context.Context, location string) (int64, error) {
	args := m.Called(ctx, location)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) Remove(ctx context.Context, location string) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}
