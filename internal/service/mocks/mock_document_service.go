package mocks

import (
	"context"

	"docsvc/internal/model"
	"docsvc/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockDocumentService) RegisterMetadata(ctx context.Context, in service.MetadataInput) (*service.MetadataResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MetadataResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id int64) (*model.DocumentWithInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentWithInvoice), args.Error(1)
}

func (m *MockDocumentService) ListRecent(ctx context.Context, limit int) ([]model.DocumentWithInvoice, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentWithInvoice), args.Error(1)
}

func (m *MockDocumentService) Validate(ctx context.Context, invoiceID int64) (*service.ValidationReport, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ValidationReport), args.Error(1)
}
