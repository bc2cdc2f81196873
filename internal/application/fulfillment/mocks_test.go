package fulfillment

import (
	"context"
	"time"

	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/stretchr/testify/mock"
)

// MockOrderBoard is a mock implementation of OrderBoard
type MockOrderBoard struct {
	mock.Mock
}

func (m *MockOrderBoard) ToOrder(ctx context.Context) ([]fulfillment.OrderRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.OrderRef), args.Error(1)
}

func (m *MockOrderBoard) MarkOrdered(ctx context.Context, orderURL string) error {
	args := m.Called(ctx, orderURL)
	return args.Error(0)
}

// MockRowSource is a mock implementation of fulfillment.RowSource
type MockRowSource struct {
	mock.Mock
}

func (m *MockRowSource) Rows(ctx context.Context, orderURL string) ([]fulfillment.RawRow, error) {
	args := m.Called(ctx, orderURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.RawRow), args.Error(1)
}

// MockJobReporter is a mock implementation of JobReporter
type MockJobReporter struct {
	mock.Mock
}

func (m *MockJobReporter) ExportJobs(ctx context.Context, viewPath string) (*JobExport, error) {
	args := m.Called(ctx, viewPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*JobExport), args.Error(1)
}

// MockReportArchive is a mock implementation of ReportArchive
type MockReportArchive struct {
	mock.Mock
}

func (m *MockReportArchive) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// MockShopVoxAuthenticator is a mock implementation of ShopVoxAuthenticator
type MockShopVoxAuthenticator struct {
	mock.Mock
}

func (m *MockShopVoxAuthenticator) SignIn(ctx context.Context) (*AuthResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResult), args.Error(1)
}

func (m *MockShopVoxAuthenticator) SubmitMFA(ctx context.Context, code string, trustDevice bool, timeout time.Duration) (*AuthResult, error) {
	args := m.Called(ctx, code, trustDevice, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResult), args.Error(1)
}

// MockVendorAuthenticator is a mock implementation of VendorAuthenticator
type MockVendorAuthenticator struct {
	mock.Mock
	name string
}

func (m *MockVendorAuthenticator) Name() string { return m.name }

func (m *MockVendorAuthenticator) Login(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
