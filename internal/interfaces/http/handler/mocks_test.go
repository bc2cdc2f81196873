package handler

import (
	"context"
	"time"

	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/stretchr/testify/mock"
)

// stubPages hands out plain child contexts
type stubPages struct{}

func (stubPages) NewPage(ctx context.Context) (context.Context, context.CancelFunc, error) {
	pageCtx, cancel := context.WithCancel(ctx)
	return pageCtx, cancel, nil
}

// emptyRegistry knows no vendors, so every store is treated as custom
type emptyRegistry struct{}

func (emptyRegistry) Lookup(string) (fulfillment.VendorProcessor, bool) { return nil, false }

// MockOrderBoard is a mock implementation of fulfillmentapp.OrderBoard
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

// MockJobReporter is a mock implementation of fulfillmentapp.JobReporter
type MockJobReporter struct {
	mock.Mock
}

func (m *MockJobReporter) ExportJobs(ctx context.Context, viewPath string) (*fulfillmentapp.JobExport, error) {
	args := m.Called(ctx, viewPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.JobExport), args.Error(1)
}

// MockShopVoxAuthenticator is a mock implementation of fulfillmentapp.ShopVoxAuthenticator
type MockShopVoxAuthenticator struct {
	mock.Mock
}

func (m *MockShopVoxAuthenticator) SignIn(ctx context.Context) (*fulfillmentapp.AuthResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.AuthResult), args.Error(1)
}

func (m *MockShopVoxAuthenticator) SubmitMFA(ctx context.Context, code string, trustDevice bool, timeout time.Duration) (*fulfillmentapp.AuthResult, error) {
	args := m.Called(ctx, code, trustDevice, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillmentapp.AuthResult), args.Error(1)
}

// stubVendorLogin records logins for one vendor name
type stubVendorLogin struct {
	name  string
	err   error
	calls int
}

func (s *stubVendorLogin) Name() string { return s.name }

func (s *stubVendorLogin) Login(context.Context) error {
	s.calls++
	return s.err
}
