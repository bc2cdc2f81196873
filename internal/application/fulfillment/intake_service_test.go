package fulfillment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastIntake() IntakeConfig {
	return IntakeConfig{Concurrency: 4, StartInterval: time.Millisecond, Attempts: 3}
}

func row(part, size string, q int64) fulfillment.RawRow {
	return fulfillment.RawRow{Name: "Tee - " + part, Part: part, Color: "Red", Store: "sanmar", Size: size, Quantity: decimal.NewFromInt(q)}
}

func TestIntakeService_ToOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("merges rows per order and keeps list order", func(t *testing.T) {
		board := new(MockOrderBoard)
		rows := new(MockRowSource)
		pages := &fakePages{}

		board.On("ToOrder", mock.Anything).Return([]fulfillment.OrderRef{
			{ID: 101, URL: "https://express.shopvox.com/transactions/sales-orders/a", Customer: "Acme"},
			{ID: 102, URL: "https://express.shopvox.com/transactions/sales-orders/b", Customer: "Globex"},
		}, nil)
		rows.On("Rows", mock.Anything, "https://express.shopvox.com/transactions/sales-orders/a").Return([]fulfillment.RawRow{
			row("PC54", "SM", 2), row("PC54", "Small", 3), row("PC54", "L", 1),
		}, nil)
		rows.On("Rows", mock.Anything, "https://express.shopvox.com/transactions/sales-orders/b").Return([]fulfillment.RawRow{
			row("G500", "XL", 4),
		}, nil)

		svc := NewIntakeService(board, rows, pages, fastIntake(), zap.NewNop())
		orders, err := svc.ToOrder(ctx)

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, int64(101), orders[0].ID)
		assert.Equal(t, "Acme", orders[0].Customer)
		require.Len(t, orders[0].Items, 1)
		assert.Equal(t, "S", orders[0].Items[0].Sizes[0].Size)
		assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, int64(102), orders[1].ID)
		assert.True(t, orders[1].Total.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, pages.opened.Load(), pages.closed.Load())
		board.AssertExpectations(t)
		rows.AssertExpectations(t)
	})

	t.Run("retries while the detail page shows no items", func(t *testing.T) {
		board := new(MockOrderBoard)
		rows := new(MockRowSource)

		board.On("ToOrder", mock.Anything).Return([]fulfillment.OrderRef{{ID: 7, URL: "u7"}}, nil)
		rows.On("Rows", mock.Anything, "u7").Return([]fulfillment.RawRow{}, nil).Once()
		rows.On("Rows", mock.Anything, "u7").Return(nil, errors.New("timeout waiting for Items")).Once()
		rows.On("Rows", mock.Anything, "u7").Return([]fulfillment.RawRow{row("PC54", "M", 1)}, nil).Once()

		svc := NewIntakeService(board, rows, &fakePages{}, fastIntake(), nil)
		orders, err := svc.ToOrder(ctx)

		require.NoError(t, err)
		require.Len(t, orders[0].Items, 1)
		rows.AssertNumberOfCalls(t, "Rows", 3)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		board := new(MockOrderBoard)
		rows := new(MockRowSource)

		board.On("ToOrder", mock.Anything).Return([]fulfillment.OrderRef{{ID: 8, URL: "u8", Customer: "Initech"}}, nil)
		rows.On("Rows", mock.Anything, "u8").Return([]fulfillment.RawRow{}, nil)

		svc := NewIntakeService(board, rows, &fakePages{}, fastIntake(), nil)
		orders, err := svc.ToOrder(ctx)

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Empty(t, orders[0].Items)
		assert.NotNil(t, orders[0].Items)
		assert.True(t, orders[0].Total.IsZero())
		rows.AssertNumberOfCalls(t, "Rows", 3)
	})

	t.Run("empty list", func(t *testing.T) {
		board := new(MockOrderBoard)
		board.On("ToOrder", mock.Anything).Return([]fulfillment.OrderRef{}, nil)

		svc := NewIntakeService(board, new(MockRowSource), &fakePages{}, fastIntake(), nil)
		orders, err := svc.ToOrder(ctx)

		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("list failure is returned", func(t *testing.T) {
		board := new(MockOrderBoard)
		board.On("ToOrder", mock.Anything).Return(nil, errors.New("sales orders view did not load"))

		svc := NewIntakeService(board, new(MockRowSource), &fakePages{}, fastIntake(), nil)
		_, err := svc.ToOrder(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "list sales orders")
	})
}

func TestNewIntakeService_Defaults(t *testing.T) {
	svc := NewIntakeService(nil, nil, nil, IntakeConfig{}, nil)
	assert.Equal(t, DefaultIntakeConfig(), svc.config)
}
