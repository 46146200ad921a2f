package seed

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales_tracker/internal/analytics"
	"sales_tracker/internal/model"
	"sales_tracker/internal/service"
	"sales_tracker/internal/storage"
)

func newServices(t *testing.T) (*service.Services, *analytics.Reports) {
	t.Helper()
	log, _ := test.NewNullLogger()
	db, err := storage.Open(filepath.Join(t.TempDir(), "sales.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })
	require.NoError(t, storage.InitSchema(context.Background(), db, false))
	return service.New(db, log), analytics.New(db, nil, log)
}

func TestApplySample(t *testing.T) {
	ctx := context.Background()
	svc, reports := newServices(t)
	log, hook := test.NewNullLogger()

	f, err := Sample()
	require.NoError(t, err)
	res, err := Apply(ctx, svc, f, log)
	require.NoError(t, err)
	assert.Equal(t, Result{Customers: 5, Products: 8, Sales: 12}, res)
	assert.Equal(t, "fixture applied", hook.LastEntry().Message)

	// 笔记本：库存 15，售出 2 + 1
	laptop, err := svc.Products.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, laptop.Stock)

	s, err := reports.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 12, s.SaleCount)
	assert.EqualValues(t, 31, s.TotalQuantity)
	assert.Equal(t, "4259.69", s.TotalRevenue.StringFixed(2))
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("customers:\n  - {nom: Dupont}\n"))
	assert.Error(t, err)
}

func TestApplyStopsOnBadSale(t *testing.T) {
	svc, _ := newServices(t)
	log, _ := test.NewNullLogger()
	f := Fixture{
		Customers: []Customer{{LastName: "Dupont", FirstName: "Marie", Email: "m@x.com"}},
		Products:  []Product{{Name: "Câble", UnitPrice: "5.00", Stock: 1}},
		Sales: []Sale{
			{CustomerEmail: "M@x.com", ProductName: "Câble", Quantity: 1},
			{CustomerEmail: "m@x.com", ProductName: "Câble", Quantity: 1},
		},
	}
	res, err := Apply(context.Background(), svc, f, log)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Equal(t, 1, res.Sales)

	f.Sales = []Sale{{CustomerEmail: "x@x.com", ProductName: "Câble", Quantity: 1}}
	f.Customers, f.Products = nil, nil
	_, err = Apply(context.Background(), svc, f, log)
	assert.ErrorContains(t, err, "unknown customer")
}
