package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sales_tracker/internal/model"
	"sales_tracker/internal/storage"
)

type fakeCache struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakePublisher struct {
	sales []model.Sale
	err   error
}

func (f *fakePublisher) PublishSale(_ context.Context, sale model.Sale) error {
	f.sales = append(f.sales, sale)
	return f.err
}

type env struct {
	db        *gorm.DB
	svc       *Services
	cache     *fakeCache
	publisher *fakePublisher
	hook      *test.Hook
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log, hook := test.NewNullLogger()
	db, err := storage.Open(filepath.Join(t.TempDir(), "sales.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })
	require.NoError(t, storage.InitSchema(context.Background(), db, false))

	e := &env{db: db, cache: &fakeCache{}, publisher: &fakePublisher{}, hook: hook}
	e.svc = New(db, log, WithInvalidator(e.cache), WithPublisher(e.publisher))
	return e
}

func strPtr(s string) *string { return &s }

func (e *env) customer(t *testing.T, email string) *model.Customer {
	t.Helper()
	c, err := e.svc.Customers.Create(context.Background(), CustomerInput{
		LastName: "dupont", FirstName: "jean", Email: email, City: strPtr("paris"),
	})
	require.NoError(t, err)
	return c
}

func (e *env) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := e.svc.Products.Create(context.Background(), ProductInput{
		Name: name, UnitPrice: decimal.RequireFromString(price), Category: strPtr("électronique"), Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestCustomerCreateNormalizes(t *testing.T) {
	e := newEnv(t)
	c, err := e.svc.Customers.Create(context.Background(), CustomerInput{
		LastName: "  dupont ", FirstName: "jean-pierre", Email: " Jean.Dupont@Example.COM ",
		Phone: strPtr("  "), City: strPtr("saint-étienne"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dupont", c.LastName)
	assert.Equal(t, "Jean-Pierre", c.FirstName)
	assert.Equal(t, "jean.dupont@example.com", c.Email)
	assert.Nil(t, c.Phone)
	assert.Equal(t, "Saint-Étienne", *c.City)
	assert.Equal(t, 1, e.cache.calls)
}

func TestCustomerCreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cases := []CustomerInput{
		{FirstName: "Jean", Email: "a@b.io"},
		{LastName: "Dupont", Email: "a@b.io"},
		{LastName: "Dupont", FirstName: "Jean"},
		{LastName: "Dupont", FirstName: "Jean", Email: "not-an-email"},
		{LastName: "Dupont", FirstName: "Jean", Email: "a@nodot"},
	}
	for _, in := range cases {
		_, err := e.svc.Customers.Create(ctx, in)
		assert.ErrorIs(t, err, model.ErrValidation, "%+v", in)
	}
	n, err := e.svc.Customers.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCustomerDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.customer(t, "dup@example.com")

	_, err := e.svc.Customers.Create(context.Background(), CustomerInput{
		LastName: "Autre", FirstName: "Client", Email: "DUP@example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConstraintViolation)

	n, err := e.svc.Customers.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCustomerUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.customer(t, "a@example.com")
	e.customer(t, "b@example.com")

	err := e.svc.Customers.Update(ctx, a.ID, model.CustomerUpdate{Email: strPtr("b@example.com")})
	assert.ErrorIs(t, err, model.ErrConstraintViolation)

	// 保留自己的邮箱不算冲突
	require.NoError(t, e.svc.Customers.Update(ctx, a.ID, model.CustomerUpdate{
		Email: strPtr("A@example.com"), City: strPtr("lyon"),
	}))
	got, err := e.svc.Customers.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, "Lyon", *got.City)

	assert.ErrorIs(t, e.svc.Customers.Update(ctx, 999, model.CustomerUpdate{}), model.ErrNotFound)
}

// 更新时清空可选字段与创建时一样存 NULL，不留空串
func TestUpdateBlankOptionalFieldsStoreNull(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "a@example.com")
	p := e.product(t, "Clavier", "49.90", 5)
	require.NoError(t, e.svc.Products.Update(ctx, p.ID, model.ProductUpdate{Description: strPtr("mécanique")}))

	require.NoError(t, e.svc.Customers.Update(ctx, c.ID, model.CustomerUpdate{
		City: strPtr("   "), Phone: strPtr(" "),
	}))
	got, err := e.svc.Customers.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.City)
	assert.Nil(t, got.Phone)
	cities, err := e.svc.Customers.Cities(ctx)
	require.NoError(t, err)
	assert.Empty(t, cities)

	require.NoError(t, e.svc.Products.Update(ctx, p.ID, model.ProductUpdate{
		Description: strPtr(""), Category: strPtr("  "),
	}))
	prod, err := e.svc.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, prod.Description)
	assert.Nil(t, prod.Category)
	cats, err := e.svc.Products.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestProductValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Products.Create(ctx, ProductInput{Name: "", UnitPrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = e.svc.Products.Create(ctx, ProductInput{Name: "Gratuit", UnitPrice: decimal.Zero})
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = e.svc.Products.Create(ctx, ProductInput{Name: "Négatif", UnitPrice: decimal.NewFromInt(1), Stock: -1})
	assert.ErrorIs(t, err, model.ErrValidation)

	p := e.product(t, "Clavier", "49.90", 5)
	assert.Equal(t, "Électronique", *p.Category)

	neg := decimal.NewFromInt(-3)
	assert.ErrorIs(t, e.svc.Products.Update(ctx, p.ID, model.ProductUpdate{UnitPrice: &neg}), model.ErrValidation)
	assert.ErrorIs(t, e.svc.Products.SetStock(ctx, p.ID, -1), model.ErrValidation)
	_, err = e.svc.Products.Restock(ctx, p.ID, 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestProductRestock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, "Souris", "15.00", 2)

	got, err := e.svc.Products.Restock(ctx, p.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	_, err = e.svc.Products.Restock(ctx, 999, 1)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, e.svc.Products.SetStock(ctx, p.ID, 0))
	got, err = e.svc.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
}

func TestRecordSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "buyer@example.com")
	p := e.product(t, "Câble", "5.00", 10)
	e.cache.calls = 0

	sale, err := e.svc.Sales.RecordSale(ctx, c.ID, p.ID, 3)
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("15.00")), sale.TotalAmount.String())
	assert.True(t, sale.UnitPrice.Equal(p.UnitPrice))

	got, err := e.svc.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	detail, err := e.svc.Sales.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.Quantity)
	assert.Equal(t, "Câble", detail.ProductName)

	assert.Equal(t, 1, e.cache.calls)
	require.Len(t, e.publisher.sales, 1)
	assert.Equal(t, sale.ID, e.publisher.sales[0].ID)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "buyer@example.com")
	p := e.product(t, "Câble", "5.00", 10)

	_, err := e.svc.Sales.RecordSale(ctx, c.ID, p.ID, 11)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	msg, ok := model.UserMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "available 10")

	got, err := e.svc.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	n, err := e.svc.Sales.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, e.publisher.sales)
}

func TestRecordSaleExactStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "buyer@example.com")
	p := e.product(t, "Câble", "5.00", 4)

	_, err := e.svc.Sales.RecordSale(ctx, c.ID, p.ID, 4)
	require.NoError(t, err)
	got, err := e.svc.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)

	_, err = e.svc.Sales.RecordSale(ctx, c.ID, p.ID, 1)
	assert.ErrorIs(t, err, model.ErrInsufficientStock)
}

func TestRecordSaleRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "buyer@example.com")
	p := e.product(t, "Câble", "5.00", 10)

	for _, q := range []int{0, -2} {
		_, err := e.svc.Sales.RecordSale(ctx, c.ID, p.ID, q)
		assert.ErrorIs(t, err, model.ErrValidation)
	}

	_, err := e.svc.Sales.RecordSale(ctx, c.ID, 999, 1)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = e.svc.Sales.RecordSale(ctx, 999, p.ID, 1)
	assert.ErrorIs(t, err, model.ErrNotFound)

	n, err := e.svc.Sales.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// 扣减库存失败时，已插入的销售记录必须一起回滚。
func TestRecordSaleRollsBackOnStockUpdateFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "buyer@example.com")
	p := e.product(t, "Câble", "5.00", 10)

	boom := errors.New("disk full")
	require.NoError(t, e.db.Callback().Update().Before("gorm:update").Register("test:fail_stock", func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := e.svc.Sales.RecordSale(ctx, c.ID, p.ID, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	_, ok := model.UserMessage(err)
	assert.False(t, ok)

	require.NoError(t, e.db.Callback().Update().Remove("test:fail_stock"))

	n, err := e.svc.Sales.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	got, err := e.svc.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	assert.Empty(t, e.publisher.sales)
}

func TestRecordSaleSideEffectFailuresKeepSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "buyer@example.com")
	p := e.product(t, "Câble", "5.00", 10)
	e.cache.err = errors.New("redis down")
	e.publisher.err = errors.New("broker down")

	sale, err := e.svc.Sales.RecordSale(ctx, c.ID, p.ID, 2)
	require.NoError(t, err)
	detail, err := e.svc.Sales.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Quantity)
	assert.Equal(t, "publish sale event", e.hook.LastEntry().Message)
}

func TestSaleListRejectsInvertedRange(t *testing.T) {
	e := newEnv(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := e.svc.Sales.List(context.Background(), model.SaleFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, model.ErrValidation)
}
