package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sales_tracker/internal/model"
	"sales_tracker/internal/store"
)

type SaleService struct {
	db        *gorm.DB
	customers *store.Customers
	products  *store.Products
	sales     *store.Sales
	*hooks
}

// RecordSale 在一个事务内完成：校验客户/商品存在 → 校验库存 → 以当前单价计算总额
// → 插入销售 → 条件扣减库存。任一步失败整体回滚（含 panic），不会留下半条销售。
func (s *SaleService) RecordSale(ctx context.Context, customerID, productID uint, quantity int) (*model.Sale, error) {
	if quantity <= 0 {
		return nil, model.Validation("quantity must be greater than 0, got %d", quantity)
	}

	var sale model.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customers := s.customers.WithTx(tx)
		products := s.products.WithTx(tx)
		sales := s.sales.WithTx(tx)

		if _, err := customers.Get(ctx, customerID); err != nil {
			return err
		}
		product, err := products.Get(ctx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return model.InsufficientStock(productID, product.Stock, quantity)
		}

		sale = model.Sale{
			CustomerID:  customerID,
			ProductID:   productID,
			Quantity:    quantity,
			UnitPrice:   product.UnitPrice,
			TotalAmount: product.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		}
		if _, err := sales.Create(ctx, &sale); err != nil {
			return err
		}

		ok, err := products.DecreaseStock(ctx, productID, quantity)
		if err != nil {
			return err
		}
		if !ok {
			return model.InsufficientStock(productID, product.Stock, quantity)
		}
		return nil
	})

	fields := logrus.Fields{"customer_id": customerID, "product_id": productID, "quantity": quantity}
	if err != nil {
		s.log.WithFields(fields).WithError(err).Warn("record sale rolled back")
		return nil, err
	}
	s.log.WithFields(fields).WithField("sale_id", sale.ID).Info("sale recorded")

	s.afterWrite(ctx)
	s.publishSale(ctx, sale)
	return &sale, nil
}

func (s *SaleService) Get(ctx context.Context, id uint) (*model.SaleDetail, error) {
	return s.sales.Get(ctx, id)
}

func (s *SaleService) List(ctx context.Context, f model.SaleFilter) ([]model.SaleDetail, error) {
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, model.Validation("date range end must be after its start")
	}
	return s.sales.List(ctx, f)
}

func (s *SaleService) Recent(ctx context.Context, limit int) ([]model.SaleDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.sales.Recent(ctx, limit)
}

func (s *SaleService) Count(ctx context.Context) (int64, error) {
	return s.sales.Count(ctx)
}
