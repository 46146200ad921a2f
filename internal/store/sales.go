package store

import (
	"context"

	"gorm.io/gorm"

	"sales_tracker/internal/model"
)

const saleDetailsView = "sale_details"

// Sales 销售表的数据访问。销售只追加，不提供更新和删除。
type Sales struct {
	db *gorm.DB
}

func NewSales(db *gorm.DB) *Sales { return &Sales{db: db} }

// WithTx binds the store to a running transaction.
func (s *Sales) WithTx(tx *gorm.DB) *Sales { return &Sales{db: tx} }

// Create inserts the row as given; TotalAmount is computed by the caller.
func (s *Sales) Create(ctx context.Context, sale *model.Sale) (uint, error) {
	if err := s.db.WithContext(ctx).Omit("Customer", "Product").Create(sale).Error; err != nil {
		return 0, translate(err, "create sale")
	}
	return sale.ID, nil
}

func (s *Sales) Get(ctx context.Context, id uint) (*model.SaleDetail, error) {
	var list []model.SaleDetail
	err := s.db.WithContext(ctx).Table(saleDetailsView).
		Where("sale_id = ?", id).
		Limit(1).
		Find(&list).Error
	if err != nil {
		return nil, translate(err, "get sale")
	}
	if len(list) == 0 {
		return nil, model.NotFound("sale", id)
	}
	return &list[0], nil
}

// List returns sales in insertion order.
func (s *Sales) List(ctx context.Context, f model.SaleFilter) ([]model.SaleDetail, error) {
	q := s.db.WithContext(ctx).Table(saleDetailsView)
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.ProductID != 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.From != nil {
		q = q.Where("sold_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("sold_at < ?", f.To.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []model.SaleDetail
	if err := q.Order("sale_id").Find(&list).Error; err != nil {
		return nil, translate(err, "list sales")
	}
	return list, nil
}

// Recent returns the newest sales first.
func (s *Sales) Recent(ctx context.Context, limit int) ([]model.SaleDetail, error) {
	var list []model.SaleDetail
	err := s.db.WithContext(ctx).Table(saleDetailsView).
		Order("sold_at DESC").Order("sale_id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, translate(err, "recent sales")
	}
	return list, nil
}

func (s *Sales) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Sale{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count sales")
	}
	return n, nil
}
