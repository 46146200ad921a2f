package store

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sales_tracker/internal/model"
)

// Products 商品表的数据访问，含库存增减。
type Products struct {
	db *gorm.DB
}

func NewProducts(db *gorm.DB) *Products { return &Products{db: db} }

// WithTx binds the store to a running transaction.
func (s *Products) WithTx(tx *gorm.DB) *Products { return &Products{db: tx} }

func (s *Products) Create(ctx context.Context, p *model.Product) (uint, error) {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return 0, translate(err, "create product")
	}
	return p.ID, nil
}

func (s *Products) Get(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "product", id, "get product")
	}
	return &p, nil
}

func (s *Products) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	q := s.db.WithContext(ctx).Model(&model.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("name LIKE ? OR description LIKE ?", p, p)
	}
	switch {
	case f.InStock:
		q = q.Where("stock > ?", 0)
	case f.OutOfStock:
		q = q.Where("stock = ?", 0)
	}
	var list []model.Product
	if err := q.Order("id").Find(&list).Error; err != nil {
		return nil, translate(err, "list products")
	}
	return list, nil
}

// Update 部分更新；id 不存在返回 NotFound，违反 CHECK 返回 ConstraintViolation。
func (s *Products) Update(ctx context.Context, id uint, u model.ProductUpdate) error {
	cols := u.Columns()
	if len(cols) == 0 {
		_, err := s.Get(ctx, id)
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return model.NotFound("product", id)
	}
	return nil
}

// DecreaseStock 条件扣减：仅当 stock >= quantity 时更新。
// 返回 false 表示商品不存在或库存不足，库存保持不变。
func (s *Products) DecreaseStock(ctx context.Context, id uint, quantity int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, translate(res.Error, "decrease stock")
	}
	return res.RowsAffected == 1, nil
}

func (s *Products) IncreaseStock(ctx context.Context, id uint, quantity int) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return translate(res.Error, "increase stock")
	}
	if res.RowsAffected == 0 {
		return model.NotFound("product", id)
	}
	return nil
}

func (s *Products) SetStock(ctx context.Context, id uint, stock int) error {
	return s.Update(ctx, id, model.ProductUpdate{Stock: &stock})
}

func (s *Products) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count products")
	}
	return n, nil
}

// AveragePrice is zero when there are no products.
func (s *Products) AveragePrice(ctx context.Context) (decimal.Decimal, error) {
	var row struct{ Average decimal.Decimal }
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Select("COALESCE(AVG(unit_price), 0) AS average").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, translate(err, "average price")
	}
	return row.Average, nil
}

// Categories lists the distinct non-null categories, alphabetically.
func (s *Products) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("category IS NOT NULL").
		Distinct().Order("category").
		Pluck("category", &out).Error
	if err != nil {
		return nil, translate(err, "list categories")
	}
	return out, nil
}
