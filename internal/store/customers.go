package store

import (
	"context"

	"gorm.io/gorm"

	"sales_tracker/internal/model"
)

// Customers 客户表的数据访问。
type Customers struct {
	db *gorm.DB
}

func NewCustomers(db *gorm.DB) *Customers { return &Customers{db: db} }

// WithTx binds the store to a running transaction.
func (s *Customers) WithTx(tx *gorm.DB) *Customers { return &Customers{db: tx} }

func (s *Customers) Create(ctx context.Context, c *model.Customer) (uint, error) {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return 0, translate(err, "create customer")
	}
	return c.ID, nil
}

func (s *Customers) Get(ctx context.Context, id uint) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFoundOr(err, "customer", id, "get customer")
	}
	return &c, nil
}

// GetByEmail returns (nil, nil) when no customer uses the address.
func (s *Customers) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var list []model.Customer
	if err := s.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&list).Error; err != nil {
		return nil, translate(err, "get customer by email")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *Customers) List(ctx context.Context, f model.CustomerFilter) ([]model.Customer, error) {
	q := s.db.WithContext(ctx).Model(&model.Customer{})
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("last_name LIKE ? OR first_name LIKE ? OR email LIKE ?", p, p, p)
	}
	var list []model.Customer
	if err := q.Order("id").Find(&list).Error; err != nil {
		return nil, translate(err, "list customers")
	}
	return list, nil
}

// Update 部分更新；id 不存在返回 NotFound。
func (s *Customers) Update(ctx context.Context, id uint, u model.CustomerUpdate) error {
	cols := u.Columns()
	if len(cols) == 0 {
		_, err := s.Get(ctx, id)
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error, "update customer")
	}
	if res.RowsAffected == 0 {
		return model.NotFound("customer", id)
	}
	return nil
}

func (s *Customers) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Customer{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count customers")
	}
	return n, nil
}

// Cities lists the distinct non-null cities, alphabetically.
func (s *Customers) Cities(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&model.Customer{}).
		Where("city IS NOT NULL").
		Distinct().Order("city").
		Pluck("city", &out).Error
	if err != nil {
		return nil, translate(err, "list cities")
	}
	return out, nil
}
