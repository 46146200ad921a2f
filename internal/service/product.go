package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"sales_tracker/internal/model"
	"sales_tracker/internal/store"
)

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name        string
	Description *string
	UnitPrice   decimal.Decimal
	Category    *string
	Stock       int
}

type ProductService struct {
	products *store.Products
	*hooks
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	if !in.UnitPrice.IsPositive() {
		return nil, model.Validation("unit price must be greater than 0")
	}
	if in.Stock < 0 {
		return nil, model.Validation("stock cannot be negative")
	}

	p := &model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: optional(in.Description, nil),
		UnitPrice:   in.UnitPrice,
		Category:    optional(in.Category, titleCase),
		Stock:       in.Stock,
	}
	if _, err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	s.log.WithField("product_id", p.ID).Info("product created")
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*model.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	f.Search = strings.TrimSpace(f.Search)
	if f.Category != "" {
		f.Category = titleCase(f.Category)
	}
	return s.products.List(ctx, f)
}

func (s *ProductService) Update(ctx context.Context, id uint, u model.ProductUpdate) error {
	if u.Name != nil {
		if err := required("name", *u.Name); err != nil {
			return err
		}
		v := strings.TrimSpace(*u.Name)
		u.Name = &v
	}
	if u.UnitPrice != nil && !u.UnitPrice.IsPositive() {
		return model.Validation("unit price must be greater than 0")
	}
	if u.Stock != nil && *u.Stock < 0 {
		return model.Validation("stock cannot be negative")
	}
	if u.Description != nil {
		v := strings.TrimSpace(*u.Description)
		u.Description = &v
	}
	if u.Category != nil {
		v := titleCase(*u.Category)
		u.Category = &v
	}
	if err := s.products.Update(ctx, id, u); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

// Restock 增加库存，返回更新后的商品。
func (s *ProductService) Restock(ctx context.Context, id uint, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, model.Validation("restock quantity must be greater than 0")
	}
	if err := s.products.IncreaseStock(ctx, id, quantity); err != nil {
		return nil, err
	}
	s.afterWrite(ctx)
	return s.products.Get(ctx, id)
}

func (s *ProductService) SetStock(ctx context.Context, id uint, stock int) error {
	if stock < 0 {
		return model.Validation("stock cannot be negative")
	}
	if err := s.products.SetStock(ctx, id, stock); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.products.Categories(ctx)
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.products.Count(ctx)
}

// AveragePrice 目录平均单价，保留两位小数；没有商品时为 0。
func (s *ProductService) AveragePrice(ctx context.Context) (decimal.Decimal, error) {
	avg, err := s.products.AveragePrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return avg.Round(2), nil
}
