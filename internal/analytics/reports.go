// Package analytics runs the read-only aggregate reports over sales.
package analytics

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Cache stores encoded report results. A miss returns false with no error.
type Cache interface {
	Load(ctx context.Context, report string, dest any) (bool, error)
	Store(ctx context.Context, report string, v any) error
}

type Reports struct {
	db    *gorm.DB
	cache Cache
	log   logrus.FieldLogger
}

// New builds the report runner. cache may be nil.
func New(db *gorm.DB, cache Cache, log logrus.FieldLogger) *Reports {
	return &Reports{db: db, cache: cache, log: log}
}

// cached 先查缓存，未命中再查库并回填；缓存出错时直接走数据库。
func cached[T any](ctx context.Context, r *Reports, report string, load func(context.Context) (T, error)) (T, error) {
	if r.cache != nil {
		var v T
		ok, err := r.cache.Load(ctx, report, &v)
		if err != nil {
			r.log.WithError(err).WithField("report", report).Warn("report cache load")
		} else if ok {
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("report %s: %w", report, err)
	}
	if r.cache != nil {
		if err := r.cache.Store(ctx, report, v); err != nil {
			r.log.WithError(err).WithField("report", report).Warn("report cache store")
		}
	}
	return v, nil
}

func (r *Reports) Summary(ctx context.Context) (Summary, error) {
	return cached(ctx, r, "summary", func(ctx context.Context) (Summary, error) {
		var s Summary
		err := r.db.WithContext(ctx).Table("sales").
			Select(`COUNT(id) AS sale_count,
				COALESCE(ROUND(SUM(total_amount), 2), 0) AS total_revenue,
				COALESCE(SUM(quantity), 0) AS total_quantity,
				COALESCE(AVG(total_amount), 0) AS average_sale`).
			Scan(&s).Error
		if err != nil {
			return s, err
		}
		if err := r.db.WithContext(ctx).Table("customers").Count(&s.CustomerCount).Error; err != nil {
			return s, err
		}
		if err := r.db.WithContext(ctx).Table("products").Count(&s.ProductCount).Error; err != nil {
			return s, err
		}
		s.TotalRevenue = s.TotalRevenue.Round(2)
		s.AverageSale = s.AverageSale.Round(2)
		return s, nil
	})
}

// ProductRanking lists every product by revenue, unsold ones included
// unless soldOnly is set.
func (r *Reports) ProductRanking(ctx context.Context, soldOnly bool) ([]ProductRevenue, error) {
	report := fmt.Sprintf("products:ranking:sold_only=%t", soldOnly)
	return cached(ctx, r, report, func(ctx context.Context) ([]ProductRevenue, error) {
		return r.productRanking(ctx, soldOnly)
	})
}

func (r *Reports) productRanking(ctx context.Context, soldOnly bool) ([]ProductRevenue, error) {
	q := r.db.WithContext(ctx).Table("revenue_by_product")
	if soldOnly {
		q = q.Where("sale_count > 0")
	}
	var rows []ProductRevenue
	if err := q.Order("total_revenue DESC").Order("product_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return roundProducts(rows), nil
}

// roundProducts 金额列以 REAL 存储，读出后统一保留两位小数。
func roundProducts(rows []ProductRevenue) []ProductRevenue {
	for i := range rows {
		rows[i].UnitPrice = rows[i].UnitPrice.Round(2)
		rows[i].TotalRevenue = rows[i].TotalRevenue.Round(2)
	}
	return rows
}

func roundCustomers(rows []CustomerSpend) []CustomerSpend {
	for i := range rows {
		rows[i].TotalSpend = rows[i].TotalSpend.Round(2)
	}
	return rows
}

// TopSellingProducts 按销量排序，只含有销售的商品。
func (r *Reports) TopSellingProducts(ctx context.Context, limit int) ([]ProductRevenue, error) {
	report := fmt.Sprintf("products:top:%d", limit)
	return cached(ctx, r, report, func(ctx context.Context) ([]ProductRevenue, error) {
		var rows []ProductRevenue
		err := r.db.WithContext(ctx).Table("revenue_by_product").
			Where("sale_count > 0").
			Order("total_quantity DESC").Order("product_id").
			Limit(limit).
			Find(&rows).Error
		return roundProducts(rows), err
	})
}

func (r *Reports) RevenueByCategory(ctx context.Context) ([]GroupRevenue, error) {
	return cached(ctx, r, "categories", func(ctx context.Context) ([]GroupRevenue, error) {
		return r.grouped(ctx, "p.category")
	})
}

func (r *Reports) RevenueByCity(ctx context.Context) ([]GroupRevenue, error) {
	return cached(ctx, r, "cities", func(ctx context.Context) ([]GroupRevenue, error) {
		return r.grouped(ctx, "c.city")
	})
}

// grouped 按给定列分组汇总销售；column 只来自本包常量，分组键为 NULL 的行不参与。
func (r *Reports) grouped(ctx context.Context, column string) ([]GroupRevenue, error) {
	var rows []GroupRevenue
	err := r.db.WithContext(ctx).Table("sales s").
		Select(column + ` AS group_key,
			COUNT(s.id) AS sale_count,
			SUM(s.quantity) AS total_quantity,
			ROUND(SUM(s.total_amount), 2) AS total_revenue,
			AVG(s.total_amount) AS average_sale`).
		Joins("JOIN products p ON p.id = s.product_id").
		Joins("JOIN customers c ON c.id = s.customer_id").
		Where(column + " IS NOT NULL").
		Group(column).
		Order("total_revenue DESC").Order("group_key").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].TotalRevenue = rows[i].TotalRevenue.Round(2)
		rows[i].AverageSale = rows[i].AverageSale.Round(2)
	}
	return rows, nil
}

// TopCustomers returns customers with at least one purchase, biggest spenders first.
func (r *Reports) TopCustomers(ctx context.Context, limit int) ([]CustomerSpend, error) {
	report := fmt.Sprintf("customers:top:%d", limit)
	return cached(ctx, r, report, func(ctx context.Context) ([]CustomerSpend, error) {
		var rows []CustomerSpend
		err := r.db.WithContext(ctx).Table("revenue_by_customer").
			Where("purchase_count > 0").
			Order("total_spend DESC").Order("customer_id").
			Limit(limit).
			Find(&rows).Error
		return roundCustomers(rows), err
	})
}

// RevenueByMonth 按 YYYY-MM 分组，最近的月份在前。
func (r *Reports) RevenueByMonth(ctx context.Context) ([]MonthRevenue, error) {
	return cached(ctx, r, "months", func(ctx context.Context) ([]MonthRevenue, error) {
		var rows []MonthRevenue
		err := r.db.WithContext(ctx).Table("sales").
			Select(`substr(sold_at, 1, 7) AS month,
				COUNT(id) AS sale_count,
				SUM(quantity) AS total_quantity,
				ROUND(SUM(total_amount), 2) AS total_revenue`).
			Group("month").
			Order("month DESC").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].TotalRevenue = rows[i].TotalRevenue.Round(2)
		}
		return rows, nil
	})
}

func (r *Reports) SellThrough(ctx context.Context) ([]SellThrough, error) {
	return cached(ctx, r, "sell_through", func(ctx context.Context) ([]SellThrough, error) {
		rows, err := r.productRanking(ctx, false)
		if err != nil {
			return nil, err
		}
		return SellThroughRates(rows), nil
	})
}

// Loyalty covers every customer, including those who never bought.
func (r *Reports) Loyalty(ctx context.Context) ([]Loyalty, error) {
	return cached(ctx, r, "loyalty", func(ctx context.Context) ([]Loyalty, error) {
		var rows []CustomerSpend
		err := r.db.WithContext(ctx).Table("revenue_by_customer").
			Order("customer_id").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		return LoyaltyIndexes(roundCustomers(rows)), nil
	})
}
