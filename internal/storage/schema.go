package storage

import (
	"context"
	"fmt"

	"sales_tracker/internal/model"

	"gorm.io/gorm"
)

// 只读视图：销售明细、按商品汇总、按客户汇总。
// 汇总视图使用 LEFT JOIN，没有销售的商品/客户也会出现（计数为 0）。
// 金额列是 NUMERIC，小数以 REAL 存储，汇总结果统一 ROUND 到分。
var views = []struct {
	name string
	ddl  string
}{
	{"sale_details", `
CREATE VIEW sale_details AS
SELECT
	s.id AS sale_id,
	s.sold_at,
	s.quantity,
	s.unit_price,
	s.total_amount,
	c.id AS customer_id,
	c.last_name || ' ' || c.first_name AS customer_name,
	c.email AS customer_email,
	c.city AS customer_city,
	p.id AS product_id,
	p.name AS product_name,
	p.category AS product_category
FROM sales s
INNER JOIN customers c ON c.id = s.customer_id
INNER JOIN products p ON p.id = s.product_id`},
	{"revenue_by_product", `
CREATE VIEW revenue_by_product AS
SELECT
	p.id AS product_id,
	p.name AS product_name,
	p.category,
	p.unit_price,
	p.stock,
	COUNT(s.id) AS sale_count,
	COALESCE(SUM(s.quantity), 0) AS total_quantity,
	COALESCE(ROUND(SUM(s.total_amount), 2), 0) AS total_revenue
FROM products p
LEFT JOIN sales s ON s.product_id = p.id
GROUP BY p.id, p.name, p.category, p.unit_price, p.stock`},
	{"revenue_by_customer", `
CREATE VIEW revenue_by_customer AS
SELECT
	c.id AS customer_id,
	c.last_name || ' ' || c.first_name AS customer_name,
	c.email,
	c.city,
	COUNT(s.id) AS purchase_count,
	COALESCE(ROUND(SUM(s.total_amount), 2), 0) AS total_spend
FROM customers c
LEFT JOIN sales s ON s.customer_id = c.id
GROUP BY c.id, c.last_name, c.first_name, c.email, c.city`},
}

// InitSchema 建表（约束来自 gorm tag）并重建视图。
// reset=true 时先删除视图和表，数据全部丢失。
func InitSchema(ctx context.Context, db *gorm.DB, reset bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, v := range views {
			if err := tx.Exec("DROP VIEW IF EXISTS " + v.name).Error; err != nil {
				return fmt.Errorf("drop view %s: %w", v.name, err)
			}
		}
		if reset {
			// sales 先删，避免外键阻塞。
			if err := tx.Migrator().DropTable(&model.Sale{}, &model.Product{}, &model.Customer{}); err != nil {
				return fmt.Errorf("drop tables: %w", err)
			}
		}
		if err := tx.AutoMigrate(&model.Customer{}, &model.Product{}, &model.Sale{}); err != nil {
			return fmt.Errorf("migrate tables: %w", err)
		}
		for _, v := range views {
			if err := tx.Exec(v.ddl).Error; err != nil {
				return fmt.Errorf("create view %s: %w", v.name, err)
			}
		}
		return nil
	})
}
