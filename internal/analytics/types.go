package analytics

import "github.com/shopspring/decimal"

// Summary 全局销售概览。
type Summary struct {
	SaleCount     int64           `json:"sale_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalQuantity int64           `json:"total_quantity"`
	AverageSale   decimal.Decimal `json:"average_sale"`
	CustomerCount int64           `json:"customer_count"`
	ProductCount  int64           `json:"product_count"`
}

// ProductRevenue is one row of the revenue_by_product view.
type ProductRevenue struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Category      *string         `json:"category,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Stock         int             `json:"stock"`
	SaleCount     int64           `json:"sale_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// GroupRevenue aggregates sales under one category or city.
type GroupRevenue struct {
	Key           string          `json:"key" gorm:"column:group_key"`
	SaleCount     int64           `json:"sale_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AverageSale   decimal.Decimal `json:"average_sale"`
}

// CustomerSpend is one row of the revenue_by_customer view.
type CustomerSpend struct {
	CustomerID    uint            `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Email         string          `json:"email"`
	City          *string         `json:"city,omitempty"`
	PurchaseCount int64           `json:"purchase_count"`
	TotalSpend    decimal.Decimal `json:"total_spend"`
}

type MonthRevenue struct {
	Month         string          `json:"month"`
	SaleCount     int64           `json:"sale_count"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// SellThrough 售罄率：initial = 当前库存 + 已售数量。
type SellThrough struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Stock        int             `json:"stock"`
	Sold         int64           `json:"sold"`
	InitialStock int64           `json:"initial_stock"`
	Rate         decimal.Decimal `json:"rate"`
}

// Loyalty 客户忠诚度：index = 购买次数*10 + 平均客单价/10。
type Loyalty struct {
	CustomerID    uint            `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	PurchaseCount int64           `json:"purchase_count"`
	TotalSpend    decimal.Decimal `json:"total_spend"`
	AverageBasket decimal.Decimal `json:"average_basket"`
	Index         decimal.Decimal `json:"index"`
}
