package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale 销售记录（只追加）：单价为成交时价格，TotalAmount = Quantity * UnitPrice。
type Sale struct {
	ID uint `gorm:"primarykey" json:"id"`

	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Product    *Product  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null;check:unit_price > 0" json:"unit_price"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	// SoldAt 为零值时由 gorm 在插入时填充。
	SoldAt time.Time `gorm:"not null;index;autoCreateTime" json:"sold_at"`
}

func (Sale) TableName() string { return "sales" }

// SaleDetail is a row of the sale_details view.
type SaleDetail struct {
	SaleID          uint            `json:"sale_id"`
	SoldAt          time.Time       `json:"sold_at"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CustomerID      uint            `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerCity    *string         `json:"customer_city,omitempty"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductCategory *string         `json:"product_category,omitempty"`
}

// SaleFilter narrows List. From is inclusive, To exclusive. Limit <= 0 means no limit.
type SaleFilter struct {
	CustomerID uint
	ProductID  uint
	From       *time.Time
	To         *time.Time
	Limit      int
}
