package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品：单价必须 > 0，库存不能为负。
// Stock 在记录销售时于同一事务内扣减。
type Product struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name        string          `gorm:"size:128;not null" json:"name"`
	Description *string         `gorm:"size:1024" json:"description,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null;check:unit_price > 0" json:"unit_price"`
	Category    *string         `gorm:"size:128;index" json:"category,omitempty"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
}

func (Product) TableName() string { return "products" }

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
}

// Columns maps the set fields to their column names.
func (u ProductUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Description != nil {
		cols["description"] = nullable(*u.Description)
	}
	if u.UnitPrice != nil {
		cols["unit_price"] = *u.UnitPrice
	}
	if u.Category != nil {
		cols["category"] = nullable(*u.Category)
	}
	if u.Stock != nil {
		cols["stock"] = *u.Stock
	}
	return cols
}

// ProductFilter narrows List. InStock and OutOfStock are exclusive;
// InStock wins when both are set.
type ProductFilter struct {
	Category   string
	Search     string
	InStock    bool
	OutOfStock bool
}
