package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sales_tracker/internal/model"
)

const EventSaleRecorded = "sale.recorded"

// SaleMessage 是写入 Kafka 的销售完成事件，只在事务提交后发送。
type SaleMessage struct {
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	SaleID      uint            `json:"sale_id"`
	CustomerID  uint            `json:"customer_id"`
	ProductID   uint            `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SoldAt      time.Time       `json:"sold_at"`
}

func NewSaleMessage(s model.Sale) SaleMessage {
	return SaleMessage{
		EventID:     uuid.NewString(),
		Type:        EventSaleRecorded,
		SaleID:      s.ID,
		CustomerID:  s.CustomerID,
		ProductID:   s.ProductID,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalAmount: s.TotalAmount,
		SoldAt:      s.SoldAt.UTC(),
	}
}

// Validate 做最小字段校验，防止下游处理脏消息。
func (m SaleMessage) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if m.SaleID == 0 {
		return fmt.Errorf("sale_id is required")
	}
	if m.CustomerID == 0 || m.ProductID == 0 {
		return fmt.Errorf("customer_id and product_id are required")
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	if !m.TotalAmount.IsPositive() {
		return fmt.Errorf("total_amount must be > 0")
	}
	return nil
}
